package compare

import "github.com/vytor/ghmutuals/internal/models"

// Reconcile splits following into accounts that also appear in followers and
// accounts that do not. Membership is exact login equality, without case
// folding. Both outputs keep the order of following.
func Reconcile(following, followers []models.GitHubUser) (mutuals, notFollowingBack []models.GitHubUser) {
	followerLogins := make(map[string]struct{}, len(followers))
	for _, u := range followers {
		followerLogins[u.Login] = struct{}{}
	}

	mutuals = make([]models.GitHubUser, 0)
	notFollowingBack = make([]models.GitHubUser, 0)
	for _, u := range following {
		if _, ok := followerLogins[u.Login]; ok {
			mutuals = append(mutuals, u)
		} else {
			notFollowingBack = append(notFollowingBack, u)
		}
	}
	return mutuals, notFollowingBack
}
