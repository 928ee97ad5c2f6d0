package compare

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
)

// Source is the subset of the GitHub client a comparison needs.
type Source interface {
	FetchUser(ctx context.Context, username, token string) (*models.GitHubUser, error)
	FetchFollowers(ctx context.Context, username, token string) ([]models.GitHubUser, error)
	FetchFollowing(ctx context.Context, username, token string) ([]models.GitHubUser, error)
}

type Comparer struct {
	source Source
}

func NewComparer(source Source) *Comparer {
	return &Comparer{source: source}
}

// Compare fetches the profile, followers and following of username in
// parallel and reconciles them. The first failure cancels the other two
// fetches and is returned once they have stopped; nothing partial is
// returned. The token is passed through untouched and may be empty.
func (c *Comparer) Compare(ctx context.Context, username, token string) (*models.FollowComparison, error) {
	log := logger.FromContext(ctx).WithPrefix("compare").WithField("username", username)
	log.Debug("starting comparison")
	start := time.Now()

	var (
		user      *models.GitHubUser
		followers []models.GitHubUser
		following []models.GitHubUser
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := c.source.FetchUser(gctx, username, token)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		f, err := c.source.FetchFollowers(gctx, username, token)
		if err != nil {
			return err
		}
		followers = f
		return nil
	})
	g.Go(func() error {
		f, err := c.source.FetchFollowing(gctx, username, token)
		if err != nil {
			return err
		}
		following = f
		return nil
	})

	if err := g.Wait(); err != nil {
		appErr := errors.Wrap(err)
		log.Warn("comparison failed after %v: %v", time.Since(start), appErr)
		return nil, appErr
	}

	if user == nil {
		return nil, errors.NewInternalError(fmt.Errorf("empty profile for %s", username))
	}

	mutuals, notFollowingBack := Reconcile(following, followers)
	log.Info("compared %d following against %d followers in %v: %d mutuals, %d not following back",
		len(following), len(followers), time.Since(start), len(mutuals), len(notFollowingBack))

	return &models.FollowComparison{
		SearchedUser:     *user,
		Mutuals:          mutuals,
		NotFollowingBack: notFollowingBack,
	}, nil
}
