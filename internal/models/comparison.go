package models

import "time"

// FollowComparison splits the searched user's following list into accounts
// that follow back and accounts that do not. Both slices keep the order of
// the following list and together contain every entry of it exactly once.
type FollowComparison struct {
	SearchedUser     GitHubUser   `json:"searched_user"`
	Mutuals          []GitHubUser `json:"mutuals"`
	NotFollowingBack []GitHubUser `json:"not_following_back"`
}

type SearchStatus string

const (
	SearchIdle    SearchStatus = "idle"
	SearchLoading SearchStatus = "loading"
	SearchDone    SearchStatus = "done"
	SearchFailed  SearchStatus = "failed"
)

// SearchState is what a browser session currently sees.
type SearchState struct {
	RunID        string            `json:"run_id,omitempty"`
	Username     string            `json:"username,omitempty"`
	Status       SearchStatus      `json:"status"`
	Result       *FollowComparison `json:"result,omitempty"`
	ErrorCode    string            `json:"error_code,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	StartedAt    time.Time         `json:"started_at,omitempty"`
	FinishedAt   time.Time         `json:"finished_at,omitempty"`
}
