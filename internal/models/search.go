package models

import "time"

// SearchRecord is one analytics row, written after a successful search.
type SearchRecord struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	SearchedAt time.Time `json:"searched_at"`
	CallerID   string    `json:"caller_id,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
}

// SearchMeta carries request details that end up in the analytics record.
type SearchMeta struct {
	CallerID  string
	UserAgent string
	Referrer  string
}

type SearchCount struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}
