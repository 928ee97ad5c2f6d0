package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/ghmutuals/internal/config"
	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/models"
)

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	list := func(logins ...string) []map[string]any {
		out := make([]map[string]any, len(logins))
		for i, l := range logins {
			out[i] = map[string]any{"id": i + 1, "login": l, "html_url": "https://github.com/" + l}
		}
		return out
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "login": "octocat", "name": "The Octocat", "followers": 2, "following": 3})
	})
	mux.HandleFunc("/users/octocat/followers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(list("B", "D"))
	})
	mux.HandleFunc("/users/octocat/following", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(list("A", "B", "C"))
	})
	mux.HandleFunc("/users/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/users/limited/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources":{"core":{"limit":60,"remaining":42,"used":18,"reset":1700000000}}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(config.Config{GitHubAPIURL: apiURL, GitHubTimeoutSeconds: 5})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompareCommand_Text(t *testing.T) {
	srv := fakeGitHub(t)

	out, err := run(t, srv.URL, "compare", "@octocat")
	require.NoError(t, err)

	assert.Contains(t, out, "The Octocat (octocat)")
	assert.Contains(t, out, "Mutuals (1)")
	assert.Contains(t, out, "Not following back (2)")
	assert.Contains(t, out, "https://github.com/C")
}

func TestCompareCommand_Limit(t *testing.T) {
	srv := fakeGitHub(t)

	out, err := run(t, srv.URL, "compare", "octocat", "--limit", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "https://github.com/A")
	assert.NotContains(t, out, "https://github.com/C")
	assert.Contains(t, out, "and 1 more")
}

func TestCompareCommand_JSON(t *testing.T) {
	srv := fakeGitHub(t)

	out, err := run(t, srv.URL, "compare", "octocat", "--json")
	require.NoError(t, err)

	var got models.FollowComparison
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "octocat", got.SearchedUser.Login)
	require.Len(t, got.Mutuals, 1)
	assert.Equal(t, "B", got.Mutuals[0].Login)
	assert.Len(t, got.NotFollowingBack, 2)
}

func TestCompareCommand_RateLimited(t *testing.T) {
	srv := fakeGitHub(t)

	_, err := run(t, srv.URL, "compare", "limited")
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
}

func TestCompareCommand_RequiresUsername(t *testing.T) {
	srv := fakeGitHub(t)

	_, err := run(t, srv.URL, "compare")
	assert.Error(t, err)
}

func TestRateLimitCommand(t *testing.T) {
	srv := fakeGitHub(t)

	out, err := run(t, srv.URL, "rate-limit")
	require.NoError(t, err)
	assert.Contains(t, out, "42/60 requests remaining")
}

func TestCompareCommand_RejectsInvalidLogin(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	for _, bad := range []string{"double--hyphen", "-leading", "under_score", "has space", "@"} {
		_, err := run(t, srv.URL, "compare", bad)
		require.Error(t, err, bad)
		assert.Equal(t, errors.ErrCodeValidation, errors.Code(err), bad)
	}
	assert.Zero(t, hits, "invalid logins must not reach GitHub")
}
