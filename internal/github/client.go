package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vytor/ghmutuals/internal/errors"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
)

const (
	DefaultBaseURL = "https://api.github.com"
	// PerPage is the page size requested from listing endpoints. A page
	// shorter than this is the last one.
	PerPage = 100

	userAgent = "ghmutuals"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithBaseURL points the client at a different API root, e.g. GitHub Enterprise.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout on a copy of the current HTTP
// client, so a shared client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithRequestsPerSecond paces outgoing requests. Zero or less disables pacing.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchUser(ctx context.Context, username, token string) (*models.GitHubUser, error) {
	log := logger.FromContext(ctx).WithPrefix("github").WithField("username", username)

	var user models.GitHubUser
	if err := c.getJSON(ctx, c.userURL(username), token, &user); err != nil {
		log.Debug("fetch user failed: %v", err)
		return nil, err
	}

	log.Debug("fetched user %s (id=%d)", user.Login, user.ID)
	return &user, nil
}

func (c *Client) FetchFollowers(ctx context.Context, username, token string) ([]models.GitHubUser, error) {
	return c.fetchAllPages(ctx, c.userURL(username)+"/followers", token)
}

func (c *Client) FetchFollowing(ctx context.Context, username, token string) ([]models.GitHubUser, error) {
	return c.fetchAllPages(ctx, c.userURL(username)+"/following", token)
}

type rateLimitResp struct {
	Resources struct {
		Core struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Used      int   `json:"used"`
			Reset     int64 `json:"reset"`
		} `json:"core"`
	} `json:"resources"`
}

// FetchRateLimit reports the core quota for the given credential. Calls to
// /rate_limit do not count against it.
func (c *Client) FetchRateLimit(ctx context.Context, token string) (*models.RateLimit, error) {
	var out rateLimitResp
	if err := c.getJSON(ctx, c.baseURL+"/rate_limit", token, &out); err != nil {
		return nil, err
	}
	core := out.Resources.Core
	return &models.RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Used:      core.Used,
		ResetAt:   time.Unix(core.Reset, 0).UTC(),
	}, nil
}

// fetchAllPages walks a page-numbered listing until a page comes back short.
// There is no last-page marker, so a full page is always followed by one more
// request. The first failing page aborts the walk and nothing is returned.
func (c *Client) fetchAllPages(ctx context.Context, listingURL, token string) ([]models.GitHubUser, error) {
	log := logger.FromContext(ctx).WithPrefix("github").WithField("listing", listingURL)
	start := time.Now()

	results := make([]models.GitHubUser, 0)
	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s?page=%d&per_page=%d", listingURL, page, PerPage)

		var batch []models.GitHubUser
		if err := c.getJSON(ctx, pageURL, token, &batch); err != nil {
			log.Debug("page %d failed: %v", page, err)
			return nil, err
		}
		results = append(results, batch...)

		if len(batch) < PerPage {
			log.Debug("fetched %d entries over %d pages in %v", len(results), page, time.Since(start))
			return results, nil
		}
	}
}

func (c *Client) userURL(username string) string {
	return c.baseURL + "/users/" + url.PathEscape(username)
}

func (c *Client) getJSON(ctx context.Context, rawURL, token string, out any) error {
	log := logger.FromContext(ctx).WithPrefix("github")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.NewInternalError(fmt.Errorf("wait for request slot: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return errors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request to %s failed: %v", rawURL, err)
		return errors.NewInternalError(fmt.Errorf("get %s: %w", rawURL, err))
	}
	defer resp.Body.Close()

	log.Debug("GET %s -> %d in %v (rate remaining %s)", rawURL, resp.StatusCode, time.Since(start), resp.Header.Get("X-RateLimit-Remaining"))

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response from %s: %v", rawURL, err)
		return errors.NewInternalError(fmt.Errorf("decode %s: %w", rawURL, err))
	}
	return nil
}

// checkStatus maps a non-2xx response onto the error taxonomy. 404 means the
// account does not exist, whichever page it shows up on.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.NewNotFoundError("user", resp.Request.URL.Path)
	case http.StatusForbidden:
		return errors.NewRateLimitedError()
	default:
		return errors.NewUpstreamError(resp.StatusCode, statusText(resp))
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = strconv.Itoa(resp.StatusCode)
	}
	return text
}
