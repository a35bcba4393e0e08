package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/auth"
	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/model"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	acceptHeader = "application/vnd.github.v3+json"
	maxErrorBody = 64 << 10
)

// Options configures an HTTPClient.
type Options struct {
	BaseURL string
	// Token is sent as a bearer token unless Auth is set.
	Token     string
	Auth      auth.Authenticator
	Timeout   time.Duration
	UserAgent string
}

// HTTPClient talks to the GitHub REST API over net/http.
type HTTPClient struct {
	client    *http.Client
	baseURL   string
	auth      auth.Authenticator
	userAgent string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new GitHub client.
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "repodash"
	}
	credentials := opts.Auth
	if credentials == nil {
		credentials = auth.FromToken(opts.Token)
	}
	return &HTTPClient{
		client:    &http.Client{Timeout: opts.Timeout},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		auth:      credentials,
		userAgent: opts.UserAgent,
	}
}

// SearchRepositories runs GET /search/repositories for one page.
func (c *HTTPClient) SearchRepositories(ctx context.Context, query SearchQuery) ([]model.RawRepository, error) {
	params := url.Values{}
	params.Set("q", query.Q())
	if query.Sort != "" {
		params.Set("sort", query.Sort)
		order := query.Order
		if order == "" {
			order = "desc"
		}
		params.Set("order", order)
	}
	if query.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(query.PerPage))
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}

	endpoint := c.baseURL + "/search/repositories?" + params.Encode()

	resp, err := c.get(ctx, endpoint, "search repositories")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := classify(resp, endpoint); err != nil {
		return nil, err
	}

	var body searchResponse[model.RawRepository]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &errors.RemoteError{Status: resp.StatusCode, URL: endpoint, Err: errors.Wrap(err, "decode search response")}
	}

	logger.Debug("Search completed", logger.Fields{
		"query":     query.Q(),
		"page":      query.Page,
		"items":     len(body.Items),
		"total":     body.TotalCount,
		"remaining": resp.Header.Get("X-RateLimit-Remaining"),
	})

	return body.Items, nil
}

// CommitActivity runs GET /repos/{owner}/{repo}/stats/commit_activity.
func (c *HTTPClient) CommitActivity(ctx context.Context, fullName string) ([]WeeklyCommits, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository name %q", fullName)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/stats/commit_activity", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	resp, err := c.get(ctx, endpoint, "commit activity")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		return nil, ErrStatsComputing
	}
	if err := classify(resp, endpoint); err != nil {
		return nil, err
	}

	var weeks []WeeklyCommits
	if err := json.NewDecoder(resp.Body).Decode(&weeks); err != nil {
		return nil, &errors.RemoteError{Status: resp.StatusCode, URL: endpoint, Err: errors.Wrap(err, "decode commit activity")}
	}
	return weeks, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint, op string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)
	if c.auth != nil {
		if err := c.auth.Apply(req); err != nil {
			return nil, errors.Wrap(err, "failed to apply credentials")
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &errors.NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

// classify maps a non-success status to the error taxonomy.
func classify(resp *http.Response, endpoint string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return &errors.RateLimitError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	default:
		return &errors.RemoteError{Status: resp.StatusCode, URL: endpoint}
	}
}

func readMessage(r io.Reader) string {
	var body apiError
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&body); err != nil {
		return ""
	}
	return body.Message
}
