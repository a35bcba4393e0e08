package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authmocks "github.com/glorpus-work/repodash/pkg/auth/mocks"
	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSearchQuery_Q(t *testing.T) {
	q := SearchQuery{Topics: []string{"machine-learning", "ai"}}
	assert.Equal(t, "topic:machine-learning topic:ai", q.Q())
	assert.Empty(t, SearchQuery{}.Q())
}

func TestSearchRepositories_RequestShape(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_count":2,"items":[
			{"full_name":"octo/one","stargazers_count":10},
			{"full_name":"octo/two","stargazers_count":5,"description":null}
		]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(Options{BaseURL: server.URL + "/", Token: "secret", UserAgent: "repodash/test"})
	items, err := client.SearchRepositories(context.Background(), SearchQuery{
		Topics:  []string{"ai", "deep-learning"},
		Sort:    "stars",
		PerPage: 30,
		Page:    2,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "octo/one", items[0].FullName)
	assert.Nil(t, items[1].Description)

	require.NotNil(t, got)
	assert.Equal(t, "/search/repositories", got.URL.Path)
	query := got.URL.Query()
	assert.Equal(t, "topic:ai topic:deep-learning", query.Get("q"))
	assert.Equal(t, "stars", query.Get("sort"))
	assert.Equal(t, "desc", query.Get("order"))
	assert.Equal(t, "30", query.Get("per_page"))
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, "application/vnd.github.v3+json", got.Header.Get("Accept"))
	assert.Equal(t, "repodash/test", got.Header.Get("User-Agent"))
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
}

func TestSearchRepositories_NoSortNoToken(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(Options{BaseURL: server.URL})
	items, err := client.SearchRepositories(context.Background(), SearchQuery{Topics: []string{"iot"}, Page: 1})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, hasSort := got.URL.Query()["sort"]
	assert.False(t, hasSort)
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestSearchRepositories_StatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"forbidden is rate limit", http.StatusForbidden, `{"message":"API rate limit exceeded"}`, errors.ErrRateLimited},
		{"too many requests is rate limit", http.StatusTooManyRequests, ``, errors.ErrRateLimited},
		{"server error is remote", http.StatusBadGateway, ``, errors.ErrRemote},
		{"validation failure is remote", http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`, errors.ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewHTTPClient(Options{BaseURL: server.URL})
			_, err := client.SearchRepositories(context.Background(), SearchQuery{Topics: []string{"ai"}})
			require.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestSearchRepositories_RateLimitMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded for 1.2.3.4"}`))
	}))
	defer server.Close()

	_, err := NewHTTPClient(Options{BaseURL: server.URL}).SearchRepositories(context.Background(), SearchQuery{})

	var rl *errors.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, http.StatusForbidden, rl.Status)
	assert.Contains(t, err.Error(), "Please add a GitHub token")
	assert.Contains(t, err.Error(), "1.2.3.4")
}

func TestSearchRepositories_RemoteStatusInMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewHTTPClient(Options{BaseURL: server.URL}).SearchRepositories(context.Background(), SearchQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSearchRepositories_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPClient(Options{BaseURL: url}).SearchRepositories(context.Background(), SearchQuery{})
	require.ErrorIs(t, err, errors.ErrNetwork)
}

func TestCommitActivity(t *testing.T) {
	weeks := []WeeklyCommits{{Total: 1}, {Total: 2}, {Total: 3}}
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewEncoder(w).Encode(weeks)
	}))
	defer server.Close()

	got, err := NewHTTPClient(Options{BaseURL: server.URL}).CommitActivity(context.Background(), "octo/cat")
	require.NoError(t, err)
	assert.Equal(t, weeks, got)
	assert.Equal(t, "/repos/octo/cat/stats/commit_activity", path)
}

func TestCommitActivity_Computing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	_, err := NewHTTPClient(Options{BaseURL: server.URL}).CommitActivity(context.Background(), "octo/cat")
	require.ErrorIs(t, err, ErrStatsComputing)
}

func TestCommitActivity_InvalidName(t *testing.T) {
	_, err := NewHTTPClient(Options{}).CommitActivity(context.Background(), "no-slash")
	require.Error(t, err)
}

func TestSearchRepositories_CustomAuthenticator(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	authenticator := authmocks.NewMockAuthenticator(ctrl)
	authenticator.EXPECT().Apply(gomock.Any()).DoAndReturn(func(req *http.Request) error {
		req.Header.Set("X-Proxy-Key", "k1")
		return nil
	})

	client := NewHTTPClient(Options{BaseURL: server.URL, Token: "ignored", Auth: authenticator})
	_, err := client.SearchRepositories(context.Background(), SearchQuery{Topics: []string{"ai"}})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "k1", got.Header.Get("X-Proxy-Key"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestSearchRepositories_AuthenticatorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authenticator := authmocks.NewMockAuthenticator(ctrl)
	authenticator.EXPECT().Apply(gomock.Any()).Return(assert.AnError)

	client := NewHTTPClient(Options{BaseURL: "http://127.0.0.1:1", Auth: authenticator})
	_, err := client.SearchRepositories(context.Background(), SearchQuery{Topics: []string{"ai"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestUndecodableBodyIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := NewHTTPClient(Options{BaseURL: server.URL})

	_, err := client.SearchRepositories(context.Background(), SearchQuery{Topics: []string{"ai"}})
	require.ErrorIs(t, err, errors.ErrRemote)
	assert.NotErrorIs(t, err, errors.ErrNetwork)
	assert.Contains(t, err.Error(), "decode search response")

	var remote *errors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusOK, remote.Status)

	_, err = client.CommitActivity(context.Background(), "octo/cat")
	require.ErrorIs(t, err, errors.ErrRemote)
	assert.NotErrorIs(t, err, errors.ErrNetwork)
}
