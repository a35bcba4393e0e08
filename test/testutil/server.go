// Package testutil provides a fake GitHub REST API and config helpers for
// end-to-end tests of the repodash command line.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glorpus-work/repodash/pkg/github"
	"github.com/glorpus-work/repodash/pkg/model"
)

// GitHubServer serves /search/repositories and /repos/{owner}/{repo}/stats/commit_activity
// from in-memory fixtures.
type GitHubServer struct {
	*httptest.Server

	mu       sync.Mutex
	byTopic  map[string][]model.RawRepository
	activity map[string][]github.WeeklyCommits
	failure  *failure
	searches []url.Values
	stats    []string
}

type failure struct {
	status  int
	message string
}

// NewGitHubServer starts a fake API that is closed when the test ends.
func NewGitHubServer(t *testing.T) *GitHubServer {
	t.Helper()
	s := &GitHubServer{
		byTopic:  make(map[string][]model.RawRepository),
		activity: make(map[string][]github.WeeklyCommits),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", s.handleSearch)
	mux.HandleFunc("/repos/", s.handleStats)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// AddRepos registers repositories under a topic.
func (s *GitHubServer) AddRepos(topic string, repos ...model.RawRepository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTopic[topic] = append(s.byTopic[topic], repos...)
}

// SetCommitActivity registers weekly commit totals for a repository, oldest first.
func (s *GitHubServer) SetCommitActivity(fullName string, totals ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	weeks := make([]github.WeeklyCommits, 0, len(totals))
	for i, total := range totals {
		weeks = append(weeks, github.WeeklyCommits{Total: total, Week: int64(i)})
	}
	s.activity[fullName] = weeks
}

// FailWith makes every following request answer with status and message.
// A zero status clears the failure.
func (s *GitHubServer) FailWith(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		s.failure = nil
		return
	}
	s.failure = &failure{status: status, message: message}
}

// Searches returns the query parameters of every search request received.
func (s *GitHubServer) Searches() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.searches...)
}

// StatsRequests returns the repositories whose commit activity was requested.
func (s *GitHubServer) StatsRequests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stats...)
}

func (s *GitHubServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	s.mu.Lock()
	s.searches = append(s.searches, params)
	fail := s.failure
	seen := map[string]bool{}
	var items []model.RawRepository
	for _, field := range strings.Fields(params.Get("q")) {
		topic, ok := strings.CutPrefix(field, "topic:")
		if !ok {
			continue
		}
		for _, repo := range s.byTopic[topic] {
			if !seen[repo.FullName] {
				seen[repo.FullName] = true
				items = append(items, repo)
			}
		}
	}
	s.mu.Unlock()

	if fail != nil {
		writeJSON(w, fail.status, map[string]string{"message": fail.message})
		return
	}

	sortItems(items, params.Get("sort"))

	perPage := intParam(params, "per_page", 30)
	page := intParam(params, "page", 1)
	start := (page - 1) * perPage
	end := start + perPage
	total := len(items)
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_count":        total,
		"incomplete_results": false,
		"items":              items[start:end],
	})
}

func (s *GitHubServer) handleStats(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/repos/"), "/stats/commit_activity")
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.stats = append(s.stats, rest)
	fail := s.failure
	weeks, found := s.activity[rest]
	s.mu.Unlock()

	switch {
	case fail != nil:
		writeJSON(w, fail.status, map[string]string{"message": fail.message})
	case !found:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	default:
		writeJSON(w, http.StatusOK, weeks)
	}
}

func sortItems(items []model.RawRepository, key string) {
	value := func(r model.RawRepository) int {
		switch key {
		case "forks":
			return deref(r.ForksCount)
		case "updated":
			if r.UpdatedAt == nil {
				return 0
			}
			return int(r.UpdatedAt.Unix())
		default:
			return deref(r.StargazersCount)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return value(items[i]) > value(items[j]) })
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func intParam(params url.Values, name string, def int) int {
	if v, err := strconv.Atoi(params.Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "59")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Repo builds a raw repository fixture.
func Repo(fullName string, stars, forks int, language string) model.RawRepository {
	updated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(stars) * time.Minute)
	r := model.RawRepository{
		FullName:        fullName,
		HTMLURL:         "https://github.com/" + fullName,
		StargazersCount: &stars,
		ForksCount:      &forks,
		UpdatedAt:       &updated,
	}
	if language != "" {
		r.Language = &language
	}
	return r
}

// SetupTestConfig writes a config that points at apiURL and reads the
// snapshot from snapshotSource. An empty snapshotSource disables the snapshot.
func SetupTestConfig(t *testing.T, apiURL, snapshotSource string) string {
	t.Helper()

	dir := t.TempDir()
	snapshotEnabled := snapshotSource != ""
	if !snapshotEnabled {
		snapshotSource = filepath.Join(dir, "missing.json")
	}

	content := fmt.Sprintf(`api:
  base_url: %s
  http_timeout: 5s
search:
  per_page: 2
snapshot:
  enabled: %t
  source: %s
settings:
  log_level: error
  state_dir: %s
`, apiURL, snapshotEnabled, snapshotSource, filepath.Join(dir, "state"))

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}
