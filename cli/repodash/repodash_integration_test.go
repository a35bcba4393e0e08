//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/repodash/pkg/config"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/prefs"
	"github.com/glorpus-work/repodash/test/testutil"
)

type searchJSON struct {
	Source   string             `json:"source"`
	Category string             `json:"category"`
	Page     int                `json:"page"`
	Records  []model.Repository `json:"records"`
}

func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	for _, name := range config.TokenEnvVars {
		t.Setenv(name, "")
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newAIServer(t *testing.T) *testutil.GitHubServer {
	t.Helper()
	srv := testutil.NewGitHubServer(t)
	srv.AddRepos("machine-learning",
		testutil.Repo("octo/torch", 900, 50, "Python"),
		testutil.Repo("octo/brain", 500, 80, "Go"),
		testutil.Repo("octo/tiny", 10, 1, ""),
	)
	srv.AddRepos("ai", testutil.Repo("octo/brain", 500, 80, "Go"))
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "repodash version")
}

func TestHelpCommand(t *testing.T) {
	out, err := runCLI(t, "", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "repodash is a dashboard for popular GitHub repositories")
	assert.Contains(t, out, "Available Commands")
}

func TestSearchRemote(t *testing.T) {
	srv := newAIServer(t)
	cfgPath := testutil.SetupTestConfig(t, srv.URL, "")

	out, err := runCLI(t, "", "search", "AI", "--config", cfgPath, "-o", "json")
	require.NoError(t, err)

	var result searchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "remote", result.Source)
	assert.Equal(t, "AI", result.Category)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "octo/torch", result.Records[0].FullName)
	assert.Equal(t, "AI", result.Records[1].Category)

	searches := srv.Searches()
	require.Len(t, searches, 1)
	assert.Contains(t, searches[0].Get("q"), "topic:machine-learning")
	assert.Equal(t, "stars", searches[0].Get("sort"))
	assert.Equal(t, "2", searches[0].Get("per_page"))
}

func TestSearchFiltersAndPages(t *testing.T) {
	srv := newAIServer(t)
	cfgPath := testutil.SetupTestConfig(t, srv.URL, "")

	out, err := runCLI(t, "", "search", "AI", "--page", "2", "--language", "other", "--config", cfgPath, "-o", "json")
	require.NoError(t, err)

	var result searchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Page)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "octo/tiny", result.Records[0].FullName)
}

func TestSearchTrendingEnrichment(t *testing.T) {
	srv := newAIServer(t)
	srv.SetCommitActivity("octo/brain", 0, 70, 70)
	cfgPath := testutil.SetupTestConfig(t, srv.URL, "")

	out, err := runCLI(t, "", "search", "AI", "--sort", "trending", "--config", cfgPath, "-o", "json")
	require.NoError(t, err)

	var result searchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Records, 2)
	assert.Equal(t, "octo/brain", result.Records[0].FullName)
	assert.InDelta(t, 20.0, result.Records[0].TrendingScore, 0.001)
	assert.Zero(t, result.Records[1].TrendingScore)
	assert.ElementsMatch(t, []string{"octo/torch", "octo/brain"}, srv.StatsRequests())
}

func TestSearchRateLimited(t *testing.T) {
	srv := newAIServer(t)
	srv.FailWith(http.StatusForbidden, "API rate limit exceeded")
	cfgPath := testutil.SetupTestConfig(t, srv.URL, "")

	_, err := runCLI(t, "", "search", "AI", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Contains(t, err.Error(), "GitHub token")
}

func TestSnapshotBuildThenServe(t *testing.T) {
	srv := newAIServer(t)
	apiOnly := testutil.SetupTestConfig(t, srv.URL, "")
	snapPath := filepath.Join(t.TempDir(), "data.json")

	_, err := runCLI(t, "", "snapshot", "build", "--delay", "0", "--per-page", "5",
		"--compress", "gz", "--out", snapPath, "--config", apiOnly)
	require.NoError(t, err)
	_, err = os.Stat(snapPath + ".gz")
	require.NoError(t, err)
	built := len(srv.Searches())
	assert.Equal(t, 30, built)

	cfgPath := testutil.SetupTestConfig(t, srv.URL, snapPath+".gz")

	out, err := runCLI(t, "", "search", "AI", "--config", cfgPath, "-o", "json")
	require.NoError(t, err)

	var result searchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "snapshot", result.Source)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "octo/torch", result.Records[0].FullName)
	assert.Len(t, srv.Searches(), built, "a fresh snapshot needs no API call")

	out, err = runCLI(t, "", "snapshot", "info", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: fresh")
	assert.Contains(t, out, "AI")
}

func TestBrowseSession(t *testing.T) {
	srv := newAIServer(t)
	cfgPath := testutil.SetupTestConfig(t, srv.URL, "")

	_, err := runCLI(t, "q", "browse", "--config", cfgPath, "--no-color")
	require.NoError(t, err)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	store := prefs.NewStore(cfg.GetStateDir())
	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Visits)
}

func TestCacheClearWarm(t *testing.T) {
	srv := newAIServer(t)
	cfgPath := testutil.SetupTestConfig(t, srv.URL, "")

	out, err := runCLI(t, "", "cache", "clear", "--warm", "AI", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 cached responses (0 expired)")
	assert.Len(t, srv.Searches(), 1)

	out, err = runCLI(t, "", "cache", "clear", "--config", cfgPath, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":0,"expired":0}`, out)
}

func TestConfigSetGet(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := runCLI(t, "", "config", "init", "--config", cfgPath)
	require.NoError(t, err)

	_, err = runCLI(t, "", "config", "init", "--config", cfgPath)
	require.Error(t, err)

	_, err = runCLI(t, "", "config", "set", "search.per_page", "50", "--config", cfgPath)
	require.NoError(t, err)

	out, err := runCLI(t, "", "config", "get", "search.per_page", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "50\n", out)

	_, err = runCLI(t, "", "config", "set", "search.per_page", "500", "--config", cfgPath)
	assert.Error(t, err)
}
