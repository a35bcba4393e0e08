package snapshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestStore_LoadOnce(t *testing.T) {
	path := writeDoc(t, validDoc)
	store := NewStore(Options{Source: path})

	snap, ok := store.Load(context.Background())
	require.True(t, ok)
	assert.Len(t, snap.Leaf("AI", "stars"), 2)

	require.NoError(t, os.WriteFile(path, []byte(`{"AI": {"stars": []}}`), 0o644))

	again, ok := store.Load(context.Background())
	require.True(t, ok)
	assert.Same(t, snap, again)
	assert.Len(t, store.Lookup("AI", "stars"), 2)
}

func TestStore_MissingAndMalformed(t *testing.T) {
	tests := []struct {
		name   string
		source func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{"malformed", func(t *testing.T) string { return writeDoc(t, `{"AI": [`) }},
		{"unsupported format", func(t *testing.T) string { return writeDoc(t, `{"_metadata": {"format_version": "3.0"}}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(Options{Source: tt.source(t)})
			snap, ok := store.Load(context.Background())
			assert.False(t, ok)
			assert.Nil(t, snap)
			assert.False(t, store.IsFresh())
			assert.Nil(t, store.Lookup("AI", "stars"))
		})
	}
}

func TestStore_Freshness(t *testing.T) {
	lastUpdated := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		doc   string
		since time.Duration
		fresh bool
	}{
		{"stamped two days ago", validDoc, 48 * time.Hour, true},
		{"stamped ten days ago", validDoc, 10 * 24 * time.Hour, false},
		{"stamped rfc3339", `{"_last_updated": "2025-03-01T08:00:00Z"}`, 6 * 24 * time.Hour, true},
		{"unparseable stamp", `{"_last_updated": "soon"}`, time.Minute, false},
		{"unstamped just loaded", `{"AI": {"stars": []}}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := &clock{now: lastUpdated.Add(tt.since)}
			store := NewStore(Options{Source: writeDoc(t, tt.doc), MaxAge: 7 * 24 * time.Hour, Now: clk.Now})

			_, ok := store.Load(context.Background())
			require.True(t, ok)
			assert.Equal(t, tt.fresh, store.IsFresh())
		})
	}
}

func TestStore_UnstampedExpiresAfterAnHour(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	store := NewStore(Options{Source: writeDoc(t, `{"AI": {"stars": []}}`), Now: clk.Now})

	_, ok := store.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, clk.Now(), store.LoadedAt())

	clk.Advance(59 * time.Minute)
	assert.True(t, store.IsFresh())

	clk.Advance(2 * time.Minute)
	assert.False(t, store.IsFresh())
}

func TestStore_Reset(t *testing.T) {
	path := writeDoc(t, validDoc)
	store := NewStore(Options{Source: path})

	_, ok := store.Load(context.Background())
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(`{"AI": {"stars": [{"full_name": "new/one"}]}}`), 0o644))
	store.Reset()
	assert.False(t, store.IsFresh())
	assert.True(t, store.LoadedAt().IsZero())

	snap, ok := store.Load(context.Background())
	require.True(t, ok)
	require.Len(t, snap.Leaf("AI", "stars"), 1)
	assert.Equal(t, "new/one", snap.Leaf("AI", "stars")[0].FullName)
}

func TestStore_FailureRememberedUntilReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	store := NewStore(Options{Source: path})

	_, ok := store.Load(context.Background())
	require.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))
	_, ok = store.Load(context.Background())
	assert.False(t, ok)

	store.Reset()
	_, ok = store.Load(context.Background())
	assert.True(t, ok)
}

func TestStore_LoadFromURLConcurrently(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(validDoc))
	}))
	defer server.Close()

	store := NewStore(Options{Source: server.URL + "/data.json"})

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = store.Load(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestStore_URLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := NewStore(Options{Source: server.URL + "/data.json"})
	_, ok := store.Load(context.Background())
	assert.False(t, ok)
	assert.Equal(t, server.URL+"/data.json", store.Source())
}

func TestStore_CompressedSource(t *testing.T) {
	snap, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	for _, compression := range []string{"gz", "zst", "xz"} {
		t.Run(compression, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.json."+compression)
			require.NoError(t, Write(snap, path, compression))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEqual(t, byte('{'), raw[0], "file is compressed")

			store := NewStore(Options{Source: path})
			loaded, ok := store.Load(context.Background())
			require.True(t, ok)
			assert.Equal(t, snap.Categories, loaded.Categories)
		})
	}
}
