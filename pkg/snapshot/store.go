package snapshot

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/mholt/archives"
	"golang.org/x/sync/singleflight"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/model"
)

const (
	// DefaultSource is the snapshot path used when none is configured.
	DefaultSource = "data.json"
	// DefaultMaxAge is how old a stamped snapshot may be and still count as fresh.
	DefaultMaxAge = 7 * 24 * time.Hour
	// UnstampedMaxAge bounds a snapshot without _last_updated, measured from load time.
	UnstampedMaxAge = time.Hour

	maxDocumentSize = 64 << 20
)

// Options configures a Store.
type Options struct {
	Source     string
	MaxAge     time.Duration
	HTTPClient *http.Client
	Now        func() time.Time
}

// Store lazily loads one snapshot per session. A failed load is remembered
// until Reset so the source is read at most once.
type Store struct {
	opts  Options
	group singleflight.Group

	mu       sync.Mutex
	loaded   bool
	snapshot *Snapshot
	loadedAt time.Time
}

// NewStore creates a snapshot store.
func NewStore(opts Options) *Store {
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{opts: opts}
}

// Source returns the configured path or URL.
func (s *Store) Source() string {
	return s.opts.Source
}

// Load returns the snapshot, reading the source on first use. Any failure is
// logged and reported as (nil, false).
func (s *Store) Load(ctx context.Context) (*Snapshot, bool) {
	s.mu.Lock()
	if s.loaded {
		snap := s.snapshot
		s.mu.Unlock()
		return snap, snap != nil
	}
	s.mu.Unlock()

	v, _, _ := s.group.Do("load", func() (interface{}, error) {
		s.mu.Lock()
		if s.loaded {
			snap := s.snapshot
			s.mu.Unlock()
			return snap, nil
		}
		s.mu.Unlock()

		snap, err := s.read(ctx)
		if err != nil {
			logger.Warn("Failed to load local snapshot", logger.Fields{
				"source": s.opts.Source,
				"error":  fmt.Errorf("%w: %w", errors.ErrSnapshotUnavailable, err).Error(),
			})
			snap = nil
		}

		s.mu.Lock()
		s.loaded = true
		s.snapshot = snap
		if snap != nil {
			s.loadedAt = s.opts.Now()
		}
		s.mu.Unlock()

		if snap != nil {
			logger.Debug("Loaded local snapshot", logger.Fields{
				"source":  s.opts.Source,
				"records": snap.Count(),
			})
		}
		return snap, nil
	})

	snap, _ := v.(*Snapshot)
	return snap, snap != nil
}

// IsFresh reports whether the loaded snapshot may be served. A stamped
// snapshot is fresh while younger than MaxAge; an unstamped one for an hour
// after it was loaded.
func (s *Store) IsFresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return false
	}
	now := s.opts.Now()
	if s.snapshot.HasTimestamp() {
		if s.snapshot.LastUpdated.IsZero() {
			return false
		}
		return s.snapshot.LastUpdated.After(now.Add(-s.opts.MaxAge))
	}
	return s.loadedAt.After(now.Add(-UnstampedMaxAge))
}

// Lookup returns the raw records for (category, sort), or nil.
func (s *Store) Lookup(category, sort string) []model.RawRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Leaf(category, sort)
}

// LoadedAt returns when the current snapshot was read.
func (s *Store) LoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt
}

// Reset drops the loaded snapshot so the next Load reads the source again.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.snapshot = nil
	s.loadedAt = time.Time{}
}

func (s *Store) read(ctx context.Context) (*Snapshot, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := Decode(ctx, path.Base(s.opts.Source), rc)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (s *Store) open(ctx context.Context) (io.ReadCloser, error) {
	src := s.opts.Source
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.Open(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, &errors.NetworkError{Op: "fetch snapshot", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &errors.RemoteError{Status: resp.StatusCode, URL: src}
	}
	return resp.Body, nil
}

// Decode reads a snapshot stream, transparently decompressing it when the
// content is gzip, zstd, xz or any other format archives recognizes.
func Decode(ctx context.Context, name string, r io.Reader) ([]byte, error) {
	format, stream, err := archives.Identify(ctx, name, r)
	switch {
	case stderrors.Is(err, archives.NoMatch):
		// plain JSON
	case err != nil:
		return nil, errors.Wrap(err, "failed to identify snapshot encoding")
	default:
		dec, ok := format.(archives.Decompressor)
		if !ok {
			return nil, fmt.Errorf("unsupported snapshot container %s", format.Extension())
		}
		rc, err := dec.OpenReader(stream)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s stream", format.Extension())
		}
		defer rc.Close()
		stream = rc
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(stream, maxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read snapshot")
	}
	if n > maxDocumentSize {
		return nil, fmt.Errorf("snapshot larger than %d bytes", maxDocumentSize)
	}
	return buf.Bytes(), nil
}
