// Package prefs is the local key/value store for the theme flag and the visit counter.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/repodash/pkg/fsutil"
)

// FileName is the store file inside the state directory.
const FileName = "prefs.yaml"

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Prefs is the persisted state.
type Prefs struct {
	Theme     string    `yaml:"theme"`
	Visits    int       `yaml:"visits"`
	LastVisit time.Time `yaml:"last_visit,omitempty"`
}

// Store reads and writes Prefs in a YAML file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store in dir, or in the default state directory when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = fsutil.StateDir()
	}
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored preferences, or defaults when nothing is stored yet.
func (s *Store) Load() (*Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// RecordVisit increments the visit counter and returns the updated state.
func (s *Store) RecordVisit(now time.Time) (*Prefs, error) {
	return s.update(func(p *Prefs) {
		p.Visits++
		p.LastVisit = now.UTC()
	})
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Store) ToggleTheme() (string, error) {
	p, err := s.update(func(p *Prefs) {
		if p.Theme == ThemeDark {
			p.Theme = ThemeLight
		} else {
			p.Theme = ThemeDark
		}
	})
	if err != nil {
		return "", err
	}
	return p.Theme, nil
}

func (s *Store) update(fn func(*Prefs)) (*Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return nil, err
	}
	fn(p)
	if err := s.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) load() (*Prefs, error) {
	p := &Prefs{Theme: ThemeDark}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", s.path, err)
	}
	if p.Theme != ThemeLight {
		p.Theme = ThemeDark
	}
	return p, nil
}

func (s *Store) save(p *Prefs) error {
	if err := fsutil.EnsureFileDir(s.path, fsutil.DirModeSecure); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return fsutil.WriteFileAtomic(s.path, fsutil.FileModeSecure, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode preferences: %w", err)
		}
		return enc.Close()
	})
}
