// Package snapshot loads, validates and builds the bundled repository snapshot:
// a JSON document of category → sort key → repositories captured ahead of time.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/xeipuuv/gojsonschema"

	"github.com/glorpus-work/repodash/pkg/model"
)

// Reserved document keys.
const (
	KeyLastUpdated = "_last_updated"
	KeyMetadata    = "_metadata"
)

// FormatVersion is written by the builder.
const FormatVersion = "1.0"

// SupportedFormats is the constraint a snapshot's format_version must satisfy.
const SupportedFormats = ">= 1.0, < 2.0"

// LastUpdatedLayout is the timestamp layout written by the builder.
const LastUpdatedLayout = "2006-01-02 15:04:05 UTC"

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Sentinel errors returned by Parse.
var (
	ErrInvalidDocument = fmt.Errorf("snapshot does not match schema")
	ErrUnsupported     = fmt.Errorf("unsupported snapshot format version")
)

// Metadata describes who produced a snapshot.
type Metadata struct {
	FormatVersion string `json:"format_version,omitempty"`
	Generator     string `json:"generator,omitempty"`
	GeneratedAt   string `json:"generated_at,omitempty"`
}

// Snapshot is a parsed snapshot document. It is never mutated after Parse.
type Snapshot struct {
	Categories  map[string]map[string][]model.RawRepository
	Metadata    *Metadata
	LastUpdated time.Time

	// stamped is true when _last_updated was present, even if unparseable.
	stamped bool
}

// HasTimestamp reports whether the document carried _last_updated.
func (s *Snapshot) HasTimestamp() bool {
	return s.stamped
}

// Leaf returns the records for (category, sort), or nil.
func (s *Snapshot) Leaf(category, sort string) []model.RawRepository {
	if s == nil {
		return nil
	}
	return s.Categories[category][sort]
}

// Count returns the number of records across all leaves.
func (s *Snapshot) Count() int {
	n := 0
	for _, sorts := range s.Categories {
		for _, leaf := range sorts {
			n += len(leaf)
		}
	}
	return n
}

// Parse validates data against the snapshot schema and decodes it.
func Parse(data []byte) (*Snapshot, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			msgs = append(msgs, field+": "+desc.Description())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	snap := &Snapshot{Categories: make(map[string]map[string][]model.RawRepository)}

	if raw, ok := doc[KeyMetadata]; ok {
		var meta Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if err := checkFormat(meta.FormatVersion); err != nil {
			return nil, err
		}
		snap.Metadata = &meta
	}

	if raw, ok := doc[KeyLastUpdated]; ok {
		var stamp string
		if err := json.Unmarshal(raw, &stamp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		snap.stamped = true
		if t, ok := ParseTimestamp(stamp); ok {
			snap.LastUpdated = t
		}
	}

	for key, raw := range doc {
		if strings.HasPrefix(key, "_") {
			continue
		}
		var sorts map[string][]model.RawRepository
		if err := json.Unmarshal(raw, &sorts); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidDocument, key, err)
		}
		snap.Categories[key] = sorts
	}

	return snap, nil
}

func checkFormat(v string) error {
	if v == "" {
		return nil
	}
	constraint, err := version.NewConstraint(SupportedFormats)
	if err != nil {
		return err
	}
	parsed, err := version.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupported, v, err)
	}
	if !constraint.Check(parsed) {
		return fmt.Errorf("%w: %s (want %s)", ErrUnsupported, v, SupportedFormats)
	}
	return nil
}

// ParseTimestamp accepts RFC 3339 and the builder layout.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, LastUpdatedLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MarshalJSON renders the document in the shape Parse reads.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.Categories)+2)
	for name, sorts := range s.Categories {
		doc[name] = sorts
	}
	if !s.LastUpdated.IsZero() {
		doc[KeyLastUpdated] = s.LastUpdated.UTC().Format(LastUpdatedLayout)
	}
	if s.Metadata != nil {
		doc[KeyMetadata] = s.Metadata
	}
	return json.Marshal(doc)
}
