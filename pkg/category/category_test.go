package category

import (
	"testing"

	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicsFor_KnownCategories(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())

	for _, name := range r.Names() {
		topics := r.TopicsFor(name)
		assert.NotEmpty(t, topics, name)
	}
	assert.Equal(t, []string{"iot", "arduino", "raspberry-pi", "embedded"}, r.TopicsFor("IoT"))
}

func TestTopicsFor_UnknownCategory(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"quantum computing"}, r.TopicsFor("Quantum Computing"))
	assert.Equal(t, []string{"rust"}, r.TopicsFor("Rust"))
}

func TestTopicsFor_ReturnsCopy(t *testing.T) {
	r := Default()
	topics := r.TopicsFor("AI")
	topics[0] = "mutated"
	assert.Equal(t, "machine-learning", r.TopicsFor("AI")[0])
}

func TestColorFor(t *testing.T) {
	r := Default()
	assert.Equal(t, "#10b981", r.ColorFor("AI"))
	assert.Equal(t, NeutralColor, r.ColorFor("Unknown"))
}

func TestLanguageColor(t *testing.T) {
	assert.Equal(t, "#00ADD8", LanguageColor("Go"))
	assert.Equal(t, NeutralColor, LanguageColor("COBOL"))
	assert.Equal(t, NeutralColor, LanguageColor(""))
}

func TestNew_ExtraCategories(t *testing.T) {
	tests := []struct {
		name    string
		extra   []Category
		wantErr error
	}{
		{
			name:  "adds a new category",
			extra: []Category{{Name: "Rust", Topics: []string{"rust", "rust-lang"}, Color: "#dea584"}},
		},
		{
			name:  "overrides a default category",
			extra: []Category{{Name: "AI", Topics: []string{"llm"}}},
		},
		{
			name:    "rejects uppercase topic",
			extra:   []Category{{Name: "Bad", Topics: []string{"Machine-Learning"}}},
			wantErr: errors.ErrInvalidTopic,
		},
		{
			name:    "rejects empty topics",
			extra:   []Category{{Name: "Empty"}},
			wantErr: errors.ErrInvalidTopic,
		},
		{
			name:    "rejects empty name",
			extra:   []Category{{Topics: []string{"x"}}},
			wantErr: errors.ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.extra)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			c, ok := r.Get(tt.extra[0].Name)
			require.True(t, ok)
			assert.Equal(t, tt.extra[0].Topics, c.Topics)
		})
	}
}

func TestNew_OverridePreservesOrder(t *testing.T) {
	r, err := New([]Category{{Name: "AI", Topics: []string{"llm"}}})
	require.NoError(t, err)
	names := r.Names()
	assert.Equal(t, "AI", names[0])
	assert.Len(t, names, 10)
	assert.Equal(t, NeutralColor, r.ColorFor("AI"))
}
