package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/category"
	"github.com/glorpus-work/repodash/pkg/dashboard"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/prefs"
	"github.com/glorpus-work/repodash/pkg/retrieval"
	rmocks "github.com/glorpus-work/repodash/pkg/retrieval/mocks"
)

func repo(name string, stars int, lang string) model.Repository {
	r := model.Repository{FullName: name, Stars: stars, Category: "AI", HTMLURL: "https://github.com/" + name}
	if lang != "" {
		r.Language = &lang
	}
	return r
}

func newTestModel(t *testing.T, fetcher retrieval.Fetcher) (*browseModel, *prefs.Store) {
	t.Helper()
	mediator := retrieval.New(fetcher, nil, retrieval.Options{PerPage: 2})
	store := prefs.NewStore(t.TempDir())
	registry := category.Default()
	m := newBrowseModel(context.Background(), browseOpts{
		Session:    dashboard.New(mediator, dashboard.Options{Categories: 10}),
		Printer:    newPrinter(&bytes.Buffer{}, registry, "text"),
		Prefs:      store,
		CacheInfo:  mediator.CacheInfo,
		Categories: registry.Names(),
		Now:        func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	return m, store
}

// drive runs cmd and every command that follows from it, feeding the
// resulting messages back into m. It reports whether the model quit.
func drive(t *testing.T, m *browseModel, cmd tea.Cmd) bool {
	t.Helper()
	quit := false
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			quit = true
		default:
			_, follow := m.Update(msg)
			queue = append(queue, follow)
		}
	}
	return quit
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m *browseModel, k string) bool {
	t.Helper()
	_, cmd := m.Update(keyMsg(k))
	return drive(t, m, cmd)
}

// typeCommand opens the command line, types line and submits it. Cursor
// blink commands from the text input are not run.
func typeCommand(t *testing.T, m *browseModel, line string) bool {
	t.Helper()
	m.Update(keyMsg(":"))
	require.Equal(t, modeCommand, m.mode)
	for _, r := range line {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := m.Update(keyMsg("enter"))
	assert.Equal(t, modeResults, m.mode)
	return drive(t, m, cmd)
}

func TestBrowse_Session(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := rmocks.NewMockFetcher(ctrl)
	gomock.InOrder(
		fetcher.EXPECT().Fetch(gomock.Any(), "AI", model.SortStars, 1).
			Return([]model.Repository{repo("octo/one", 900, "Go"), repo("octo/two", 500, "Python")}, nil),
		fetcher.EXPECT().Fetch(gomock.Any(), "AI", model.SortStars, 2).
			Return([]model.Repository{repo("octo/three", 10, "")}, nil),
		fetcher.EXPECT().Fetch(gomock.Any(), "AI", model.SortForks, 1).
			Return([]model.Repository{repo("octo/two", 500, "Python")}, nil),
		fetcher.EXPECT().Fetch(gomock.Any(), "Anime", model.SortForks, 1).
			Return([]model.Repository{repo("otaku/list", 77, "TypeScript")}, nil),
	)
	fetcher.EXPECT().CacheInfo().Return(cache.Info{Enabled: true, TTL: 30 * time.Minute, Entries: 3, Hits: 1})

	m, _ := newTestModel(t, fetcher)

	assert.False(t, drive(t, m, m.Init()))
	assert.Contains(t, m.content, "octo/one")
	assert.Contains(t, m.content, "Press m for the next page.")
	assert.Equal(t, "2 repositories loaded from remote", m.status)
	assert.Zero(t, m.pending)

	press(t, m, "m")
	assert.Contains(t, m.content, "  3. octo/three")
	assert.NotContains(t, m.content, "Press m for the next page.")

	press(t, m, "m")
	assert.Equal(t, "No more repositories.", m.status)

	press(t, m, "S")
	assert.True(t, m.panel)
	assert.Contains(t, m.content, "repos 3")

	press(t, m, "esc")
	assert.False(t, m.panel)
	assert.Contains(t, m.content, "octo/three")

	typeCommand(t, m, "filter lang go")
	assert.NoError(t, m.err)
	assert.Contains(t, m.content, "octo/one")
	assert.NotContains(t, m.content, "octo/two")
	assert.Contains(t, m.View(), "1 of 3 shown")

	typeCommand(t, m, "filter clear")
	assert.Contains(t, m.content, "octo/two")

	typeCommand(t, m, "sort bogus")
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "unknown sort")

	press(t, m, "s")
	assert.Equal(t, model.SortForks, m.session.State().Sort)
	assert.NotContains(t, m.content, "octo/one")

	press(t, m, "tab")
	assert.Equal(t, "Anime", m.session.State().Category)
	assert.Contains(t, m.content, "otaku/list")

	press(t, m, "i")
	assert.Contains(t, m.content, "Entries: 3 (0 expired)")

	assert.True(t, press(t, m, "q"))
}

func TestBrowse_ErrorsDoNotEndSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := rmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "AI", model.SortStars, 1).Return(nil, assert.AnError)

	m, store := newTestModel(t, fetcher)

	drive(t, m, m.Init())
	require.ErrorIs(t, m.err, assert.AnError)
	assert.Contains(t, m.View(), assert.AnError.Error())

	assert.False(t, typeCommand(t, m, "filter since forever"))
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "invalid duration")

	typeCommand(t, m, "filter where stars >")
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "failed to compile filter expression")

	typeCommand(t, m, "whatever")
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), `unknown command "whatever"`)

	press(t, m, "t")
	assert.NoError(t, m.err)
	assert.Equal(t, "theme: light", m.status)

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeLight, p.Theme)
	assert.Equal(t, 1, p.Visits)
}

func TestBrowse_CommandLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := rmocks.NewMockFetcher(ctrl)
	gomock.InOrder(
		fetcher.EXPECT().Fetch(gomock.Any(), "AI", model.SortStars, 1).
			Return([]model.Repository{repo("octo/one", 900, "Go")}, nil),
		fetcher.EXPECT().Fetch(gomock.Any(), "IoT", model.SortStars, 1).
			Return([]model.Repository{repo("pi/blink", 40, "C")}, nil),
		fetcher.EXPECT().Fetch(gomock.Any(), "AI", model.SortStars, 1).
			Return([]model.Repository{repo("octo/one", 900, "Go")}, nil),
	)

	m, _ := newTestModel(t, fetcher)
	drive(t, m, m.Init())

	m.Update(keyMsg(":"))
	m.Update(keyMsg("q"))
	assert.Equal(t, modeCommand, m.mode, "keys go to the command line while it is open")
	m.Update(keyMsg("esc"))
	assert.Equal(t, modeResults, m.mode)
	assert.Empty(t, m.input.Value())

	press(t, m, "shift+tab")
	assert.Equal(t, "IoT", m.session.State().Category)
	assert.Contains(t, m.content, "pi/blink")

	typeCommand(t, m, "reset")
	assert.Equal(t, "AI", m.session.State().Category)

	typeCommand(t, m, "categories")
	assert.True(t, m.panel)
	assert.Contains(t, m.content, "Data Science")

	press(t, m, "?")
	assert.Contains(t, m.content, "filter where <expr>")

	typeCommand(t, m, "")
	assert.NoError(t, m.err)

	assert.True(t, typeCommand(t, m, "quit"))
}

func TestBrowse_WindowSize(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{})

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.view.Width)
	assert.Equal(t, 36, m.view.Height)

	m.Update(tea.WindowSizeMsg{Width: 10, Height: 2})
	assert.Equal(t, 1, m.view.Height)
}

func TestNext(t *testing.T) {
	items := []string{"a", "b", "c"}
	assert.Equal(t, "b", next(items, "a", 1))
	assert.Equal(t, "a", next(items, "c", 1))
	assert.Equal(t, "c", next(items, "a", -1))
	assert.Equal(t, "a", next(items, "zzz", 1))
}

// stubFetcher serves one fixed page without touching the test.
type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, category string, _ model.SortKey, page int) ([]model.Repository, error) {
	if page > 1 {
		return nil, nil
	}
	return []model.Repository{repo(strings.ToLower(category)+"/top", 1, "Go")}, nil
}

func (stubFetcher) ClearCache() cache.CleanResult { return cache.CleanResult{} }

func (stubFetcher) CacheInfo() cache.Info { return cache.Info{} }

func TestBrowse_Program(t *testing.T) {
	m, store := newTestModel(t, stubFetcher{})

	var out bytes.Buffer
	p := tea.NewProgram(m,
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(&out),
	)
	_, err := p.Run()
	require.NoError(t, err)
	assert.NotEmpty(t, out.String())

	prefsAfter, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, prefsAfter.Visits)
}
