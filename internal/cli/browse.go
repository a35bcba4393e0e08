package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/dashboard"
	"github.com/glorpus-work/repodash/pkg/filter"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/prefs"
	"github.com/glorpus-work/repodash/pkg/retrieval"
)

const browseHelp = `Keys:
  m                     load the next page
  s                     next sort order
  tab / shift+tab       next / previous category
  r                     drop cached data and reload page 1
  R                     back to the default category and sort
  S                     summarize loaded repositories
  c                     list categories
  i                     show response cache statistics
  t                     toggle dark and light colors
  : or /                type a command
  esc                   back to the results
  ?                     show this help
  q                     leave

Commands:
  category <name>       switch category (page 1)
  categories            list categories
  sort <key>            stars, forks, updated, newest, trending
  more                  load the next page
  filter lang <L,...>   show only these languages ("other" for none)
  filter since <range>  show only repositories updated within range
  filter where <expr>   filter with an expression
  filter clear          remove every filter
  refresh               drop cached data and reload page 1
  reset                 back to the default category and sort
  stats                 summarize loaded repositories
  cache                 show response cache statistics
  theme                 toggle dark and light colors
  help                  show this help
  quit                  leave
`

const browseHints = "m more  s sort  tab category  : command  ? help  q quit"

// NewBrowseCmd creates the interactive browse command.
func NewBrowseCmd() *cobra.Command {
	var sort string

	cmd := &cobra.Command{
		Use:   "browse [category]",
		Short: "Browse repositories interactively",
		Long: `Open an interactive dashboard session. Pick categories, change the sort
order, load more pages and filter the loaded repositories. Press '?' inside
the session for the list of keys and commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			m := newBrowseModel(cmd.Context(), browseOpts{
				Session: dashboard.New(a.mediator, dashboard.Options{
					Category:   strings.Join(args, " "),
					Sort:       model.SortKey(sort),
					Categories: len(a.registry.Names()),
				}),
				Printer:    newPrinter(cmd.OutOrStdout(), a.registry, "text"),
				Prefs:      prefs.NewStore(a.cfg.GetStateDir()),
				CacheInfo:  a.mediator.CacheInfo,
				Categories: a.registry.Names(),
				Now:        time.Now,
			})

			p := tea.NewProgram(m,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&sort, "sort", "s", string(dashboard.DefaultSort), "initial sort order")
	return cmd
}

type browseMode int

const (
	modeResults browseMode = iota
	modeCommand
)

// pageLoadedMsg carries the outcome of one session load.
type pageLoadedMsg struct {
	update *dashboard.Update
	err    error
}

// browseOpts holds the parameters of a browse session.
type browseOpts struct {
	Session    *dashboard.Session
	Printer    *printer
	Prefs      *prefs.Store
	CacheInfo  func() cache.Info
	Categories []string
	Now        func() time.Time
}

// browseModel is the bubbletea model of the browse session. Session loads
// run as commands and come back as pageLoadedMsg.
type browseModel struct {
	ctx        context.Context
	session    *dashboard.Session
	printer    *printer
	prefs      *prefs.Store
	cacheInfo  func() cache.Info
	categories []string

	mode    browseMode
	input   textinput.Model
	spinner spinner.Model
	view    viewport.Model

	content string
	panel   bool
	shown   int
	pending int
	source  retrieval.Source
	status  string
	err     error
}

func newBrowseModel(ctx context.Context, opts browseOpts) *browseModel {
	m := &browseModel{
		ctx:        ctx,
		session:    opts.Session,
		printer:    opts.Printer,
		prefs:      opts.Prefs,
		cacheInfo:  opts.CacheInfo,
		categories: opts.Categories,
		view:       viewport.New(80, 20),
	}

	ti := textinput.New()
	ti.Placeholder = "category Anime, sort forks, filter lang go"
	ti.Prompt = m.printer.title.Render(": ")
	ti.CharLimit = 200
	m.input = ti

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = m.printer.star
	m.spinner = sp

	if now := opts.Now; now != nil {
		if p, err := m.prefs.RecordVisit(now()); err != nil {
			logger.Warn("Failed to record visit", logger.Fields{"error": err.Error()})
		} else {
			m.printer.setTheme(p.Theme)
			logger.Debug("Session started", logger.Fields{"visits": p.Visits, "theme": p.Theme})
		}
	}
	return m
}

func (m *browseModel) Init() tea.Cmd {
	return m.load(m.session.Load)
}

// load runs fn as a command. The spinner ticks while any load is pending.
func (m *browseModel) load(fn func(context.Context) (*dashboard.Update, error)) tea.Cmd {
	ctx := m.ctx
	m.pending++
	cmd := func() tea.Msg {
		update, err := fn(ctx)
		return pageLoadedMsg{update: update, err: err}
	}
	if m.pending == 1 {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(1, msg.Height-4)
		m.input.Width = max(1, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		return m, m.handleKey(msg)

	case pageLoadedMsg:
		if m.pending > 0 {
			m.pending--
		}
		m.applyLoad(msg)
		return m, nil

	case spinner.TickMsg:
		if m.pending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.mode == modeCommand {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browseModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.mode == modeCommand {
		return m.handleCommandKey(msg)
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case ":", "/":
		m.mode = modeCommand
		m.input.Focus()
		return textinput.Blink
	case "esc":
		if m.panel {
			m.showResults()
		}
		return nil
	case "m":
		return m.load(m.session.LoadMore)
	case "s":
		return m.setSort(next(model.SortKeys(), m.session.State().Sort, 1))
	case "tab":
		return m.stepCategory(1)
	case "shift+tab":
		return m.stepCategory(-1)
	case "r":
		return m.load(m.session.Refresh)
	case "R":
		return m.load(m.session.Reset)
	case "S":
		m.showPanel(func() error { return m.printer.printStats(m.session.Stats()) })
		return nil
	case "c":
		m.showPanel(m.printer.printCategories)
		return nil
	case "i":
		m.showCache()
		return nil
	case "t":
		m.err = m.toggleTheme()
		return nil
	case "?":
		m.showPanel(func() error {
			m.printer.printf("%s", browseHelp)
			return nil
		})
		return nil
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return cmd
}

func (m *browseModel) handleCommandKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.leaveCommand()
		return nil
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.leaveCommand()
		if line == "" {
			return nil
		}
		cmd, err := m.exec(line)
		m.err = err
		return cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *browseModel) leaveCommand() {
	m.mode = modeResults
	m.input.Reset()
	m.input.Blur()
}

func (m *browseModel) exec(line string) (tea.Cmd, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return tea.Quit, nil
	case "help", "?":
		m.showPanel(func() error {
			m.printer.printf("%s", browseHelp)
			return nil
		})
	case "category", "cat", "c":
		return m.load(func(ctx context.Context) (*dashboard.Update, error) {
			return m.session.SetCategory(ctx, arg)
		}), nil
	case "categories":
		m.showPanel(m.printer.printCategories)
	case "sort", "s":
		key := model.SortKey(strings.ToLower(arg))
		if !key.Known() {
			return nil, fmt.Errorf("unknown sort %q", arg)
		}
		return m.setSort(key), nil
	case "more", "m":
		return m.load(m.session.LoadMore), nil
	case "filter", "f":
		return nil, m.filter(arg)
	case "refresh", "r":
		return m.load(m.session.Refresh), nil
	case "reset":
		return m.load(m.session.Reset), nil
	case "stats":
		m.showPanel(func() error { return m.printer.printStats(m.session.Stats()) })
	case "cache":
		m.showCache()
	case "theme":
		return nil, m.toggleTheme()
	default:
		return nil, fmt.Errorf("unknown command %q, press ? for help", cmd)
	}
	return nil, nil
}

func (m *browseModel) filter(arg string) error {
	kind, value, _ := strings.Cut(arg, " ")
	value = strings.TrimSpace(value)
	c := m.session.Filter()

	switch strings.ToLower(kind) {
	case "lang", "language":
		c.Languages = nil
		for _, l := range strings.Split(value, ",") {
			if l = strings.TrimSpace(l); l != "" {
				c.Languages = append(c.Languages, l)
			}
		}
	case "since":
		d, err := filter.ParseRange(value)
		if err != nil {
			return err
		}
		c.Since = d
	case "where":
		c.Where = value
	case "clear":
		c = filter.Criteria{}
	default:
		return fmt.Errorf("unknown filter %q (lang, since, where, clear)", kind)
	}

	if err := m.session.SetFilter(c); err != nil {
		return err
	}
	m.showResults()
	m.view.GotoTop()
	return nil
}

func (m *browseModel) setSort(key model.SortKey) tea.Cmd {
	return m.load(func(ctx context.Context) (*dashboard.Update, error) {
		return m.session.SetSort(ctx, key)
	})
}

func (m *browseModel) stepCategory(step int) tea.Cmd {
	if len(m.categories) == 0 {
		return nil
	}
	name := next(m.categories, m.session.State().Category, step)
	return m.load(func(ctx context.Context) (*dashboard.Update, error) {
		return m.session.SetCategory(ctx, name)
	})
}

// next returns the item step places after current, wrapping around. An
// unknown current value starts from the first item.
func next[T comparable](items []T, current T, step int) T {
	i := slices.Index(items, current)
	if i < 0 {
		return items[0]
	}
	n := len(items)
	return items[((i+step)%n+n)%n]
}

func (m *browseModel) toggleTheme() error {
	theme, err := m.prefs.ToggleTheme()
	if err != nil {
		return err
	}
	m.printer.setTheme(theme)
	m.status = "theme: " + theme
	if !m.panel {
		m.showResults()
	}
	return nil
}

func (m *browseModel) applyLoad(msg pageLoadedMsg) {
	switch {
	case stderrors.Is(msg.err, dashboard.ErrNoMorePages):
		m.status = "No more repositories."
	case msg.err != nil:
		m.err = msg.err
	case msg.update.Stale:
	default:
		m.source = msg.update.Result.Source
		st := m.session.State()
		m.status = fmt.Sprintf("%d repositories loaded from %s", st.Results, m.source)
		m.showResults()
		if msg.update.Replace {
			m.view.GotoTop()
		}
	}
}

func (m *browseModel) showResults() {
	visible, err := m.session.Visible(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.shown = len(visible)

	text, err := m.printer.capture(func() error {
		if len(visible) == 0 {
			m.printer.printf("%s\n", m.printer.dim.Render("No repositories match."))
			return nil
		}
		if err := m.printer.printRepos(visible, 0); err != nil {
			return err
		}
		if m.session.State().HasMore {
			m.printer.printf("\n%s\n", m.printer.dim.Render("Press m for the next page."))
		}
		return nil
	})
	if err != nil {
		m.err = err
		return
	}
	m.panel = false
	m.setContent(text)
}

func (m *browseModel) showPanel(render func() error) {
	text, err := m.printer.capture(render)
	if err != nil {
		m.err = err
		return
	}
	m.panel = true
	m.setContent(text)
	m.view.GotoTop()
}

func (m *browseModel) showCache() {
	if m.cacheInfo == nil {
		return
	}
	m.showPanel(func() error { return m.printer.printCacheInfo(m.cacheInfo()) })
}

func (m *browseModel) setContent(text string) {
	m.content = text
	m.view.SetContent(text)
}

func (m *browseModel) View() string {
	st := m.session.State()

	meta := fmt.Sprintf("by %s · page %d", st.Sort, st.Page)
	if m.source != "" {
		meta += " · " + string(m.source)
	}
	if !st.Filter.IsZero() {
		meta += fmt.Sprintf(" · %d of %d shown", m.shown, st.Results)
	}
	header := m.printer.title.Render(st.Category) + " " + m.printer.dim.Render(meta)

	var status string
	switch {
	case m.err != nil:
		status = m.printer.errStyle.Render("error: ") + m.err.Error()
	case m.pending > 0:
		status = m.spinner.View() + " Loading..."
	default:
		status = m.printer.dim.Render(m.status)
	}

	footer := m.printer.dim.Render(browseHints)
	if m.mode == modeCommand {
		footer = m.input.View()
	}

	return strings.Join([]string{header, m.view.View(), status, footer}, "\n")
}
