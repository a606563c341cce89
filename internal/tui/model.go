package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/config"
	"github.com/hay-kot/parcel/internal/core/notify"
	"github.com/hay-kot/parcel/internal/core/prefs"
	"github.com/hay-kot/parcel/internal/core/search"
	"github.com/hay-kot/parcel/internal/parcel"
	"github.com/hay-kot/parcel/internal/styles"
	"github.com/hay-kot/parcel/pkg/executil"
)

// UI states.
type uiState int

const (
	stateBrowse uiState = iota
	stateDetail
	stateConfirm
)

// Options configures the browser.
type Options struct {
	// View is the list shown first.
	View parcel.View
	// Executor runs shell keybindings. Defaults to the real shell.
	Executor executil.Executor
}

// browser is one list tab backed by its own coordinator.
type browser struct {
	view    parcel.View
	co      *search.Coordinator
	updates chan search.State
	unsub   []func()

	state  search.State
	rows   []row
	cursor int
	offset int
}

// push hands a published state to the UI, replacing one that was not
// picked up yet. Publishes are serialized by the coordinator.
func (b *browser) push(s search.State) {
	for {
		select {
		case b.updates <- s:
			return
		default:
		}
		select {
		case <-b.updates:
		default:
		}
	}
}

// selected returns the row under the cursor.
func (b *browser) selected() (row, bool) {
	if b.cursor < 0 || b.cursor >= len(b.rows) {
		return row{}, false
	}
	return b.rows[b.cursor], true
}

// Model is the Bubble Tea model of the package browser.
type Model struct {
	ctx     context.Context
	service *parcel.Service
	handler *KeybindingHandler
	keys    keyMap

	browsers []*browser
	active   int

	input   textinput.Model
	spinner spinner.Model
	detail  viewport.Model
	help    help.Model

	state   uiState
	pending Action
	status  string
	err     error
	prefs   string

	width  int
	height int
}

// stateMsg carries a coordinator publish to the UI goroutine.
type stateMsg struct {
	index int
	state search.State
}

// actionCompleteMsg is sent when a keybinding action finishes.
type actionCompleteMsg struct {
	status string
	err    error
}

// detailLoadedMsg is sent when the detail of a package is loaded.
type detailLoadedMsg struct {
	detail parcel.Detail
	err    error
}

// New creates the browser model. Call Close once the program exits.
func New(ctx context.Context, service *parcel.Service, cfg *config.Config, opts Options) Model {
	views := []parcel.View{
		{Kind: parcel.ViewSearch},
		{Kind: parcel.ViewInstalled},
		{Kind: parcel.ViewWishlist},
		{Kind: parcel.ViewHistory},
	}
	if opts.Executor == nil {
		opts.Executor = &executil.RealExecutor{}
	}
	if opts.View.Kind == parcel.ViewRepo {
		views = append(views, opts.View)
	}

	m := Model{
		ctx:     ctx,
		service: service,
		handler: NewKeybindingHandler(cfg.Keybindings, opts.Executor),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}

	for i, v := range views {
		b := &browser{view: v, updates: make(chan search.State, 1), cursor: -1}
		b.co = service.NewCoordinator(v, b.push)
		for _, ev := range v.Events() {
			b.unsub = append(b.unsub, service.Bus.Subscribe(ev, func(notify.Event) {
				b.co.Reload()
			}))
		}
		m.browsers = append(m.browsers, b)

		if v.Kind == opts.View.Kind {
			m.active = i
		}
	}

	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.PromptStyle = promptStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.ColorBlue)
	ti.Placeholder = "type to filter"
	m.input = ti

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorBlue)
	m.spinner = s

	m.detail = viewport.New(0, 0)

	hs := lipgloss.NewStyle().Foreground(styles.ColorGray)
	m.help.Styles.ShortKey = hs
	m.help.Styles.ShortDesc = hs
	m.help.Styles.ShortSeparator = hs
	m.help.ShortSeparator = " • "

	return m
}

// Close unsubscribes from change notifications and stops every
// coordinator.
func (m Model) Close() {
	for _, b := range m.browsers {
		for _, fn := range b.unsub {
			fn()
		}
		b.co.Close()
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadPrefs(), schedulePrefsTick()}
	for i, b := range m.browsers {
		cmds = append(cmds, waitForState(i, b.updates), m.loadBrowser(b))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-4, 10)
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-2, 1)
		return m, nil

	case stateMsg:
		b := m.browsers[msg.index]
		b.state = msg.state
		m.rebuild(b)
		return m, waitForState(msg.index, b.updates)

	case prefsLoadedMsg:
		if msg.err != nil {
			return m, nil
		}
		if m.prefs != "" && msg.fingerprint != m.prefs {
			for _, b := range m.browsers {
				b.co.Reload()
			}
		}
		m.prefs = msg.fingerprint
		return m, nil

	case prefsTickMsg:
		return m, tea.Batch(m.loadPrefs(), schedulePrefsTick())

	case actionCompleteMsg:
		m.status, m.err = msg.status, msg.err
		for _, b := range m.browsers {
			m.rebuild(b)
		}
		return m, nil

	case detailLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		width := min(max(m.width-4, 40), 120)
		m.detail.SetContent(styles.RenderMarkdown(msg.detail.Markdown(), width))
		m.detail.GotoTop()
		m.state = stateDetail
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}

		switch m.state {
		case stateDetail:
			return m.updateDetail(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		}

		if m.input.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m Model) current() *browser {
	return m.browsers[m.active]
}

// rebuild recomputes the rows of b from its last published state.
func (m *Model) rebuild(b *browser) {
	prevKey := ""
	if r, ok := b.selected(); ok {
		prevKey = r.key()
	}

	annotator := m.service.Annotator(m.ctx, b.view)
	b.rows = buildRows(b.state, annotator, m.service.Wishlist.IsInWishlist)
	b.cursor = clampCursor(b.rows, b.cursor, prevKey)
	m.scroll(b)
}

// listHeight is the number of rows visible in the list area.
func (m Model) listHeight() int {
	// banner (4) + tabs (1) + prompt (1) + spacer (1) + status (1) + help (1)
	return max(m.height-9, 1)
}

func (m Model) scroll(b *browser) {
	h := m.listHeight()
	if b.cursor < 0 {
		b.offset = 0
		return
	}
	if b.cursor < b.offset {
		b.offset = b.cursor
		// keep the section header above the first row of a section visible
		if b.offset > 0 && !b.rows[b.offset-1].selectable() {
			b.offset--
		}
	}
	if b.cursor >= b.offset+h {
		b.offset = b.cursor - h + 1
	}
}

func (m *Model) move(delta int) {
	b := m.current()
	if len(b.rows) == 0 {
		return
	}

	dir := 1
	if delta < 0 {
		dir = -1
	}

	target := min(max(b.cursor+delta, 0), len(b.rows)-1)
	next := nextSelectable(b.rows, target, dir)
	if next < 0 {
		next = nextSelectable(b.rows, target, -dir)
	}
	if next < 0 {
		return
	}

	b.cursor = next
	if dir < 0 && nextSelectable(b.rows, next-1, -1) < 0 {
		b.offset = 0
	}
	m.scroll(b)
}

func (m *Model) switchView(delta int) {
	m.active = (m.active + delta + len(m.browsers)) % len(m.browsers)
	m.input.SetValue(m.current().co.Query())
	m.input.Blur()
	m.status, m.err = "", nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.current()

	switch {
	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.input.Blur()
		b.co.Cancel()
		b.co.Search("")
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.input.Blur()
		return m, m.submitSearch(b, m.input.Value())
	case msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		if msg.Type == tea.KeyUp {
			m.move(-1)
		} else {
			m.move(1)
		}
		return m, nil
	case key.Matches(msg, m.keys.NextView):
		m.switchView(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevView):
		m.switchView(-1)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		b.co.Search(after)
	}
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Clear):
		if m.input.Value() != "" {
			m.input.SetValue("")
			b.co.Cancel()
			b.co.Search("")
		}
		m.status, m.err = "", nil
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.listHeight())
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.listHeight())
		return m, nil
	case key.Matches(msg, m.keys.NextView):
		m.switchView(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevView):
		m.switchView(-1)
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCatalog()
	case key.Matches(msg, m.keys.Sort):
		next := nextSortMode(m.service.Prefs.SortMode(m.ctx))
		return m, m.setPref(prefs.KeySortMode, string(next), "Installed packages sorted by "+string(next))
	case key.Matches(msg, m.keys.ToggleIgnored):
		return m, m.togglePref(prefs.KeyShowIgnored, m.service.Prefs.ShowIgnoredUpdates(m.ctx), "held updates")
	case key.Matches(msg, m.keys.ToggleProvisional):
		return m, m.togglePref(prefs.KeyShowProvisional, m.service.Prefs.ShowProvisional(m.ctx), "new source results")
	case key.Matches(msg, m.keys.ToggleHistory):
		return m, m.togglePref(prefs.KeyShowSearchHistory, m.service.Prefs.ShowSearchHistory(m.ctx), "recent searches")
	}

	r, ok := b.selected()
	if !ok {
		return m, nil
	}

	if r.kind == rowTerm && key.Matches(msg, m.keys.Submit) {
		m.input.SetValue(r.term)
		b.co.Search(r.term)
		return m, m.submitSearch(b, r.term)
	}

	pkg := r.pkg
	if r.kind == rowProvisional {
		pkg = provisionalPackage(r.provisional)
	}

	action, ok := m.handler.Resolve(msg.String(), pkg)
	if !ok {
		return m, nil
	}
	if action.NeedsConfirm() {
		m.pending = action
		m.state = stateConfirm
		return m, nil
	}
	return m, m.executeAction(action)
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.state = stateBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.state = stateBrowse
	action := m.pending
	m.pending = Action{}

	if strings.EqualFold(msg.String(), "y") {
		return m, m.executeAction(action)
	}
	m.status = "Cancelled"
	return m, nil
}

func nextSortMode(mode prefs.SortMode) prefs.SortMode {
	switch mode {
	case prefs.SortName:
		return prefs.SortInstallDate
	case prefs.SortInstallDate:
		return prefs.SortSize
	default:
		return prefs.SortName
	}
}

func provisionalPackage(p catalog.ProvisionalPackage) catalog.Package {
	return catalog.Package{
		ID:          p.ID,
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
		Author:      p.Author,
		Repo:        p.Repo,
	}
}

func toggleStatus(what string, on bool) string {
	if on {
		return fmt.Sprintf("Showing %s", what)
	}
	return fmt.Sprintf("Hiding %s", what)
}
