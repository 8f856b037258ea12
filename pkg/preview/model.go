// Package preview is a terminal browser for the admin log listings. It
// drives the same pagination, toast and theme behaviours the pages use, so
// their rules can be tried without a browser.
package preview

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/theme"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/entrhq/pagekit/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("preview")
	if err != nil {
		debugLog.Warnf("preview logging degraded: %v", err)
	}
}

const (
	typeParam    = "type"
	tickInterval = 250 * time.Millisecond
)

// Options configure a preview Model.
type Options struct {
	// BaseURL is the listing URL whose query the preview manipulates.
	BaseURL string

	// ThemeStorage persists the theme preference. Defaults to memory.
	ThemeStorage theme.Storage
	Scheme       theme.Scheme

	Policy toast.Policy
	Clock  toast.Clock

	// Copy writes to the clipboard. Defaults to atotto/clipboard.
	Copy func(string) error
}

type tickMsg time.Time

// Model is the bubbletea model of the preview.
type Model struct {
	svc      *logs.Service
	core     *pagination.Core
	controls *pagination.Controls
	nav      *pagination.Interactions
	toasts   *toast.Manager
	theme    *theme.Manager
	clock    toast.Clock
	copy     func(string) error

	current *url.URL
	page    logs.Page
	status  string
	jump    textinput.Model
	jumping bool
	styles  styles

	width  int
	height int
}

// New creates a model listing svc's entries starting at the default type.
func New(svc *logs.Service, opts Options) (*Model, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "/admin/logs"
	}
	if opts.ThemeStorage == nil {
		opts.ThemeStorage = theme.NewMemoryStorage()
	}
	if opts.Clock == nil {
		opts.Clock = toast.RealClock()
	}
	if opts.Policy.Delay == 0 {
		opts.Policy = toast.DefaultPolicy()
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	popts := svc.Options()
	core := pagination.NewCore(popts)
	start, err := core.BuildURL(opts.BaseURL, 1, map[string]string{typeParam: string(logs.DefaultType)}, popts.DefaultPerPage)
	if err != nil {
		return nil, err
	}
	current, err := url.Parse(start)
	if err != nil {
		return nil, err
	}

	jump := textinput.New()
	jump.Placeholder = "page"
	jump.CharLimit = 6
	jump.Width = 8

	m := &Model{
		svc:      svc,
		core:     core,
		controls: pagination.NewControls(core),
		current:  current,
		jump:     jump,
		clock:    opts.Clock,
		copy:     opts.Copy,
		width:    80,
		height:   24,
	}
	m.toasts = toast.NewManager(nil, toast.WithPolicy(opts.Policy), toast.WithClock(opts.Clock))
	m.nav = pagination.NewInteractions(popts, m.handleEvent)
	m.theme = theme.NewManager(nil, opts.ThemeStorage, opts.Scheme, m.handleEvent)
	m.theme.Init()
	m.restyle()

	if err := m.load(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// Init starts the toast expiry tick.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles key presses and ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.page.Pagination

	switch msg.String() {
	case "q", "ctrl+c":
		m.toasts.Close()
		return m, tea.Quit

	case "right", "l", "n":
		if d.HasNext {
			m.goToPage(strconv.Itoa(d.NextNum))
		}

	case "left", "h", "b":
		if d.HasPrev {
			m.goToPage(strconv.Itoa(d.PrevNum))
		}

	case "home":
		if d.Pages > 0 {
			m.goToPage("1")
		}

	case "end":
		if d.Pages > 0 {
			m.goToPage(strconv.Itoa(d.Pages))
		}

	case "g":
		m.jumping = true
		m.jump.SetValue("")
		return m, m.jump.Focus()

	case "p":
		m.navigate(m.nav.ChangePerPage(m.current, m.nextPerPage()))

	case "f", "tab":
		m.navigate(m.nav.ChangeFilter(m.current, typeParam, string(m.nextType())))

	case "t":
		if err := m.theme.Cycle(); err != nil {
			m.toasts.Show(err.Error(), toast.Error)
		}
		m.restyle()

	case "y":
		m.copyURL()

	case "x", "esc":
		m.dismissNewest()
	}
	return m, nil
}

func (m *Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.jumping = false
		m.jump.Blur()
		return m, nil

	case tea.KeyEnter:
		m.jumping = false
		m.jump.Blur()
		m.goToPage(m.jump.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	if clamped := m.nav.ClampInput(m.jump.Value(), m.page.Pagination.Pages); clamped != m.jump.Value() {
		m.jump.SetValue(clamped)
	}
	return m, cmd
}

// goToPage validates input through the jump-to-page rules. Rejections
// surface as error toasts through handleEvent.
func (m *Model) goToPage(input string) {
	next, err := m.nav.JumpToPage(m.current, input, m.page.Pagination.Pages)
	if err != nil {
		var inputErr *pagination.InputError
		if errors.As(err, &inputErr) && inputErr.Clamp > 0 {
			m.jump.SetValue(strconv.Itoa(inputErr.Clamp))
		}
		return
	}
	m.navigate(next)
}

func (m *Model) navigate(next *url.URL) {
	prev := m.current
	m.current = next
	if err := m.load(context.Background()); err != nil {
		debugLog.Errorf("failed to load %s: %v", next, err)
		m.current = prev
		m.toasts.Show("Unable to load logs.", toast.Error)
	}
}

// load fetches the page m.current points at. A page past the end is shown
// as the last page.
func (m *Model) load(ctx context.Context) error {
	q := m.current.Query()
	opts := m.svc.Options()

	typ, err := logs.ParseType(q.Get(typeParam))
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(q.Get(opts.PageParam))
	perPage, _ := strconv.Atoi(q.Get(opts.PerPageParam))
	if perPage == 0 {
		perPage = opts.DefaultPerPage
	}

	p, err := m.svc.Page(ctx, typ, page, perPage)
	if err != nil {
		return err
	}
	m.page = p
	return nil
}

func (m *Model) nextPerPage() int {
	options := m.svc.Options().PerPageOptions
	current := m.page.Pagination.PerPage
	for i, n := range options {
		if n == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (m *Model) nextType() logs.Type {
	for i, t := range logs.Types {
		if t == m.page.Type {
			return logs.Types[(i+1)%len(logs.Types)]
		}
	}
	return logs.DefaultType
}

func (m *Model) copyURL() {
	if err := m.copy(m.current.String()); err != nil {
		debugLog.Warnf("clipboard write failed: %v", err)
		m.toasts.Show("Could not copy the link.", toast.Error)
		return
	}
	m.toasts.Show("Link copied to clipboard.", toast.Success)
}

func (m *Model) dismissNewest() {
	active := m.toasts.Active()
	if len(active) == 0 {
		return
	}
	m.toasts.Dismiss(active[len(active)-1].ID)
}

func (m *Model) handleEvent(e *types.UIEvent) {
	switch e.Type {
	case types.EventTypeNavigate:
		m.status = e.Message
	case types.EventTypeNavigateRejected:
		m.toasts.Show(e.Message, toast.Error)
	case types.EventTypeThemeChange:
		if e.Theme != nil {
			m.status = "Theme: " + e.Theme.Preference
		}
	}
}

func (m *Model) restyle() {
	if m.theme.Effective() == theme.Dark {
		m.styles = newStyles(darkPalette)
		return
	}
	m.styles = newStyles(lightPalette)
}

// URL is the listing URL currently shown.
func (m *Model) URL() string {
	return m.current.String()
}

// Page is the listing currently shown.
func (m *Model) Page() logs.Page {
	return m.page
}

// Toasts lists the visible notifications.
func (m *Model) Toasts() []toast.Toast {
	return m.toasts.Active()
}

// Theme is the applied theme preference.
func (m *Model) Theme() theme.Preference {
	return m.theme.Preference()
}

// Run starts the program on the terminal.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
