package preview

import "github.com/charmbracelet/lipgloss"

// palette holds the colours for one theme.
type palette struct {
	accent  lipgloss.Color
	muted   lipgloss.Color
	text    lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	errorC  lipgloss.Color
	info    lipgloss.Color
}

var (
	lightPalette = palette{
		accent:  lipgloss.Color("#2563EB"),
		muted:   lipgloss.Color("#6B7280"),
		text:    lipgloss.Color("#111827"),
		success: lipgloss.Color("#16A34A"),
		warning: lipgloss.Color("#CA8A04"),
		errorC:  lipgloss.Color("#DC2626"),
		info:    lipgloss.Color("#2563EB"),
	}
	darkPalette = palette{
		accent:  lipgloss.Color("#FFB3BA"),
		muted:   lipgloss.Color("#6B7280"),
		text:    lipgloss.Color("#F9FAFB"),
		success: lipgloss.Color("#A8E6CF"),
		warning: lipgloss.Color("#FDE68A"),
		errorC:  lipgloss.Color("203"),
		info:    lipgloss.Color("#93C5FD"),
	}
)

// styles are derived from a palette whenever the theme changes.
type styles struct {
	header     lipgloss.Style
	tab        lipgloss.Style
	activeTab  lipgloss.Style
	cell       lipgloss.Style
	headCell   lipgloss.Style
	page       lipgloss.Style
	activePage lipgloss.Style
	info       lipgloss.Style
	help       lipgloss.Style
	input      lipgloss.Style
	toast      lipgloss.Style
	palette    palette
}

func newStyles(p palette) styles {
	return styles{
		header: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),

		tab: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),

		activeTab: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true).
			Underline(true).
			Padding(0, 1),

		cell: lipgloss.NewStyle().
			Foreground(p.text).
			PaddingRight(2),

		headCell: lipgloss.NewStyle().
			Foreground(p.muted).
			Bold(true).
			PaddingRight(2),

		page: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),

		activePage: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true).
			Padding(0, 1),

		info: lipgloss.NewStyle().
			Foreground(p.muted),

		help: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),

		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),

		toast: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),

		palette: p,
	}
}
