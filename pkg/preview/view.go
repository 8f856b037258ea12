package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/toast"
)

const maxCellWidth = 28

var toastIcons = map[toast.Category]string{
	toast.Success: "✓",
	toast.Error:   "✗",
	toast.Warning: "!",
	toast.Info:    "i",
}

// View renders the listing, the page strip and any visible toasts.
func (m *Model) View() string {
	s := m.styles
	sections := []string{
		s.header.Render("pagekit · " + m.page.Type.Title()),
		m.renderTabs(),
		"",
		m.renderTable(),
		"",
		m.renderResults(),
		m.renderPageStrip(),
	}
	if m.jumping {
		sections = append(sections, s.input.Render("Go to page: "+m.jump.View()))
	}
	if m.status != "" {
		sections = append(sections, s.info.Render(m.status))
	}
	sections = append(sections, s.help.Render("←/→ page · g jump · p per page · f log type · t theme · y copy link · x dismiss · q quit"))

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if toasts := m.renderToasts(); toasts != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, toasts)
	}
	return view
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(logs.Types))
	for _, t := range logs.Types {
		if t == m.page.Type {
			tabs = append(tabs, m.styles.activeTab.Render(t.Title()))
			continue
		}
		tabs = append(tabs, m.styles.tab.Render(t.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderTable() string {
	columns := logs.Columns(m.page.Type)
	if len(m.page.Entries) == 0 {
		return m.styles.info.Render("No entries found.")
	}

	rows := make([][]string, 0, len(m.page.Entries)+1)
	rows = append(rows, columns)
	now := m.clock.Now()
	for _, e := range m.page.Entries {
		rows = append(rows, e.Row(now))
	}

	widths := make([]int, len(columns))
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], min(lipgloss.Width(cell), maxCellWidth))
			}
		}
	}

	var b strings.Builder
	for r, row := range rows {
		style := m.styles.cell
		if r == 0 {
			style = m.styles.headCell
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = style.Width(widths[i] + 2).Render(truncate(cell, maxCellWidth))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		if r < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) renderResults() string {
	d := m.page.Pagination
	if d.Total == 0 {
		return m.styles.info.Render("No entries")
	}
	start, end := d.Range()
	return m.styles.info.Render(fmt.Sprintf("Showing %d to %d of %d entries · %d per page", start, end, d.Total, d.PerPage))
}

func (m *Model) renderPageStrip() string {
	d := m.page.Pagination
	if d.Pages <= 1 {
		return m.styles.info.Render(fmt.Sprintf("Page %d of %d", d.Page, max(d.Pages, 1)))
	}

	parts := []string{m.styles.page.Render(arrow("‹ Prev", d.HasPrev))}
	for _, item := range m.controls.PageItems(d) {
		switch item.Kind {
		case pagination.KindMore:
			parts = append(parts, m.styles.page.Render("…"))
		default:
			if item.Active {
				parts = append(parts, m.styles.activePage.Render(fmt.Sprintf("[%d]", item.Page)))
				continue
			}
			parts = append(parts, m.styles.page.Render(fmt.Sprint(item.Page)))
		}
	}
	parts = append(parts, m.styles.page.Render(arrow("Next ›", d.HasNext)))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderToasts() string {
	active := m.toasts.Active()
	if len(active) == 0 {
		return ""
	}

	boxWidth := m.width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	boxes := make([]string, 0, len(active))
	for _, t := range active {
		border := m.categoryColor(t.Category)
		boxes = append(boxes, m.styles.toast.
			BorderForeground(border).
			Width(boxWidth).
			Render(fmt.Sprintf("%s %s", toastIcons[t.Category], t.Text)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func (m *Model) categoryColor(c toast.Category) lipgloss.Color {
	p := m.styles.palette
	switch c {
	case toast.Success:
		return p.success
	case toast.Error:
		return p.errorC
	case toast.Warning:
		return p.warning
	}
	return p.info
}

func arrow(label string, enabled bool) string {
	if enabled {
		return label
	}
	return strings.Repeat(" ", lipgloss.Width(label))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
