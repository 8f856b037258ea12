package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/theme"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, entries int, copyFn func(string) error) (*Model, *toast.ManualClock) {
	t.Helper()
	store := logs.NewMemoryStore()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < entries; i++ {
		require.NoError(t, store.Insert(context.Background(), logs.Entry{
			Type:      logs.LoginAttempts,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Username:  fmt.Sprintf("user%03d", i),
			IPAddress: "10.0.0.1",
		}))
	}

	clock := toast.NewManualClock(base)
	if copyFn == nil {
		copyFn = func(string) error { return nil }
	}
	m, err := New(logs.NewService(store, pagination.DefaultOptions()), Options{
		Clock:  clock,
		Scheme: theme.StaticScheme(false),
		Copy:   copyFn,
	})
	require.NoError(t, err)
	return m, clock
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

func TestModel_StartsOnFirstPage(t *testing.T) {
	m, _ := newModel(t, 60, nil)

	assert.Equal(t, "/admin/logs?page=1&per_page=25&type=login_attempts", m.URL())
	d := m.Page().Pagination
	assert.Equal(t, 1, d.Page)
	assert.Equal(t, 3, d.Pages)
	assert.Len(t, m.Page().Entries, 25)

	view := m.View()
	assert.Contains(t, view, "Showing 1 to 25 of 60 entries")
	assert.Contains(t, view, "[1]")
	assert.Contains(t, view, "user059")
}

func TestModel_NextAndPrev(t *testing.T) {
	m, _ := newModel(t, 60, nil)

	press(m, "right", "right")
	assert.Equal(t, 3, m.Page().Pagination.Page)
	assert.Len(t, m.Page().Entries, 10)

	press(m, "right")
	assert.Equal(t, 3, m.Page().Pagination.Page, "no page past the last")

	press(m, "left")
	assert.Equal(t, 2, m.Page().Pagination.Page)
	assert.Contains(t, m.URL(), "page=2")
}

func TestModel_JumpToPage(t *testing.T) {
	m, _ := newModel(t, 60, nil)

	press(m, "g", "2", "enter")
	assert.Equal(t, 2, m.Page().Pagination.Page)
	assert.Contains(t, m.status, "Jumping to page 2")
}

func TestModel_JumpRejected(t *testing.T) {
	m, _ := newModel(t, 60, nil)

	m.jumping = true
	m.jump.SetValue("abc")
	press(m, "enter")

	assert.Equal(t, 1, m.Page().Pagination.Page)
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Please enter a valid page number.", toasts[0].Text)
	assert.Equal(t, toast.Error, toasts[0].Category)
}

func TestModel_JumpInputClamped(t *testing.T) {
	m, _ := newModel(t, 60, nil)

	press(m, "g", "9")
	assert.Equal(t, "3", m.jump.Value())

	press(m, "esc")
	assert.False(t, m.jumping)
	assert.Equal(t, 1, m.Page().Pagination.Page)
}

func TestModel_ChangePerPageRestartsAtFirstPage(t *testing.T) {
	m, _ := newModel(t, 60, nil)

	press(m, "right", "p")
	d := m.Page().Pagination
	assert.Equal(t, 50, d.PerPage)
	assert.Equal(t, 1, d.Page)
	assert.NotContains(t, m.URL(), "page=2")
	assert.Equal(t, "Changing to 50 items per page...", m.status)

	press(m, "p", "p")
	assert.Equal(t, 25, m.Page().Pagination.PerPage, "per page options wrap around")
}

func TestModel_ChangeFilter(t *testing.T) {
	m, _ := newModel(t, 60, nil)

	press(m, "right", "f")
	assert.Equal(t, logs.UserRegistrations, m.Page().Type)
	assert.Equal(t, 1, m.Page().Pagination.Page)
	assert.Contains(t, m.View(), "No entries found.")
}

func TestModel_ThemeCycle(t *testing.T) {
	m, _ := newModel(t, 0, nil)
	assert.Equal(t, theme.System, m.Theme())

	press(m, "t")
	assert.Equal(t, theme.Light, m.Theme())
	press(m, "t")
	assert.Equal(t, theme.Dark, m.Theme())
	assert.Equal(t, darkPalette, m.styles.palette)
	assert.Equal(t, "Theme: dark", m.status)
}

func TestModel_CopyURL(t *testing.T) {
	var copied string
	m, clock := newModel(t, 30, func(s string) error { copied = s; return nil })

	press(m, "y")
	assert.Equal(t, m.URL(), copied)
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, toast.Success, toasts[0].Category)

	clock.Advance(5 * time.Second)
	assert.Empty(t, m.Toasts(), "success toasts expire")
}

func TestModel_CopyFailureIsPersistent(t *testing.T) {
	m, clock := newModel(t, 0, func(string) error { return errors.New("no clipboard") })

	press(m, "y")
	clock.Advance(time.Minute)
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Could not copy the link.", toasts[0].Text)

	press(m, "x")
	assert.Empty(t, m.Toasts())
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(t, 0, nil)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_ViewStrip(t *testing.T) {
	m, _ := newModel(t, 300, nil)

	press(m, "g", "6", "enter")
	view := m.View()
	assert.Contains(t, view, "[6]")
	assert.Contains(t, view, "…")
	assert.True(t, strings.Contains(view, "12"), "last page is listed")
}
