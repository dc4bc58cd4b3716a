package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/pinmap/internal/tui/styles"
)

type menuItem struct {
	key   string
	label string
	desc  string
	msg   tea.Msg // nil quits
}

type HomeModel struct {
	items   []menuItem
	cursor  int
	version string
}

// NewHomeModel builds the menu. dbPath is the configured catalog opened by
// the first entry.
func NewHomeModel(dbPath, version string) HomeModel {
	return HomeModel{
		version: version,
		items: []menuItem{
			{key: "o", label: "Open Map", desc: "Browse " + dbPath, msg: NavigateToMap{DBPath: dbPath}},
			{key: "l", label: "Load Catalog", desc: "Open another .db file", msg: NavigateToPicker{}},
			{key: "r", label: "Recent Catalogs", desc: "Reopen a recent catalog", msg: NavigateToRecent{}},
			{key: "q", label: "Quit", desc: "Exit pinmap"},
		},
	}
}

func (m HomeModel) Init() tea.Cmd {
	return nil
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		return m, m.handleSelect()
	default:
		for i, it := range m.items {
			if key.String() == it.key {
				m.cursor = i
				return m, m.handleSelect()
			}
		}
	}
	return m, nil
}

func (m HomeModel) handleSelect() tea.Cmd {
	it := m.items[m.cursor]
	if it.msg == nil {
		return tea.Quit
	}
	return func() tea.Msg { return it.msg }
}

func (m HomeModel) View() string {
	var b strings.Builder

	logo := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render("  pinmap")

	version := lipgloss.NewStyle().
		Foreground(styles.Muted).
		Render(" " + m.version)

	tagline := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Italic(true).
		Render("  Places on a terminal map")

	b.WriteString(logo + version + "\n")
	b.WriteString(tagline + "\n\n")

	for i, item := range m.items {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}

		key := lipgloss.NewStyle().
			Foreground(styles.Secondary).
			Bold(true).
			Render(fmt.Sprintf("[%s]", item.key))

		desc := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Render(" - " + item.desc)

		b.WriteString(fmt.Sprintf("%s%s %s%s\n", cursor, key, style.Render(item.label), desc))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ navigate • enter select • q quit"))

	return styles.Border.Render(b.String())
}

// Navigation messages
type NavigateToHome struct{}
type NavigateToPicker struct{}
type NavigateToRecent struct{}

// NavigateToMap opens the map screen on a catalog.
type NavigateToMap struct {
	DBPath string
}
