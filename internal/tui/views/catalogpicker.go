package views

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/pinmap/internal/tui/styles"
)

var catalogExts = []string{".db", ".sqlite", ".sqlite3"}

const pickerRows = 15

// CatalogPickerModel browses the filesystem for catalog databases.
type CatalogPickerModel struct {
	dir    string
	files  []os.DirEntry
	cursor int
	err    error
}

func NewCatalogPickerModel(dir string) CatalogPickerModel {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	m := CatalogPickerModel{dir: dir}
	m.loadDir()
	return m
}

func isCatalog(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range catalogExts {
		if ext == e {
			return true
		}
	}
	return false
}

// loadDir lists subdirectories first, then catalogs, skipping dotfiles.
func (m *CatalogPickerModel) loadDir() {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil

	m.files = nil
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() || isCatalog(name) {
			m.files = append(m.files, e)
		}
	}
	sort.SliceStable(m.files, func(i, j int) bool {
		return m.files[i].IsDir() && !m.files[j].IsDir()
	})
	m.cursor = 0
}

func (m CatalogPickerModel) Init() tea.Cmd {
	return nil
}

func (m CatalogPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.files) {
			entry := m.files[m.cursor]
			fullPath := filepath.Join(m.dir, entry.Name())
			if entry.IsDir() {
				m.dir = fullPath
				m.loadDir()
				return m, nil
			}
			return m, func() tea.Msg { return NavigateToMap{DBPath: fullPath} }
		}
	case "backspace":
		parent := filepath.Dir(m.dir)
		if parent != m.dir {
			m.dir = parent
			m.loadDir()
		}
	case "esc", "q":
		return m, func() tea.Msg { return NavigateToHome{} }
	}
	return m, nil
}

func (m CatalogPickerModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Load Catalog"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(m.dir))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		return styles.Border.Render(b.String())
	}

	if len(m.files) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("No catalogs or directories here"))
	}

	start := 0
	if m.cursor > pickerRows-3 {
		start = m.cursor - (pickerRows - 3)
	}
	end := min(start+pickerRows, len(m.files))

	for i := start; i < end; i++ {
		entry := m.files[i]
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}
		icon := "◇ "
		name := entry.Name()
		if entry.IsDir() {
			icon = "▸ "
			name += "/"
		}
		b.WriteString(fmt.Sprintf("%s%s%s\n", cursor, icon, style.Render(name)))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("enter open • backspace parent dir • esc back"))

	return styles.Border.Render(b.String())
}
