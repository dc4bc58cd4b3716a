package views

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/pinmap/internal/engine/geo"
)

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestCountryPickerSuggestsAndPicks(t *testing.T) {
	countries, err := geo.NewCountryStore()
	require.NoError(t, err)

	p, _ := NewCountryPicker(countries).Open()
	for _, r := range "japan" {
		p, _ = p.Update(key(string(r)))
	}
	require.NotEmpty(t, p.suggestions)
	assert.LessOrEqual(t, len(p.suggestions), maxSuggestions)

	_, cmd := p.Update(key("enter"))
	msg, ok := run(cmd).(countryPickedMsg)
	require.True(t, ok)
	assert.Equal(t, "일본", msg.Name)
}

func TestCountryPickerEmptyClearsFilter(t *testing.T) {
	p, _ := NewCountryPicker(nil).Open()
	_, cmd := p.Update(key("enter"))
	assert.Equal(t, countryPickedMsg{}, run(cmd))
}

func TestCountryPickerEsc(t *testing.T) {
	p, _ := NewCountryPicker(nil).Open()
	_, cmd := p.Update(key("esc"))
	assert.Equal(t, countryPickerClosedMsg{}, run(cmd))
}

func TestHomeShortcuts(t *testing.T) {
	m := NewHomeModel("seoul.db", "dev")

	_, cmd := m.Update(key("o"))
	assert.Equal(t, NavigateToMap{DBPath: "seoul.db"}, run(cmd))

	_, cmd = m.Update(key("l"))
	assert.Equal(t, NavigateToPicker{}, run(cmd))

	_, cmd = m.Update(key("q"))
	assert.IsType(t, tea.QuitMsg{}, run(cmd))
}

func TestCatalogPickerListsCatalogs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "trips"), 0o755))
	for _, name := range []string{"b.db", "a.sqlite", "notes.txt", ".hidden.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	m := NewCatalogPickerModel(dir)
	var names []string
	for _, f := range m.files {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"trips", "a.sqlite", "b.db"}, names)
}
