package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/tui/styles"
)

const maxSuggestions = 5

// countryPickedMsg ends the picker. An empty Name clears the filter.
type countryPickedMsg struct {
	Name string
}

type countryPickerClosedMsg struct{}

// CountryPicker is the international country filter with live suggestions.
type CountryPicker struct {
	input       textinput.Model
	countries   *geo.CountryStore
	suggestions []geo.Country
	suggIdx     int
}

func NewCountryPicker(countries *geo.CountryStore) CountryPicker {
	ti := textinput.New()
	ti.Placeholder = "type a country (empty = all)"
	ti.CharLimit = 30
	ti.Width = 30
	return CountryPicker{input: ti, countries: countries}
}

// Open resets and focuses the input.
func (p CountryPicker) Open() (CountryPicker, tea.Cmd) {
	p.input.SetValue("")
	p.suggestions = nil
	p.suggIdx = 0
	return p, p.input.Focus()
}

func (p CountryPicker) Update(msg tea.Msg) (CountryPicker, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.input.Blur()
			return p, func() tea.Msg { return countryPickerClosedMsg{} }
		case "up":
			if p.suggIdx > 0 {
				p.suggIdx--
			}
			return p, nil
		case "down":
			if p.suggIdx < len(p.suggestions)-1 {
				p.suggIdx++
			}
			return p, nil
		case "enter", "tab":
			name, ok := p.choice()
			if !ok {
				return p, nil
			}
			p.input.Blur()
			return p, func() tea.Msg { return countryPickedMsg{Name: name} }
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.updateSuggestions()
	return p, cmd
}

func (p CountryPicker) choice() (string, bool) {
	raw := strings.TrimSpace(p.input.Value())
	if raw == "" {
		return "", true
	}
	if p.suggIdx < len(p.suggestions) {
		return p.suggestions[p.suggIdx].Name, true
	}
	if p.countries != nil {
		return p.countries.Resolve(raw)
	}
	return "", false
}

func (p *CountryPicker) updateSuggestions() {
	if p.countries == nil || strings.TrimSpace(p.input.Value()) == "" {
		p.suggestions = nil
		p.suggIdx = 0
		return
	}
	p.suggestions = p.countries.Match(p.input.Value(), maxSuggestions)
	if p.suggIdx >= len(p.suggestions) {
		p.suggIdx = 0
	}
}

func (p CountryPicker) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render("Country "))
	sb.WriteString(p.input.View())
	sb.WriteString("\n")

	active := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(styles.Muted)
	for i, c := range p.suggestions {
		label := c.Name
		if len(c.Aliases) > 0 {
			label += " (" + strings.Join(c.Aliases[:min(2, len(c.Aliases))], ", ") + ")"
		}
		if i == p.suggIdx {
			sb.WriteString(active.Render("  > " + label))
		} else {
			sb.WriteString(inactive.Render("    " + label))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
