package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/engine/sheet"
	"github.com/rendis/pinmap/internal/model"
	"github.com/rendis/pinmap/internal/tui/styles"
)

func (m *MapModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	mapRows := m.offsetRows()
	sheetRows := m.sheetRows() - mapRows

	var body []string
	if mapRows > 0 {
		body = append(body, m.mapView(mapRows))
	}
	if sheetRows > 0 {
		body = append(body, m.sheetView(sheetRows))
	}
	content := overlayTop(strings.Join(body, "\n"), m.toasts.View(m.width))

	return strings.Join([]string{m.headerView(), content, m.statusView()}, "\n")
}

func (m *MapModel) headerView() string {
	chip := func(label string, on bool) string {
		if on {
			return styles.Chip.Render(label)
		}
		return styles.ChipInactive.Render(label)
	}

	parts := []string{
		styles.Subtitle.Render("pinmap"),
		chip("Domestic", m.region == model.RegionDomestic),
		chip("International", m.region == model.RegionInternational),
	}
	if m.region == model.RegionInternational {
		country := m.country
		if country == "" {
			country = "all countries"
		}
		parts = append(parts, styles.Value.Render(country))
	}
	parts = append(parts,
		styles.StatusBar.Render("sort: "+m.sort.String()),
		styles.StatusBar.Render(fmt.Sprintf("%d places", len(m.list))),
	)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, " "))
}

func (m *MapModel) mapView(rows int) string {
	d, ok := m.deps.Cache.Surface().(drawable)
	if !m.ready || !ok {
		return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center,
			styles.StatusBar.Render("Loading map..."))
	}
	d.SetSize(m.width, rows)
	return d.View(m.hostID, m.width, rows)
}

func (m *MapModel) sheetView(rows int) string {
	handleStyle := styles.Handle
	if m.engine.State() == sheet.Dragging {
		handleStyle = styles.HandleActive
	}
	lines := []string{handleStyle.Width(m.width).Align(lipgloss.Center).Render("━━━━━━")}

	switch m.focus {
	case focusCountry:
		lines = append(lines, strings.Split(m.picker.View(), "\n")...)
	case focusResults:
		lines = append(lines, m.resultLines()...)
	default:
		if m.focus == focusSearch || m.filter.Value() != "" {
			lines = append(lines, styles.StatusBar.Render("Search: ")+m.filter.View())
		}
	}

	if card := m.bannerView(); card != "" {
		lines = append(lines, strings.Split(card, "\n")...)
	}

	if free := rows - len(lines); free > 0 && m.focus != focusResults && m.focus != focusCountry {
		lines = append(lines, m.listLines(free)...)
	}

	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *MapModel) listLines(height int) []string {
	switch {
	case !m.loaded:
		return []string{styles.StatusBar.Render("Loading catalog...")}
	case len(m.list) == 0:
		return []string{styles.StatusBar.Render("No places here yet")}
	case height < 3:
		return nil
	}
	m.table.SetHeight(height)
	return strings.Split(m.table.View(), "\n")
}

func (m *MapModel) resultLines() []string {
	lines := []string{styles.Subtitle.Render("Search results")}
	for i, r := range m.results {
		label := truncate(r.Name, 30)
		if r.Address != "" {
			label += "  " + truncate(r.Address, max(0, m.width-40))
		}
		if i == m.resIdx {
			lines = append(lines, styles.ActiveItem.Render("> "+label))
		} else {
			lines = append(lines, styles.InactiveItem.Render("  "+label))
		}
	}
	return lines
}

func (m *MapModel) bannerView() string {
	width := max(20, m.width-4)
	if b, ok := m.coord.Banner(); ok {
		return bannerCard(b, width)
	}
	if p, ok := m.coord.Card(); ok {
		return styles.InactiveItem.Render(fmt.Sprintf("%s · %s", p.Name, geo.FormatDistance(p.Distance)))
	}
	return ""
}

func bannerCard(b model.BannerPlace, width int) string {
	var lines []string
	style := styles.Banner
	if b.Kind == model.BannerUnregistered {
		style = styles.BannerExternal
		lines = append(lines, styles.ActiveItem.Render(b.Name()), b.Address(), styles.StatusBar.Render("Not in the catalog"))
	} else {
		info := fmt.Sprintf("%s · %d posts · %d likes",
			geo.FormatDistance(b.Place.Distance), b.Stats.PostCount, b.Stats.TotalLikes)
		if b.Stats.HasPopularPost {
			info += " · popular"
		}
		lines = append(lines, styles.Subtitle.Render(b.Name()))
		if b.Address() != "" {
			lines = append(lines, b.Address())
		}
		lines = append(lines, styles.StatusBar.Render(info))
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *MapModel) statusView() string {
	var hint string
	switch m.focus {
	case focusSearch:
		hint = "type to filter · enter: search places · esc: done"
	case focusResults:
		hint = "↑/↓: choose · enter: show on map · esc: back"
	case focusCountry:
		hint = "↑/↓: choose · enter: apply · esc: cancel"
	default:
		hint = "tab: region · s: sort · c: country · /: search · l: locate · p/h/f: sheet · +/-: zoom · x: close · q: back"
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(styles.StatusBar.Render(hint))
}

func (m *MapModel) buildTable() {
	distW, postsW, likesW := 9, 6, 6
	nameW := max(16, m.width-distW-postsW-likesW-8)

	columns := []table.Column{
		{Title: "Name", Width: nameW},
		{Title: "Distance", Width: distW},
		{Title: "Posts", Width: postsW},
		{Title: "Likes", Width: likesW},
	}

	cursor := m.table.Cursor()
	m.table = table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.table.SetStyles(tableStyles())
	m.table.SetRows(m.rows())
	if cursor > 0 && cursor < len(m.list) {
		m.table.SetCursor(cursor)
	}
}

func (m *MapModel) rows() []table.Row {
	nameW := 30
	if cols := m.table.Columns(); len(cols) > 0 {
		nameW = cols[0].Width
	}
	rows := make([]table.Row, len(m.list))
	for i, p := range m.list {
		st := m.stats[p.ID]
		rows[i] = table.Row{
			truncate(p.Name, nameW),
			geo.FormatDistance(p.Distance),
			fmt.Sprint(st.PostCount),
			fmt.Sprint(st.TotalLikes),
		}
	}
	return rows
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true)
	return s
}

// overlayTop replaces the first lines of base with overlay.
func overlayTop(base, overlay string) string {
	if overlay == "" {
		return base
	}
	lines := strings.Split(base, "\n")
	for i, l := range strings.Split(overlay, "\n") {
		if i < len(lines) {
			lines[i] = l
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
