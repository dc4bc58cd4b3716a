package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/pinmap/internal/tui/views"
)

type viewID int

const (
	viewHome viewID = iota
	viewPicker
	viewRecent
	viewMap
)

// Options configures the root model.
type Options struct {
	DBPath  string
	Version string
	Map     views.MapDeps
	Recent  RecentCatalogs
	Logger  *slog.Logger
}

// App is the root bubbletea model.
type App struct {
	opts        Options
	log         *slog.Logger
	currentView viewID
	width       int
	height      int
	home        views.HomeModel
	picker      views.CatalogPickerModel
	recent      views.RecentModel
	mapScreen   *views.MapModel
}

func NewApp(opts Options) App {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return App{
		opts:        opts,
		log:         log,
		currentView: viewHome,
		home:        views.NewHomeModel(opts.DBPath, opts.Version),
	}
}

func (a App) Init() tea.Cmd {
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.closeMap()
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.NavigateToHome:
		a.closeMap()
		a.currentView = viewHome
		return a, nil
	case views.NavigateToPicker:
		a.currentView = viewPicker
		a.picker = views.NewCatalogPickerModel("")
		return a, a.picker.Init()
	case views.NavigateToRecent:
		a.currentView = viewRecent
		var entries []views.RecentEntry
		for _, e := range a.opts.Recent.Load() {
			entries = append(entries, views.RecentEntry{Path: e.Path, OpenedAt: e.OpenedAt})
		}
		a.recent = views.NewRecentModel(entries)
		return a, a.recent.Init()
	case views.NavigateToMap:
		a.closeMap()
		if err := a.opts.Recent.Save(msg.DBPath, time.Now()); err != nil {
			a.log.Warn("recent catalogs not saved", "err", err)
		}
		a.currentView = viewMap
		a.mapScreen = views.NewMapModel(a.opts.Map, msg.DBPath)
		return a, tea.Batch(a.mapScreen.Init(), a.sizeCmd())
	}

	var cmd tea.Cmd
	switch a.currentView {
	case viewHome:
		var m tea.Model
		m, cmd = a.home.Update(msg)
		a.home = m.(views.HomeModel)
	case viewPicker:
		var m tea.Model
		m, cmd = a.picker.Update(msg)
		a.picker = m.(views.CatalogPickerModel)
	case viewRecent:
		var m tea.Model
		m, cmd = a.recent.Update(msg)
		a.recent = m.(views.RecentModel)
	case viewMap:
		_, cmd = a.mapScreen.Update(msg)
	}

	return a, cmd
}

func (a App) View() string {
	if a.currentView == viewMap {
		return a.mapScreen.View()
	}

	var content string
	switch a.currentView {
	case viewHome:
		content = a.home.View()
	case viewPicker:
		content = a.picker.View()
	case viewRecent:
		content = a.recent.View()
	}

	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// closeMap unmounts the map screen; the cached surface survives for the next
// mount.
func (a *App) closeMap() {
	if a.mapScreen != nil {
		a.mapScreen.Close()
		a.mapScreen = nil
	}
}

// sizeCmd sends a WindowSizeMsg so newly created views get the current terminal size.
func (a App) sizeCmd() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

// Run starts the TUI.
func Run(opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
