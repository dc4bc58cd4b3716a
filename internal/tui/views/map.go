package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/rendis/pinmap/internal/engine/cluster"
	"github.com/rendis/pinmap/internal/engine/geo"
	"github.com/rendis/pinmap/internal/engine/mapcache"
	"github.com/rendis/pinmap/internal/engine/selection"
	"github.com/rendis/pinmap/internal/engine/sheet"
	"github.com/rendis/pinmap/internal/engine/spatial"
	"github.com/rendis/pinmap/internal/mapkit"
	"github.com/rendis/pinmap/internal/model"
	"github.com/rendis/pinmap/internal/notify"
	"github.com/rendis/pinmap/internal/tui/components"
)

const (
	headerRows = 1
	statusRows = 1
	toastEvery = 500 * time.Millisecond
)

// Locator resolves the user position.
type Locator interface {
	Position() model.LatLng
	Locate(ctx context.Context, explicit bool) (model.LatLng, error)
}

// Searcher queries the external places provider.
type Searcher interface {
	Search(ctx context.Context, query string, near *model.LatLng) []model.SearchResult
}

// MapDeps are the process-wide collaborators shared by every map mount.
type MapDeps struct {
	Cache       *mapcache.Cache
	Bus         *selection.Bus
	Countries   *geo.CountryStore
	Locator     Locator
	Searcher    Searcher
	Notices     *notify.Queue
	OpenCatalog func(path string) (Catalog, error)
	CellPx      int
	FPS         int
	Logger      *slog.Logger
}

// drawable is the terminal side of the map surface.
type drawable interface {
	SetSize(width, height int)
	View(hostID string, width, height int) string
	Click(col, row int)
	Drag(dCols, dRows int)
	Scroll(delta int)
}

type mapFocus int

const (
	focusList mapFocus = iota
	focusSearch
	focusResults
	focusCountry
)

type pointerTarget int

const (
	pointerNone pointerTarget = iota
	pointerHandle
	pointerMap
)

type toastTickMsg struct {
	Mount string
}

// MapModel is the map screen: the cached surface on top and the bottom sheet
// with the place list below. It is a pointer model because the engine
// callbacks hold on to it.
type MapModel struct {
	deps   MapDeps
	log    *slog.Logger
	dbPath string
	hostID string

	ctx    context.Context
	cancel context.CancelFunc
	mount  *mapcache.Mount

	frames   *components.FrameLoop
	visual   *components.SheetVisual
	engine   *sheet.Engine
	coord    *selection.Coordinator
	clusters *cluster.Controller
	unsubs   []func()

	places  []model.Place
	byID    map[string]model.Place
	stats   map[string]model.PlaceStats
	version int
	loaded  bool
	ready   bool

	region  model.Region
	country string
	sort    model.SortMode
	list    []model.DisplayPlace

	table   table.Model
	filter  textinput.Model
	picker  CountryPicker
	focus   mapFocus
	results []model.SearchResult
	resIdx  int

	toasts      components.Toasts
	toastTicker bool

	pointer pointerTarget
	lastX   int
	lastY   int
	dragged bool
	width   int
	height  int
	closed  bool
}

func NewMapModel(deps MapDeps, dbPath string) *MapModel {
	if deps.CellPx <= 0 {
		deps.CellPx = 16
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if deps.Bus == nil {
		deps.Bus = selection.NewBus()
	}

	filter := textinput.New()
	filter.Placeholder = "Filter places, enter searches the web..."
	filter.CharLimit = 60

	ctx, cancel := context.WithCancel(context.Background())
	m := &MapModel{
		deps:   deps,
		log:    log.With("screen", "map"),
		dbPath: dbPath,
		hostID: "map-" + uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
		filter: filter,
		picker: NewCountryPicker(deps.Countries),
		toasts: components.NewToasts(0),
		byID:   map[string]model.Place{},
	}

	m.mount = deps.Cache.Mount(m.hostID, mapcache.Hooks{OnMapInteraction: m.onMapInteraction})
	// A remount finds the surface and markers from the previous visit.
	m.ready = deps.Cache.Ready()
	m.frames = components.NewFrameLoop(deps.FPS)
	m.visual = components.NewSheetVisual(m.frames, deps.FPS)
	m.engine = sheet.New(m.visual, m.frames, 0, sheet.Half)
	m.clusters = cluster.NewController(deps.Cache, deps.Countries, m.log)
	m.coord = selection.NewCoordinator(selection.Deps{
		Map:    deps.Cache,
		Sheet:  m.engine,
		Search: m,
		Lookup: m.lookup,
		Stats:  m.placeStats,
		User:   m.user,
		Logger: m.log,
	})
	m.unsubs = append(m.unsubs,
		deps.Bus.SubscribeAll(func(id string) { m.coord.HandleMarkerClick(id) }),
		m.engine.OnSnap(func(s sheet.Snap) { m.log.Debug("sheet snapped", "snap", s.String()) }),
	)
	m.buildTable()
	return m
}

func (m *MapModel) Init() tea.Cmd {
	return tea.Batch(m.ensureSurfaceCmd(), m.loadCatalogCmd(), m.locateCmd(false))
}

// Close unmounts the screen. Pending frames are dropped and async results
// arriving later are ignored.
func (m *MapModel) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
	m.frames.Stop()
	m.engine.Close()
	for _, fn := range m.unsubs {
		fn()
	}
	m.unsubs = nil
	m.mount.Unmount()
}

func (m *MapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.closed {
		return m, nil
	}
	cmd := m.update(msg)
	m.pullNotices()
	return m, tea.Batch(cmd, m.frames.Cmd(), m.toastCmd())
}

func (m *MapModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.engine.SetViewportHeight(float64(m.sheetRows() * m.deps.CellPx))
		m.buildTable()
		return nil

	case components.FrameMsg:
		m.frames.Handle(msg)
		return nil

	case toastTickMsg:
		if msg.Mount == m.mount.ID() {
			m.toastTicker = false
			m.toasts.Expire(time.Now())
		}
		return nil

	case surfaceReadyMsg:
		if !m.owns(msg.Mount) {
			return nil
		}
		if msg.Err != nil {
			// The map stays in its loading state; the list is still usable.
			m.log.Warn("map surface unavailable", "err", msg.Err)
		}
		m.ready = m.deps.Cache.Ready()
		m.syncClusters()
		return nil

	case catalogLoadedMsg:
		if !m.owns(msg.Mount) {
			return nil
		}
		return m.applyCatalog(msg)

	case markersReadyMsg:
		if !m.owns(msg.Mount) {
			return nil
		}
		if msg.Err != nil {
			m.log.Warn("markers not created", "err", msg.Err)
		}
		m.ready = m.deps.Cache.Ready()
		m.syncClusters()
		return nil

	case locatedMsg:
		if !m.owns(msg.Mount) {
			return nil
		}
		if msg.Err == nil {
			m.deps.Cache.SetUserLocation(msg.Pos)
			m.refresh()
			m.syncClusters()
		}
		return nil

	case searchResultsMsg:
		if !m.owns(msg.Mount) {
			return nil
		}
		return m.applyResults(msg)

	case countryPickedMsg:
		m.focus = focusList
		m.country = msg.Name
		m.refresh()
		m.syncClusters()
		return nil

	case countryPickerClosedMsg:
		m.focus = focusList
		return nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return cmd
	}
	return nil
}

func (m *MapModel) applyCatalog(msg catalogLoadedMsg) tea.Cmd {
	m.loaded = true
	if msg.Err != nil {
		m.log.Error("catalog load failed", "db", m.dbPath, "err", msg.Err)
		if m.deps.Notices != nil {
			m.deps.Notices.Error("Could not load catalog: " + msg.Err.Error())
		}
		msg.Places, msg.Posts = nil, nil
	}

	m.places = msg.Places
	m.byID = make(map[string]model.Place, len(msg.Places))
	for _, p := range msg.Places {
		m.byID[p.ID] = p
	}
	m.stats = spatial.BuildStats(msg.Posts)
	m.version++
	m.log.Info("catalog loaded", "places", len(m.places), "posts", len(msg.Posts))

	m.refresh()
	m.syncClusters()
	return m.ensureMarkersCmd(m.places)
}

func (m *MapModel) applyResults(msg searchResultsMsg) tea.Cmd {
	if len(msg.Results) == 0 {
		if m.deps.Notices != nil {
			m.deps.Notices.Info(fmt.Sprintf("No places found for %q", msg.Query))
		}
		return nil
	}
	m.results = msg.Results
	m.resIdx = 0
	m.focus = focusResults
	m.filter.Blur()
	return nil
}

func (m *MapModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	switch m.focus {
	case focusCountry:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return cmd

	case focusSearch:
		switch key {
		case "esc":
			m.focus = focusList
			m.filter.Blur()
			return nil
		case "enter":
			q := strings.TrimSpace(m.filter.Value())
			if q == "" {
				m.focus = focusList
				m.filter.Blur()
				return nil
			}
			return m.searchCmd(q)
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refresh()
		return cmd

	case focusResults:
		switch key {
		case "esc":
			m.results = nil
			m.focus = focusSearch
			return m.filter.Focus()
		case "up", "k":
			if m.resIdx > 0 {
				m.resIdx--
			}
		case "down", "j":
			if m.resIdx < len(m.results)-1 {
				m.resIdx++
			}
		case "enter":
			r := m.results[m.resIdx]
			m.coord.SelectExternalPlace(r)
		}
		return nil
	}

	switch key {
	case "q":
		return func() tea.Msg { return NavigateToHome{} }
	case "tab":
		if m.region == model.RegionDomestic {
			m.region = model.RegionInternational
		} else {
			m.region = model.RegionDomestic
			m.country = ""
		}
		m.refresh()
		m.syncClusters()
	case "s":
		m.sort = m.sort.Next()
		m.refresh()
	case "c":
		if m.region == model.RegionInternational {
			m.focus = focusCountry
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Open()
			return cmd
		}
	case "/":
		m.focus = focusSearch
		return m.filter.Focus()
	case "l":
		return m.locateCmd(true)
	case "p":
		m.engine.SnapTo(sheet.Peek)
	case "h":
		m.engine.SnapTo(sheet.Half)
	case "f":
		m.engine.SnapTo(sheet.Full)
	case "+", "=":
		m.withSurface(func(d drawable) { d.Scroll(1) })
	case "-":
		m.withSurface(func(d drawable) { d.Scroll(-1) })
	case "left":
		m.withSurface(func(d drawable) { d.Drag(4, 0) })
	case "right":
		m.withSurface(func(d drawable) { d.Drag(-4, 0) })
	case "x", "esc":
		m.coord.CloseBanner()
	case "enter":
		if i := m.table.Cursor(); i >= 0 && i < len(m.list) {
			m.coord.SelectCatalogPlace(m.list[i].Place)
		}
	case " ":
		if i := m.table.Cursor(); i >= 0 && i < len(m.list) {
			m.coord.Preview(m.list[i].Place)
		}
	case "up", "down", "k", "j", "pgup", "pgdown":
		// With the list collapsed the vertical arrows pan the map.
		if m.engine.Snap() == sheet.Peek || !m.visual.ListScroll() {
			switch key {
			case "up":
				m.withSurface(func(d drawable) { d.Drag(0, 2) })
			case "down":
				m.withSurface(func(d drawable) { d.Drag(0, -2) })
			}
			return nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *MapModel) handleMouse(msg tea.MouseMsg) {
	top := m.sheetTop()
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
		if msg.Y < top {
			m.withSurface(func(d drawable) { d.Scroll(1) })
		} else if m.visual.ListScroll() {
			m.table.MoveUp(1)
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
		if msg.Y < top {
			m.withSurface(func(d drawable) { d.Scroll(-1) })
		} else if m.visual.ListScroll() {
			m.table.MoveDown(1)
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.lastX, m.lastY, m.dragged = msg.X, msg.Y, false
		switch {
		case msg.Y == top:
			m.pointer = pointerHandle
			m.engine.PointerDown(m.px(msg.Y))
		case msg.Y >= headerRows && msg.Y < top:
			m.pointer = pointerMap
		default:
			m.pointer = pointerNone
		}
	case msg.Action == tea.MouseActionMotion:
		switch m.pointer {
		case pointerHandle:
			m.engine.PointerMove(m.px(msg.Y))
		case pointerMap:
			dx, dy := msg.X-m.lastX, msg.Y-m.lastY
			if dx != 0 || dy != 0 {
				m.dragged = true
				m.withSurface(func(d drawable) { d.Drag(dx, dy) })
				m.lastX, m.lastY = msg.X, msg.Y
			}
		}
	case msg.Action == tea.MouseActionRelease:
		switch m.pointer {
		case pointerHandle:
			m.engine.PointerUp()
		case pointerMap:
			if !m.dragged {
				m.withSurface(func(d drawable) { d.Click(msg.X, msg.Y-headerRows) })
			}
		}
		m.pointer = pointerNone
	}
}

// onMapInteraction collapses the sheet whenever the map itself is touched.
func (m *MapModel) onMapInteraction(mapkit.InteractionEvent) {
	m.engine.SnapTo(sheet.Peek)
}

// ClearSearch empties the filter and dismisses search results.
func (m *MapModel) ClearSearch() {
	m.filter.SetValue("")
	m.filter.Blur()
	m.results = nil
	m.resIdx = 0
	m.focus = focusList
	m.refresh()
}

func (m *MapModel) refresh() {
	m.list = spatial.FilterSort(spatial.Query{
		Places:  m.places,
		User:    m.user(),
		Region:  m.region,
		Country: m.country,
		Search:  m.filter.Value(),
		Sort:    m.sort,
		Stats:   m.stats,
	})
	m.table.SetRows(m.rows())
	if m.table.Cursor() >= len(m.list) {
		m.table.SetCursor(max(0, len(m.list)-1))
	}
}

func (m *MapModel) syncClusters() {
	applied, changed := m.clusters.Sync(cluster.State{
		Ready:          m.ready,
		Region:         m.region,
		Country:        m.country,
		CatalogVersion: m.version,
		Places:         m.places,
		User:           m.user(),
	})
	if changed {
		m.log.Debug("clusters synced", "visible", len(applied.Visible), "zoom", applied.Target.Zoom)
	}
}

func (m *MapModel) pullNotices() {
	if m.deps.Notices == nil {
		return
	}
	if msgs := m.deps.Notices.Drain(); len(msgs) > 0 {
		m.toasts.Push(msgs, time.Now())
	}
}

func (m *MapModel) toastCmd() tea.Cmd {
	if m.toastTicker || m.toasts.Len() == 0 {
		return nil
	}
	m.toastTicker = true
	mount := m.mount.ID()
	return tea.Tick(toastEvery, func(time.Time) tea.Msg { return toastTickMsg{Mount: mount} })
}

func (m *MapModel) withSurface(fn func(drawable)) {
	if !m.ready {
		return
	}
	if d, ok := m.deps.Cache.Surface().(drawable); ok {
		fn(d)
	}
}

func (m *MapModel) lookup(id string) (model.Place, bool) {
	p, ok := m.byID[id]
	return p, ok
}

func (m *MapModel) placeStats(id string) model.PlaceStats {
	return m.stats[id]
}

func (m *MapModel) user() model.LatLng {
	if m.deps.Locator == nil {
		return model.LatLng{}
	}
	return m.deps.Locator.Position()
}

// px converts a terminal row to sheet pixels, relative to the sheet viewport.
func (m *MapModel) px(row int) float64 {
	return float64((row - headerRows) * m.deps.CellPx)
}

func (m *MapModel) sheetRows() int {
	return max(0, m.height-headerRows-statusRows)
}

// offsetRows is the height of the visible map above the sheet.
func (m *MapModel) offsetRows() int {
	rows := int(m.visual.Offset()/float64(m.deps.CellPx) + 0.5)
	return min(max(rows, 0), m.sheetRows())
}

func (m *MapModel) sheetTop() int {
	return headerRows + m.offsetRows()
}

// Region, Country, SortMode, List and Snap expose screen state for the app
// and for tests.
func (m *MapModel) Region() model.Region { return m.region }
func (m *MapModel) Country() string { return m.country }
func (m *MapModel) SortMode() model.SortMode { return m.sort }
func (m *MapModel) List() []model.DisplayPlace { return m.list }
func (m *MapModel) Snap() sheet.Snap { return m.engine.Snap() }
func (m *MapModel) Coordinator() *selection.Coordinator { return m.coord }
