package views

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/rendis/pinmap/internal/model"
)

// Every message below carries the id of the mount that issued it. Messages
// for another mount are dropped.

type catalogLoadedMsg struct {
	Mount  string
	Places []model.Place
	Posts  []model.Post
	Err    error
}

type surfaceReadyMsg struct {
	Mount string
	Err   error
}

type markersReadyMsg struct {
	Mount string
	Err   error
}

type locatedMsg struct {
	Mount    string
	Pos      model.LatLng
	Err      error
	Explicit bool
}

type searchResultsMsg struct {
	Mount   string
	Query   string
	Results []model.SearchResult
}

func (m *MapModel) loadCatalogCmd() tea.Cmd {
	ctx, mount, path, open := m.ctx, m.mount.ID(), m.dbPath, m.deps.OpenCatalog
	return func() tea.Msg {
		if open == nil {
			return catalogLoadedMsg{Mount: mount}
		}
		cat, err := open(path)
		if err != nil {
			return catalogLoadedMsg{Mount: mount, Err: err}
		}
		defer cat.Close()

		var (
			places []model.Place
			posts  []model.Post
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			places, err = cat.LoadPlaces(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			posts, err = cat.LoadPosts(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return catalogLoadedMsg{Mount: mount, Err: err}
		}
		return catalogLoadedMsg{Mount: mount, Places: places, Posts: posts}
	}
}

func (m *MapModel) ensureSurfaceCmd() tea.Cmd {
	ctx, mount, cache := m.ctx, m.mount.ID(), m.deps.Cache
	return func() tea.Msg {
		return surfaceReadyMsg{Mount: mount, Err: cache.EnsureSurface(ctx)}
	}
}

// ensureMarkersCmd waits on the surface (the cache serializes loading) and
// then creates markers for the loaded catalog.
func (m *MapModel) ensureMarkersCmd(places []model.Place) tea.Cmd {
	ctx, mount, cache := m.ctx, m.mount.ID(), m.deps.Cache
	return func() tea.Msg {
		return markersReadyMsg{Mount: mount, Err: cache.EnsureReady(ctx, places)}
	}
}

func (m *MapModel) locateCmd(explicit bool) tea.Cmd {
	if m.deps.Locator == nil {
		return nil
	}
	ctx, mount, loc := m.ctx, m.mount.ID(), m.deps.Locator
	return func() tea.Msg {
		pos, err := loc.Locate(ctx, explicit)
		return locatedMsg{Mount: mount, Pos: pos, Err: err, Explicit: explicit}
	}
}

func (m *MapModel) searchCmd(query string) tea.Cmd {
	if m.deps.Searcher == nil {
		return nil
	}
	ctx, mount, s := m.ctx, m.mount.ID(), m.deps.Searcher
	near := m.user()
	return func() tea.Msg {
		return searchResultsMsg{Mount: mount, Query: query, Results: s.Search(ctx, query, &near)}
	}
}

func (m *MapModel) owns(mount string) bool {
	return mount == m.mount.ID() && m.mount.Alive()
}

// Catalog is the read side of a catalog store.
type Catalog interface {
	LoadPlaces(ctx context.Context) ([]model.Place, error)
	LoadPosts(ctx context.Context) ([]model.Post, error)
	Close() error
}
