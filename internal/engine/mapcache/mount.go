package mapcache

// Mount is one screen's claim on the cached surface.
type Mount struct {
	id     string
	hostID string
	hooks  Hooks
	cache  *Cache
}

// ID identifies the mount in async messages.
func (m *Mount) ID() string {
	return m.id
}

func (m *Mount) HostID() string {
	return m.hostID
}

// Alive reports whether this is still the current mount. Results of async
// work started under a mount are applied only while it is alive.
func (m *Mount) Alive() bool {
	if m == nil {
		return false
	}
	m.cache.mu.Lock()
	defer m.cache.mu.Unlock()
	return m.cache.mount == m
}

// Unmount detaches the surface if this mount still owns it. Repeat calls and
// calls on a replaced mount are no-ops.
func (m *Mount) Unmount() {
	c := m.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mount != m {
		return
	}
	c.mount = nil
	if c.surface != nil && c.surface.Host() == m.hostID {
		c.surface.Detach()
	}
	c.log.Debug("unmounted", "host", m.hostID, "mount", m.id)
}
