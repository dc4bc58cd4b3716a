// Package selection routes marker clicks and owns the banner: the one place
// card alive at a time.
package selection

import "sync"

// Bus delivers marker clicks keyed by place id. Markers emit into it without
// knowing which screen currently owns them; owners subscribe on mount and
// unsubscribe on unmount.
type Bus struct {
	mu   sync.Mutex
	next int
	byID map[string]map[int]func(string)
	all  []subscriber
}

type subscriber struct {
	id int
	fn func(string)
}

func NewBus() *Bus {
	return &Bus{byID: make(map[string]map[int]func(string))}
}

// Subscribe registers fn for clicks on one place.
func (b *Bus) Subscribe(placeID string, fn func(placeID string)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID()
	subs := b.byID[placeID]
	if subs == nil {
		subs = make(map[int]func(string))
		b.byID[placeID] = subs
	}
	subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.byID[placeID], id)
		if len(b.byID[placeID]) == 0 {
			delete(b.byID, placeID)
		}
	}
}

// SubscribeAll registers a catch-all handler. Only the most recent live
// catch-all receives events.
func (b *Bus) SubscribeAll(fn func(placeID string)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID()
	b.all = append(b.all, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.all {
			if s.id == id {
				b.all = append(b.all[:i], b.all[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers a click to the place's subscribers, then to the current
// catch-all owner. Handlers run outside the lock.
func (b *Bus) Emit(placeID string) {
	b.mu.Lock()
	var fns []func(string)
	for _, fn := range b.byID[placeID] {
		fns = append(fns, fn)
	}
	if n := len(b.all); n > 0 {
		fns = append(fns, b.all[n-1].fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(placeID)
	}
}

func (b *Bus) nextID() int {
	b.next++
	return b.next
}
