package geolocate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rendis/pinmap/internal/model"
	"github.com/rendis/pinmap/internal/notify"
)

// User-facing messages for explicit locate requests.
const (
	MsgPermissionDenied = "Location access is turned off. Showing the default position."
	MsgUnavailable      = "Could not determine your location. Try again later."
)

// Tracker keeps the last known position.
type Tracker struct {
	provider Provider
	opts     Options
	notifier notify.Notifier
	log      *slog.Logger

	mu  sync.Mutex
	pos model.LatLng
}

func NewTracker(provider Provider, opts Options, fallback model.LatLng, notifier notify.Notifier, logger *slog.Logger) *Tracker {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		provider: provider,
		opts:     opts,
		notifier: notifier,
		log:      logger.With("component", "geolocate"),
		pos:      fallback,
	}
}

// Position is the last known position.
func (t *Tracker) Position() model.LatLng {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

// Locate asks the provider once. On failure the prior position stays. Only
// explicit requests notify, with a message per failure kind.
func (t *Tracker) Locate(ctx context.Context, explicit bool) (model.LatLng, error) {
	pos, err := t.provider.CurrentPosition(ctx, t.opts)
	if err != nil {
		t.log.Debug("locate failed", "explicit", explicit, "error", err)
		if explicit {
			if errors.Is(err, ErrPermissionDenied) {
				t.notifier.Error(MsgPermissionDenied)
			} else {
				t.notifier.Error(MsgUnavailable)
			}
		}
		return t.Position(), err
	}

	t.mu.Lock()
	t.pos = pos
	t.mu.Unlock()
	t.log.Debug("located", "lat", pos.Lat, "lng", pos.Lng)
	return pos, nil
}
