package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/pinmap/internal/notify"
	"github.com/rendis/pinmap/internal/tui/styles"
)

const (
	defaultToastTTL = 4 * time.Second
	maxToasts       = 3
)

type toast struct {
	msg   notify.Message
	until time.Time
}

// Toasts is the on-screen notification stack, newest last.
type Toasts struct {
	ttl   time.Duration
	items []toast
}

func NewToasts(ttl time.Duration) Toasts {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return Toasts{ttl: ttl}
}

func (t *Toasts) Push(msgs []notify.Message, now time.Time) {
	for _, m := range msgs {
		t.items = append(t.items, toast{msg: m, until: now.Add(t.ttl)})
	}
	if over := len(t.items) - maxToasts; over > 0 {
		t.items = t.items[over:]
	}
}

// Expire drops toasts past their time and reports whether any remain.
func (t *Toasts) Expire(now time.Time) bool {
	kept := t.items[:0]
	for _, it := range t.items {
		if now.Before(it.until) {
			kept = append(kept, it)
		}
	}
	t.items = kept
	return len(t.items) > 0
}

func (t Toasts) Len() int {
	return len(t.items)
}

func (t Toasts) View(width int) string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for _, it := range t.items {
		style := styles.ToastInfo
		if it.msg.Level == notify.LevelError {
			style = styles.ToastError
		}
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, style.Render(it.msg.Text)))
	}
	return strings.Join(lines, "\n")
}
