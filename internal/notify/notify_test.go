package notify

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrain(t *testing.T) {
	q := NewQueue(4)
	q.Info("a")
	q.Error("b")

	msgs := q.Drain()
	require.Len(t, msgs, 2)
	assert.Equal(t, LevelInfo, msgs[0].Level)
	assert.Equal(t, "b", msgs[1].Text)
	assert.Equal(t, "error", msgs[1].Level.String())
	assert.Empty(t, q.Drain())
}

func TestQueueDropsOldest(t *testing.T) {
	q := NewQueue(2)
	q.Info("1")
	q.Info("2")
	q.Info("3")

	msgs := q.Drain()
	require.Len(t, msgs, 2)
	assert.Equal(t, "2", msgs[0].Text)
	assert.Equal(t, "3", msgs[1].Text)
}

func TestQueueConcurrent(t *testing.T) {
	q := NewQueue(1000)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				q.Info("x")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 100)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	n := Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	n.Error("location unavailable")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "location unavailable")
}

func TestNotifiers(t *testing.T) {
	for _, n := range []Notifier{NewQueue(1), Log{Logger: slog.New(slog.DiscardHandler)}, Discard{}} {
		assert.NotPanics(t, func() {
			n.Info("x")
			n.Error("y")
		})
	}
}
