// Package notify carries fire-and-forget user messages out of the engine.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Level of a message.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notifier shows a message to the user. Calls never block and are never
// retried.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Message is one queued notification.
type Message struct {
	Level Level
	Text  string
	At    time.Time
}

// Queue buffers messages for a UI to drain. It is safe to call from any
// goroutine. Past its capacity the oldest message is dropped.
type Queue struct {
	mu   sync.Mutex
	max  int
	msgs []Message
	now  func() time.Time
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 8
	}
	return &Queue{max: capacity, now: time.Now}
}

func (q *Queue) Info(msg string) {
	q.push(LevelInfo, msg)
}

func (q *Queue) Error(msg string) {
	q.push(LevelError, msg)
}

func (q *Queue) push(level Level, text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, Message{Level: level, Text: text, At: q.now()})
	if over := len(q.msgs) - q.max; over > 0 {
		q.msgs = q.msgs[over:]
	}
}

// Drain returns and clears the pending messages.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.msgs
	q.msgs = nil
	return out
}

// Log writes notifications to a logger, for headless commands.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Info(msg string) {
	l.logger().Info(msg, "notify", true)
}

func (l Log) Error(msg string) {
	l.logger().Error(msg, "notify", true)
}

func (l Log) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// Discard drops every message.
type Discard struct{}

func (Discard) Info(string)  {}
func (Discard) Error(string) {}
