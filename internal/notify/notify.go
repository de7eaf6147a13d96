// Package notify is the user-facing notification feed. Every notification is
// logged and the most recent ones are kept for display.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mvcm/internal/observability"
)

// DefaultCapacity is how many notifications the feed keeps.
const DefaultCapacity = 50

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one user-facing message.
type Notification struct {
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	Time        time.Time `json:"time"`
}

// Notifier is implemented by anything that can surface a notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Feed logs notifications and keeps a bounded history.
type Feed struct {
	logger   *zap.Logger
	capacity int
	now      func() time.Time

	mu    sync.Mutex
	items []Notification
}

// Option configures a Feed.
type Option func(*Feed)

// WithCapacity sets the history size. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.capacity = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// NewFeed creates a notification feed.
func NewFeed(logger *zap.Logger, opts ...Option) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Feed{
		logger:   logger,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Notify logs n and appends it to the history, evicting the oldest entry
// when full.
func (f *Feed) Notify(_ context.Context, n Notification) {
	if n.Level == "" {
		n.Level = LevelInfo
	}
	if n.Time.IsZero() {
		n.Time = f.now()
	}

	fields := []zap.Field{zap.String("title", n.Title)}
	if n.Description != "" {
		fields = append(fields, zap.String("description", n.Description))
	}
	if n.Link != "" {
		fields = append(fields, zap.String("link", n.Link))
	}
	switch n.Level {
	case LevelError:
		f.logger.Error("notification", fields...)
	case LevelWarning:
		f.logger.Warn("notification", fields...)
	default:
		f.logger.Info("notification", fields...)
	}
	observability.RecordNotification(string(n.Level))

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.capacity {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Recent returns up to limit notifications, newest first. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.items)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Notification, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, f.items[i])
	}
	return out
}

// Len returns the number of stored notifications.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Notification) {}
