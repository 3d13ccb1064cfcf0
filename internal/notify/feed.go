package notify

import (
	"context"
	"sync"
)

const DefaultFeedSize = 50

// Feed buffers the most recent notifications until the UI drains them.
// When full, the oldest notification is dropped.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	size  int
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size}
}

func (f *Feed) Notify(_ context.Context, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == f.size {
		f.items = f.items[1:]
	}
	f.items = append(f.items, n)
}

// Drain returns the buffered notifications oldest first and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.items
	f.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
