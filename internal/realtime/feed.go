package realtime

import (
	"context"
	"sync"
)

const (
	defaultSubscriberCapacity = 100
	defaultBacklogLimit       = 50
	defaultDedupeWindow       = 1024
)

// FeedOption customizes Feed construction.
type FeedOption func(*Feed)

// Feed fans realtime updates out to subscribers with bounded buffering, an
// event-ID dedupe window, and a backlog for updates that arrive before the
// first subscriber attaches. It makes no ordering promises beyond per-publish
// FIFO into each subscriber's channel.
type Feed struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	backlog     []Update
	recentIDs   map[string]struct{}
	recentOrder []string

	channelSize  int
	backlogLimit int
	dedupeWindow int
	logger       Logger
}

// Subscription represents an attached consumer.
type Subscription struct {
	Updates <-chan Update
	cancel  func()
}

// Close detaches the subscriber and closes its channel.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// NewFeed constructs a feed with sane defaults.
func NewFeed(opts ...FeedOption) *Feed {
	f := &Feed{
		subscribers:  map[*subscriber]struct{}{},
		recentIDs:    map[string]struct{}{},
		recentOrder:  make([]string, 0, defaultDedupeWindow),
		channelSize:  defaultSubscriberCapacity,
		backlogLimit: defaultBacklogLimit,
		dedupeWindow: defaultDedupeWindow,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// FeedWithLogger injects a logger for drop diagnostics.
func FeedWithLogger(logger Logger) FeedOption {
	return func(f *Feed) {
		f.logger = logger
	}
}

// FeedWithSubscriberCapacity overrides the buffered channel size per subscriber.
func FeedWithSubscriberCapacity(cap int) FeedOption {
	return func(f *Feed) {
		if cap > 0 {
			f.channelSize = cap
		}
	}
}

// FeedWithBacklogLimit overrides the pre-subscription backlog size.
func FeedWithBacklogLimit(limit int) FeedOption {
	return func(f *Feed) {
		if limit > 0 {
			f.backlogLimit = limit
		}
	}
}

// FeedWithDedupeWindow controls how many recent update IDs are retained.
func FeedWithDedupeWindow(size int) FeedOption {
	return func(f *Feed) {
		if size > 0 {
			f.dedupeWindow = size
		}
	}
}

// Subscribe attaches a consumer. Backlogged updates are flushed to the first
// subscriber in arrival order.
func (f *Feed) Subscribe() Subscription {
	sub := newSubscriber(f.channelSize, f.logger)
	var backlog []Update
	f.mu.Lock()
	f.subscribers[sub] = struct{}{}
	if len(f.backlog) > 0 {
		backlog = append(backlog, f.backlog...)
		f.backlog = nil
	}
	f.mu.Unlock()
	for _, update := range backlog {
		sub.deliver(update)
	}
	return Subscription{
		Updates: sub.channel(),
		cancel: func() {
			f.removeSubscriber(sub)
		},
	}
}

// Publish normalizes, dedupes by update ID, and delivers to every subscriber.
// Updates without an ID bypass deduplication.
func (f *Feed) Publish(update Update) {
	update.Normalize()
	if update.ID != "" && f.isDuplicate(update.ID) {
		return
	}
	f.mu.Lock()
	if len(f.subscribers) == 0 {
		if len(f.backlog) >= f.backlogLimit {
			f.backlog = f.backlog[1:]
			if f.logger != nil {
				f.logger.Printf("realtime: backlog drop (limit %d)", f.backlogLimit)
			}
		}
		f.backlog = append(f.backlog, update)
		f.mu.Unlock()
		return
	}
	subs := make([]*subscriber, 0, len(f.subscribers))
	for sub := range f.subscribers {
		subs = append(subs, sub)
	}
	f.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(update)
	}
}

// Pump drains the subscription into apply until the context is cancelled or
// the subscription closes. It is the headless counterpart of the TUI's
// message loop.
func Pump(ctx context.Context, sub Subscription, apply func(Update)) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-sub.Updates:
			if !ok {
				return
			}
			if apply != nil {
				apply(update)
			}
		}
	}
}

func (f *Feed) removeSubscriber(sub *subscriber) {
	f.mu.Lock()
	delete(f.subscribers, sub)
	f.mu.Unlock()
	sub.close()
}

func (f *Feed) isDuplicate(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recentIDs[id]; ok {
		return true
	}
	f.recentIDs[id] = struct{}{}
	f.recentOrder = append(f.recentOrder, id)
	if len(f.recentOrder) > f.dedupeWindow {
		oldest := f.recentOrder[0]
		f.recentOrder = f.recentOrder[1:]
		delete(f.recentIDs, oldest)
	}
	return false
}

type subscriber struct {
	ch      chan Update
	logger  Logger
	closed  bool
	closeMu sync.Mutex
}

func newSubscriber(capacity int, logger Logger) *subscriber {
	if capacity <= 0 {
		capacity = defaultSubscriberCapacity
	}
	return &subscriber{
		ch:     make(chan Update, capacity),
		logger: logger,
	}
}

func (s *subscriber) channel() <-chan Update {
	return s.ch
}

// deliver never blocks the publisher: when the channel is full the oldest
// buffered update is dropped in favor of the incoming one.
func (s *subscriber) deliver(update Update) {
	if s.isClosed() {
		return
	}
	select {
	case s.ch <- update:
	default:
		dropped := <-s.ch
		s.ch <- update
		if s.logger != nil {
			s.logger.Printf("realtime: dropped %s (queue overflow)", dropped.Kind)
		}
	}
}

func (s *subscriber) close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func (s *subscriber) isClosed() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return s.closed
}
