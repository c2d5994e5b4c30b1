package server

import (
	"sync"

	"sprintdeck/internal/realtime"
)

const defaultEventRetention = 256

type logEntry struct {
	seq    int64
	update realtime.Update
}

// EventLog is a bounded, sequence-numbered update log. Clients poll
// /api/events with the cursor from their previous poll; entries older than
// the retention window are dropped, which a reconnecting client observes as
// an empty diff plus a fresh cursor.
type EventLog struct {
	mu      sync.Mutex
	limit   int
	nextSeq int64
	entries []logEntry
}

// NewEventLog creates a log retaining up to limit entries. A non-positive
// limit selects the default retention.
func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = defaultEventRetention
	}
	return &EventLog{limit: limit, nextSeq: 1}
}

// Append records an update and returns its sequence number.
func (l *EventLog) Append(update realtime.Update) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	seq := l.nextSeq
	l.nextSeq++
	l.entries = append(l.entries, logEntry{seq: seq, update: update})
	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
	return seq
}

// After returns every retained update with a sequence number greater than
// after, plus the cursor the client should poll with next.
func (l *EventLog) After(after int64) ([]realtime.Update, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.nextSeq - 1
	if next < after {
		next = after
	}
	var updates []realtime.Update
	for _, entry := range l.entries {
		if entry.seq > after {
			updates = append(updates, entry.update)
		}
	}
	return updates, next
}
