// Package notify keeps the transient notifications shown after each action.
// Entries carry an expiry time and disappear once it passes or their handle
// is cancelled.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Kind classifies a notification.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is one transient message.
type Notification struct {
	ID      string
	Kind    Kind
	Text    string
	Created time.Time
	Expires time.Time
}

// Expired reports whether n is no longer visible at now.
func (n Notification) Expired(now time.Time) bool { return !now.Before(n.Expires) }

// Handle cancels a pushed notification.
type Handle struct {
	id string
	q  *Queue
}

// ID returns the notification ID.
func (h Handle) ID() string { return h.id }

// Cancel removes the notification if it is still queued.
func (h Handle) Cancel() {
	if h.q != nil {
		h.q.remove(h.id)
	}
}

// Queue is a thread-safe list of notifications ordered by creation time.
type Queue struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items []Notification
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(q *Queue) { q.now = now } }

// NewQueue creates a queue whose entries live for ttl (DefaultTTL if <= 0).
func NewQueue(ttl time.Duration, opts ...Option) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	q := &Queue{ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(q)
	}
	return q
}

// TTL returns the lifetime of new entries.
func (q *Queue) TTL() time.Duration { return q.ttl }

// Push appends a notification and returns its handle.
func (q *Queue) Push(kind Kind, text string) Handle {
	now := q.now()
	n := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Text:    text,
		Created: now,
		Expires: now.Add(q.ttl),
	}
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
	return Handle{id: n.ID, q: q}
}

// Active prunes expired entries and returns the remaining ones, oldest first.
func (q *Queue) Active() []Notification {
	now := q.now()
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	for _, n := range q.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	// Zero the tail so dropped strings can be collected.
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = Notification{}
	}
	q.items = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Len returns the number of queued entries, expired ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// NextExpiry returns the earliest expiry among queued entries.
func (q *Queue) NextExpiry() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var next time.Time
	for _, n := range q.items {
		if next.IsZero() || n.Expires.Before(next) {
			next = n.Expires
		}
	}
	return next, !next.IsZero()
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}
