package toast

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/dmitrymomot/taskclient/pkg/logger"
)

// Queue is the ordered collection of live messages for one UI session.
//
// Insertion order is display order and the queue never reorders. Every timed
// message owns its own expiry timer; dismissing or expiring one message never
// touches another message's timer or position. All methods are safe for
// concurrent use: timers fire on their own goroutines and serialize with
// Push and Dismiss through the queue's mutex.
type Queue struct {
	clock    clockwork.Clock
	logger   *slog.Logger
	lifetime time.Duration

	mu       sync.Mutex
	messages []Message
	expiries map[string]*expiry
	subs     map[*Subscription]struct{}
	closed   bool
}

// expiry binds a timer to the message entry it was created for. A callback
// only acts while its own expiry is still the registered one, so a timer that
// lost a race with Dismiss or Close does nothing.
type expiry struct {
	timer clockwork.Timer
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
		lifetime: DefaultLifetime,
		expiries: make(map[string]*expiry),
		subs:     make(map[*Subscription]struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Push appends a message and returns its id. Unless the resulting lifetime is
// zero or negative, an expiry timer removes the message once it elapses.
// Unknown kinds are shown as info. After Close, Push does nothing and
// returns an empty id.
func (q *Queue) Push(text string, kind Kind, opts ...MessageOption) string {
	mo := messageOptions{lifetime: q.lifetime}
	for _, opt := range opts {
		opt(&mo)
	}
	if !kind.Valid() {
		kind = KindInfo
	}

	msg := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Kind:      kind,
		Lifetime:  mo.lifetime,
		CreatedAt: q.clock.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ""
	}

	q.messages = append(q.messages, msg)
	if !msg.Persistent() {
		e := &expiry{}
		id := msg.ID
		// The callback needs q.mu, so it cannot run before e.timer is set.
		e.timer = q.clock.AfterFunc(msg.Lifetime, func() { q.expire(id, e) })
		q.expiries[id] = e
	}
	q.publishLocked()
	q.mu.Unlock()

	q.logger.LogAttrs(context.Background(), slog.LevelDebug, "Notification pushed",
		logger.MessageID(msg.ID),
		logger.Kind(msg.Kind.String()),
		slog.Duration("lifetime", msg.Lifetime),
	)

	return msg.ID
}

func (q *Queue) Success(text string, opts ...MessageOption) string {
	return q.Push(text, KindSuccess, opts...)
}

func (q *Queue) Error(text string, opts ...MessageOption) string {
	return q.Push(text, KindError, opts...)
}

func (q *Queue) Warning(text string, opts ...MessageOption) string {
	return q.Push(text, KindWarning, opts...)
}

func (q *Queue) Info(text string, opts ...MessageOption) string {
	return q.Push(text, KindInfo, opts...)
}

// Dismiss removes the message and cancels its pending expiry.
// Unknown or already removed ids are ignored.
func (q *Queue) Dismiss(id string) {
	if q.remove(id, nil) {
		q.logger.LogAttrs(context.Background(), slog.LevelDebug, "Notification dismissed",
			logger.MessageID(id),
		)
	}
}

func (q *Queue) expire(id string, e *expiry) {
	if q.remove(id, e) {
		q.logger.LogAttrs(context.Background(), slog.LevelDebug, "Notification expired",
			logger.MessageID(id),
		)
	}
}

// remove deletes id from the queue. With a non-nil owner the call comes from
// a timer and only proceeds if owner is still the message's registered expiry.
func (q *Queue) remove(id string, owner *expiry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, timed := q.expiries[id]
	if owner != nil && (!timed || e != owner) {
		return false
	}
	if timed {
		e.timer.Stop()
		delete(q.expiries, id)
	}

	i := slices.IndexFunc(q.messages, func(m Message) bool { return m.ID == id })
	if i < 0 {
		return false
	}
	q.messages = slices.Delete(q.messages, i, i+1)
	q.publishLocked()
	return true
}

// Messages returns a snapshot of the live messages in display order.
func (q *Queue) Messages() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.messages)
}

// Get returns the live message with the given id.
func (q *Queue) Get(id string) (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := slices.IndexFunc(q.messages, func(m Message) bool { return m.ID == id })
	if i < 0 {
		return Message{}, false
	}
	return q.messages[i], true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// Close tears the queue down: every pending timer is cancelled, live messages
// are dropped and subscriptions are closed. Close is idempotent.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true

	for id, e := range q.expiries {
		e.timer.Stop()
		delete(q.expiries, id)
	}
	q.messages = nil

	for sub := range q.subs {
		sub.closeLocked()
	}
	clear(q.subs)

	return nil
}
