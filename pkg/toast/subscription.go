package toast

import (
	"context"
	"slices"
)

// Subscription streams queue snapshots to a renderer.
//
// Only the latest snapshot is kept for a slow reader: a new snapshot replaces
// one that has not been received yet, so the queue never blocks on rendering
// and the reader always ends on the current state.
type Subscription struct {
	q    *Queue
	ch   chan []Message
	done chan struct{}
}

// Subscribe registers a renderer. The current snapshot is delivered at once.
// The subscription ends when ctx is cancelled, Close is called, or the queue
// is closed; the Updates channel is then closed.
func (q *Queue) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		q:    q,
		ch:   make(chan []Message, 1),
		done: make(chan struct{}),
	}

	q.mu.Lock()
	if q.closed {
		sub.closeLocked()
		q.mu.Unlock()
		return sub
	}
	q.subs[sub] = struct{}{}
	sub.deliver(q.messages)
	q.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.done:
			}
		}()
	}

	return sub
}

// Updates returns the channel snapshots arrive on.
func (s *Subscription) Updates() <-chan []Message {
	return s.ch
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()

	if _, ok := s.q.subs[s]; ok {
		delete(s.q.subs, s)
		s.closeLocked()
	}
	return nil
}

func (s *Subscription) closeLocked() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	close(s.ch)
}

// deliver must be called with the queue locked.
func (s *Subscription) deliver(snapshot []Message) {
	snap := slices.Clone(snapshot)
	if snap == nil {
		snap = []Message{}
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

func (q *Queue) publishLocked() {
	for sub := range q.subs {
		sub.deliver(q.messages)
	}
}
