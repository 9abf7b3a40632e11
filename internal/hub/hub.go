package hub

import (
	"log"
	"sync"
	"time"
)

type EventType string

const (
	EventConnected EventType = "connected"
	EventProgress  EventType = "progress"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
)

// Event is one progress-stream payload. Progress is only meaningful for
// EventProgress, Message for progress and error events.
type Event struct {
	Type     EventType `json:"type"`
	Progress int       `json:"progress,omitempty"`
	Message  string    `json:"message,omitempty"`
}

const subscriberBuffer = 32

// Subscription is one subscriber's view of a job's event stream. The
// channel is closed when the job reaches a terminal state, when the
// subscriber unsubscribes, or when the entry is evicted.
type Subscription struct {
	JobID string

	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// send and close hold the same mutex, so a publisher that copied the
// subscriber list before an Unsubscribe can never write to a closed
// channel. Delivery stays best-effort: a full buffer drops the event.
func (s *Subscription) send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	default:
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

type jobEntry struct {
	subs        []*Subscription
	lastPercent int
	terminal    bool
	createdAt   time.Time
}

// Hub is the process-wide registry mapping job IDs to progress
// subscribers. It is injected into whatever publishes or subscribes;
// there is no package-level instance.
type Hub struct {
	mu   sync.Mutex
	jobs map[string]*jobEntry
}

func New() *Hub {
	return &Hub{jobs: make(map[string]*jobEntry)}
}

// Subscribe registers a new subscriber for jobID, creating the entry if
// this is the first subscription. The first event on the channel is
// always the connected acknowledgment.
func (h *Hub) Subscribe(jobID string) *Subscription {
	sub := &Subscription{JobID: jobID, ch: make(chan Event, subscriberBuffer)}
	// Enqueued before the sub is visible to publishers, so nothing can
	// slip ahead of it.
	sub.ch <- Event{Type: EventConnected}

	h.mu.Lock()
	entry, ok := h.jobs[jobID]
	if !ok {
		entry = &jobEntry{createdAt: time.Now()}
		h.jobs[jobID] = entry
	}
	entry.subs = append(entry.subs, sub)
	h.mu.Unlock()

	return sub
}

// Unsubscribe detaches a subscriber and closes its channel. Safe to
// call multiple times and after the job has completed.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if entry, ok := h.jobs[sub.JobID]; ok {
		kept := entry.subs[:0]
		for _, s := range entry.subs {
			if s != sub {
				kept = append(kept, s)
			}
		}
		entry.subs = kept
	}
	h.mu.Unlock()
	sub.close()
}

// Publish fans an event out to every subscriber of jobID. Delivery is
// best-effort: a subscriber that has fallen behind is skipped rather
// than blocking the publisher or the other subscribers. Progress events
// whose percent is below the last delivered value for the job are
// dropped, so the transport always sees a non-decreasing sequence.
// A terminal event closes every subscriber channel and removes the
// entry; later publishes for the same job are no-ops.
func (h *Hub) Publish(jobID string, ev Event) {
	h.mu.Lock()
	entry, ok := h.jobs[jobID]
	if !ok || entry.terminal {
		h.mu.Unlock()
		return
	}

	if ev.Type == EventProgress {
		if ev.Progress < entry.lastPercent {
			h.mu.Unlock()
			return
		}
		entry.lastPercent = ev.Progress
	}

	subs := make([]*Subscription, len(entry.subs))
	copy(subs, entry.subs)

	isTerminal := ev.Type == EventComplete || ev.Type == EventError
	if isTerminal {
		entry.terminal = true
		delete(h.jobs, jobID)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.send(ev)
	}

	if isTerminal {
		for _, s := range subs {
			s.close()
		}
	}
}

// StartEvictionSweep removes entries for jobs that never reached a
// terminal state (crashed job, subscriber that never submitted one).
// Without it an abandoned subscription would pin its entry forever.
func (h *Hub) StartEvictionSweep(ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			var stale []*Subscription
			h.mu.Lock()
			now := time.Now()
			for id, entry := range h.jobs {
				if now.Sub(entry.createdAt) > ttl {
					log.Printf("[Hub] Evicting abandoned entry %s (%d subscribers)", shortID(id), len(entry.subs))
					stale = append(stale, entry.subs...)
					delete(h.jobs, id)
				}
			}
			h.mu.Unlock()
			for _, s := range stale {
				s.close()
			}
		}
	}()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
