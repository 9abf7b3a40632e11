package hub

import (
	"sync"
	"testing"
	"time"
)

func recv(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("channel closed while expecting an event")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func expectClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestSubscribeDeliversConnectedFirst(t *testing.T) {
	h := New()
	sub := h.Subscribe("job-1")
	defer h.Unsubscribe(sub)

	if ev := recv(t, sub); ev.Type != EventConnected {
		t.Errorf("first event = %q, want connected", ev.Type)
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	h := New()
	a := h.Subscribe("job-1")
	b := h.Subscribe("job-1")
	recv(t, a)
	recv(t, b)

	h.Publish("job-1", Event{Type: EventProgress, Progress: 10, Message: "working"})

	for _, sub := range []*Subscription{a, b} {
		ev := recv(t, sub)
		if ev.Type != EventProgress || ev.Progress != 10 {
			t.Errorf("got %+v, want progress 10", ev)
		}
	}
}

func TestPublishToUnknownJobIsNoOp(t *testing.T) {
	h := New()
	h.Publish("nobody-listening", Event{Type: EventProgress, Progress: 50})
	h.Publish("nobody-listening", Event{Type: EventComplete})
}

func TestProgressIsMonotonicPerJob(t *testing.T) {
	h := New()
	sub := h.Subscribe("job-1")
	recv(t, sub)

	h.Publish("job-1", Event{Type: EventProgress, Progress: 30})
	h.Publish("job-1", Event{Type: EventProgress, Progress: 20}) // dropped
	h.Publish("job-1", Event{Type: EventProgress, Progress: 40})
	h.Publish("job-1", Event{Type: EventComplete})

	var percents []int
	for {
		ev, ok := <-sub.Events()
		if !ok {
			break
		}
		if ev.Type == EventProgress {
			percents = append(percents, ev.Progress)
		}
	}

	if len(percents) != 2 || percents[0] != 30 || percents[1] != 40 {
		t.Errorf("delivered percents = %v, want [30 40]", percents)
	}
}

func TestTerminalEventClosesSubscribers(t *testing.T) {
	h := New()
	sub := h.Subscribe("job-1")
	recv(t, sub)

	h.Publish("job-1", Event{Type: EventComplete})

	if ev := recv(t, sub); ev.Type != EventComplete {
		t.Fatalf("got %q, want complete", ev.Type)
	}
	expectClosed(t, sub)

	// entry is gone, later publishes are no-ops
	h.Publish("job-1", Event{Type: EventProgress, Progress: 99})
}

func TestErrorEventIsTerminal(t *testing.T) {
	h := New()
	sub := h.Subscribe("job-1")
	recv(t, sub)

	h.Publish("job-1", Event{Type: EventError, Message: "boom"})

	ev := recv(t, sub)
	if ev.Type != EventError || ev.Message != "boom" {
		t.Fatalf("got %+v, want error event", ev)
	}
	expectClosed(t, sub)
}

func TestUnsubscribeDoesNotAffectOthers(t *testing.T) {
	h := New()
	gone := h.Subscribe("job-1")
	stays := h.Subscribe("job-1")
	recv(t, gone)
	recv(t, stays)

	h.Unsubscribe(gone)
	h.Unsubscribe(gone) // safe to repeat

	h.Publish("job-1", Event{Type: EventProgress, Progress: 10})
	if ev := recv(t, stays); ev.Progress != 10 {
		t.Errorf("remaining subscriber should still receive events, got %+v", ev)
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := New()
	slow := h.Subscribe("job-1")
	_ = slow // never drained beyond capacity

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= subscriberBuffer*2; i++ {
			h.Publish("job-1", Event{Type: EventProgress, Progress: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestConnectedStaysFirstWithPublisherInFlight(t *testing.T) {
	h := New()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p := 1
		for {
			select {
			case <-stop:
				return
			default:
			}
			h.Publish("job-1", Event{Type: EventProgress, Progress: p})
			p++
		}
	}()

	for i := 0; i < 200; i++ {
		sub := h.Subscribe("job-1")
		if ev := recv(t, sub); ev.Type != EventConnected {
			t.Fatalf("subscriber %d: first event = %q, want connected", i, ev.Type)
		}
		h.Unsubscribe(sub)
	}

	close(stop)
	wg.Wait()
}

func TestUnsubscribeRacingPublish(t *testing.T) {
	// Subscribers dropping out mid-job must never make Publish write to
	// a closed channel. Run with -race.
	for iter := 0; iter < 100; iter++ {
		h := New()
		subs := make([]*Subscription, 8)
		for i := range subs {
			subs[i] = h.Subscribe("job-1")
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for p := 1; p <= 100; p++ {
				h.Publish("job-1", Event{Type: EventProgress, Progress: p})
			}
			h.Publish("job-1", Event{Type: EventComplete})
		}()
		go func() {
			defer wg.Done()
			for _, s := range subs {
				h.Unsubscribe(s)
			}
		}()
		wg.Wait()
	}
}

func TestEvictionRacingPublish(t *testing.T) {
	// Same property against the sweep's eviction path: entry removed
	// under the lock, channels closed outside it, publisher in flight.
	for iter := 0; iter < 100; iter++ {
		h := New()
		for i := 0; i < 8; i++ {
			h.Subscribe("job-1")
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for p := 1; p <= 100; p++ {
				h.Publish("job-1", Event{Type: EventProgress, Progress: p})
			}
		}()
		go func() {
			defer wg.Done()
			h.mu.Lock()
			var stale []*Subscription
			if entry, ok := h.jobs["job-1"]; ok {
				stale = entry.subs
				delete(h.jobs, "job-1")
			}
			h.mu.Unlock()
			for _, s := range stale {
				s.close()
			}
		}()
		wg.Wait()
	}
}

func TestEvictedEntryClosesSubscribers(t *testing.T) {
	h := New()
	sub := h.Subscribe("abandoned-job")
	recv(t, sub)

	// evict the way the sweep does: drop the entry, then close outside
	// the lock
	h.mu.Lock()
	stale := h.jobs["abandoned-job"].subs
	delete(h.jobs, "abandoned-job")
	h.mu.Unlock()
	for _, s := range stale {
		s.close()
	}

	expectClosed(t, sub)
	h.Publish("abandoned-job", Event{Type: EventProgress, Progress: 10})
}
