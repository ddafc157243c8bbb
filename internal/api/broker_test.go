package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(PlanTopic)

	evt := PlanEvent{Type: "plan.started", Data: map[string]any{"pits": 12}}
	b.Publish(PlanTopic, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["pits"].(int) != 12 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(PlanTopic, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("channel not closed after unsubscribe")
	}

	// Publishing to a topic with no subscribers must not block or panic.
	b.Publish(PlanTopic, evt)
}

func TestBrokerSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(PlanTopic)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.Publish(PlanTopic, PlanEvent{Type: "plan.completed"})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
	b.Unsubscribe(PlanTopic, ch)
}
