package eventbus

import "testing"

func TestPublishSubscribe(t *testing.T) {
	bus := New[int]()
	sub := bus.Subscribe()
	bus.Publish(42)
	if got := <-sub; got != 42 {
		t.Fatalf("expected 42 got %d", got)
	}
	bus.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := New[int]()
	sub := bus.Subscribe()
	for i := 0; i < 100; i++ {
		bus.Publish(i)
	}
	// The subscriber buffer holds the first events; the rest were dropped
	// without blocking the publisher.
	if got := <-sub; got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := New[string]()
	sub := bus.Subscribe()
	bus.Close()
	bus.Close()
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}
	// Publishing after close must not panic.
	bus.Publish("late")
	if late := bus.Subscribe(); late == nil {
		t.Fatal("subscribe after close should return a closed channel")
	}
}
