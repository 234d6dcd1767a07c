package pubsub

import (
	"sync"
	"testing"
	"time"
)

func TestSubscribeReplaysLatest(t *testing.T) {
	b := NewBroker[int](4)
	b.Publish(1)
	b.Publish(2)

	sub := b.Subscribe()
	defer sub.Close()
	if got := recv(t, sub.C()); got != 2 {
		t.Fatalf("replayed value = %d, want 2", got)
	}

	b.Publish(3)
	if got := recv(t, sub.C()); got != 3 {
		t.Fatalf("published value = %d, want 3", got)
	}
}

func TestPublishDropsOldestForSlowSubscriber(t *testing.T) {
	b := NewBroker[int](2)
	sub := b.Subscribe()
	defer sub.Close()

	for i := 1; i <= 5; i++ {
		b.Publish(i)
	}
	if b.Dropped() != 3 {
		t.Fatalf("dropped = %d, want 3", b.Dropped())
	}
	if first, second := recv(t, sub.C()), recv(t, sub.C()); first != 4 || second != 5 {
		t.Fatalf("kept values = %d,%d want 4,5", first, second)
	}
}

func TestSubscriptionCloseRevokes(t *testing.T) {
	b := NewBroker[string](1)
	sub := b.Subscribe()
	sub.Close()
	sub.Close()

	if b.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", b.Subscribers())
	}
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed channel")
	}
	b.Publish("ignored")
}

func TestBrokerCloseEndsSubscribers(t *testing.T) {
	b := NewBroker[int](1)
	sub := b.Subscribe()
	b.Close()
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed channel after broker close")
	}
	late := b.Subscribe()
	if _, ok := <-late.C(); ok {
		t.Fatal("expected closed channel for subscription on closed broker")
	}
	sub.Close()
}

func TestConcurrentPublishAndClose(t *testing.T) {
	b := NewBroker[int](8)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				b.Publish(i)
			}
		}()
	}
	for s := 0; s < 4; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := b.Subscribe()
			for i := 0; i < 10; i++ {
				select {
				case <-sub.C():
				case <-time.After(10 * time.Millisecond):
				}
			}
			sub.Close()
		}()
	}
	wg.Wait()
	if b.Subscribers() != 0 {
		t.Fatalf("expected all subscribers released, got %d", b.Subscribers())
	}
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}
