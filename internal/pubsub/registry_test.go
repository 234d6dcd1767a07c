package pubsub

import "testing"

type closeRecorder struct {
	name  string
	order *[]string
}

func (c closeRecorder) Close() { *c.order = append(*c.order, c.name) }

func TestRegistryClosesNewestFirst(t *testing.T) {
	var order []string
	r := NewRegistry()
	r.Track(closeRecorder{name: "a", order: &order})
	r.Track(closeRecorder{name: "b", order: &order})
	r.Close()
	r.Close()

	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("unexpected close order: %v", order)
	}

	r.Track(closeRecorder{name: "late", order: &order})
	if len(order) != 3 || order[2] != "late" {
		t.Fatalf("expected late item closed immediately: %v", order)
	}
}

func TestRegistryReleasesBrokerSubscriptions(t *testing.T) {
	b := NewBroker[int](1)
	r := NewRegistry()
	r.Track(b.Subscribe())
	r.Track(b.Subscribe())
	if b.Subscribers() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.Subscribers())
	}
	r.Close()
	if b.Subscribers() != 0 {
		t.Fatalf("expected 0 subscribers after registry close, got %d", b.Subscribers())
	}
}
