package utils

import "testing"

func TestEventBusPublishDropsWhenFull(t *testing.T) {
	eb := NewEventBus()
	for i := 0; i < 150; i++ {
		eb.Publish("board_updated", "u1", i)
	}
	if got := len(eb.SubscribeCh()); got != 100 {
		t.Fatalf("expected buffered events to cap at 100, got %d", got)
	}
	first := <-eb.SubscribeCh()
	if first.Event != "board_updated" || first.UserID != "u1" || first.Data != 0 {
		t.Fatalf("unexpected first event: %#v", first)
	}
}
