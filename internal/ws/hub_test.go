package ws

import (
	"testing"
	"time"
)

func TestSubscribeUserReceivesSignal(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.SubscribeUser("u1")
	defer cancel()

	hub.NotifyUser("u1", []byte(`{"type":"permission_update"}`))

	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the signal")
	}
}

func TestSubscribeUserIgnoresOtherUsers(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.SubscribeUser("u1")
	defer cancel()

	hub.NotifyUser("u2", []byte("x"))

	select {
	case <-events:
		t.Fatal("signal leaked across users")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyUserSignalCoalesces(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.SubscribeUser("u1")
	defer cancel()

	// Two notifications before the subscriber drains: the second must not
	// block the hub
	done := make(chan struct{})
	go func() {
		hub.NotifyUser("u1", []byte("a"))
		hub.NotifyUser("u1", []byte("b"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyUser blocked on a full subscriber channel")
	}

	<-events // at least one pending signal
}

func TestCancelRemovesSubscription(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.SubscribeUser("u1")
	cancel()

	hub.NotifyUser("u1", []byte("x"))

	select {
	case <-events:
		t.Fatal("cancelled subscriber still receives signals")
	case <-time.After(50 * time.Millisecond):
	}
}
