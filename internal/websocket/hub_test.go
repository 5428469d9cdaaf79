package websocket

import (
	"testing"
	"time"
)

func newTestClient(hub *Hub, pickupID string) *Client {
	return &Client{Hub: hub, Send: make(chan []byte, 8), PickupID: pickupID}
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected message: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishIsRoomScoped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a1 := newTestClient(hub, "pickup-a")
	a2 := newTestClient(hub, "pickup-a")
	b := newTestClient(hub, "pickup-b")
	hub.register <- a1
	hub.register <- a2
	hub.register <- b

	hub.Publish("pickup-a", []byte("hello"))

	if got := string(recv(t, a1)); got != "hello" {
		t.Fatalf("a1 got %q", got)
	}
	if got := string(recv(t, a2)); got != "hello" {
		t.Fatalf("a2 got %q", got)
	}
	assertSilent(t, b)
}

func TestHub_PublishPreservesOrder(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub, "pickup-a")
	hub.register <- c

	hub.Publish("pickup-a", []byte("one"))
	hub.Publish("pickup-a", []byte("two"))
	hub.Publish("pickup-a", []byte("three"))

	for _, want := range []string{"one", "two", "three"} {
		if got := string(recv(t, c)); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub, "pickup-a")
	hub.register <- c
	hub.unregister <- c

	select {
	case _, open := <-c.Send:
		if open {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	// publishing to the emptied room must not panic
	hub.Publish("pickup-a", []byte("after"))
}

func TestHub_PublishToUnknownRoomIsNoop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub, "pickup-a")
	hub.register <- c

	hub.Publish("pickup-unknown", []byte("lost"))
	assertSilent(t, c)
}
