package web

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{
		hub:  h,
		send: make(chan []byte, buffer),
	}
}

func registerClients(t *testing.T, h *Hub, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		h.register <- c
	}
	waitForClients(t, h, len(clients))
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Expected %d clients, got %d", n, h.ClientCount())
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		if !ok {
			t.Fatal("Send channel closed unexpectedly")
		}
		return payload
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for delivery")
		return nil
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		if ok {
			t.Fatalf("Expected no delivery, got %s", payload)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToZeroClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// 没有客户端时广播应正常完成
	hub.Broadcast(EventDataUpdated, map[string]interface{}{"ok": true})

	time.Sleep(20 * time.Millisecond)
	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestBroadcastDeliversToAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, 8)
	b := newTestClient(hub, 8)
	c := newTestClient(hub, 8)
	registerClients(t, hub, a, b, c)

	hub.Broadcast(EventNewPrediction, map[string]interface{}{"prediction": "Win"})

	payloadA := recv(t, a)
	payloadB := recv(t, b)
	payloadC := recv(t, c)

	if string(payloadA) != string(payloadB) || string(payloadB) != string(payloadC) {
		t.Error("Expected identical serialized payload for every client")
	}

	var event Event
	if err := json.Unmarshal(payloadA, &event); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if event.Type != EventNewPrediction {
		t.Errorf("Expected type '%s', got '%s'", EventNewPrediction, event.Type)
	}
}

func TestClosedClientExcluded(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	open := newTestClient(hub, 8)
	closed := newTestClient(hub, 8)
	registerClients(t, hub, open, closed)

	hub.unregister <- closed
	waitForClients(t, hub, 1)

	hub.Broadcast(EventModelUpdated, map[string]interface{}{"trained": true})

	payload := recv(t, open)
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if event.Type != EventModelUpdated {
		t.Errorf("Expected type '%s', got '%s'", EventModelUpdated, event.Type)
	}

	// 已关闭客户端的发送通道被关闭且没有收到任何消息
	if payload, ok := <-closed.send; ok {
		t.Errorf("Expected closed client to receive nothing, got %s", payload)
	}
}

func TestChannelFiltering(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	filtered := newTestClient(hub, 8)
	unfiltered := newTestClient(hub, 8)
	registerClients(t, hub, filtered, unfiltered)

	filtered.handleMessage([]byte(`{"type":"subscribe","channels":["new_prediction"]}`))

	hub.Broadcast(EventDataUpdated, map[string]interface{}{})

	recv(t, unfiltered)
	expectNothing(t, filtered)

	hub.Broadcast(EventNewPrediction, map[string]interface{}{})

	recv(t, unfiltered)
	recv(t, filtered)
}

func TestUnsubscribeClearsFilter(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 8)
	registerClients(t, hub, client)

	client.handleMessage([]byte(`{"type":"subscribe","channels":["model_updated"]}`))
	client.handleMessage([]byte(`{"type":"unsubscribe"}`))

	hub.Broadcast(EventDataUpdated, map[string]interface{}{})
	recv(t, client)
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := newTestClient(hub, 1)
	healthy := newTestClient(hub, 8)
	registerClients(t, hub, slow, healthy)

	// 填满慢客户端的发送缓冲
	slow.send <- []byte("backlog")

	hub.Broadcast(EventDataUpdated, map[string]interface{}{})

	// 慢客户端被移除，健康客户端仍收到消息
	waitForClients(t, hub, 1)
	recv(t, healthy)
}

func TestInvalidDirectiveIgnored(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, 1)

	client.handleMessage([]byte("not json"))
	client.handleMessage([]byte(`{"type":"unknown"}`))

	if !client.subscribed(EventDataUpdated) {
		t.Error("Expected client without filter to receive all events")
	}
}
