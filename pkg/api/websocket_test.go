package api

import (
	"encoding/json"
	"testing"
)

func TestBroadcastToChannel(t *testing.T) {
	hub := NewHub(nil)

	subscribed := &Client{send: make(chan []byte, 1), subscriptions: map[string]bool{SettlementsChannel: true}}
	other := &Client{send: make(chan []byte, 1), subscriptions: map[string]bool{"orders": true}}
	hub.clients[subscribed] = true
	hub.clients[other] = true

	hub.BroadcastToChannel(SettlementsChannel, SettlementUpdate{
		Type:      "settlement",
		AuctionID: "42",
	})

	select {
	case msg := <-subscribed.send:
		var update SettlementUpdate
		if err := json.Unmarshal(msg, &update); err != nil {
			t.Fatalf("decode broadcast: %v", err)
		}
		if update.AuctionID != "42" {
			t.Errorf("auction id = %q, want 42", update.AuctionID)
		}
	default:
		t.Fatal("subscribed client received nothing")
	}

	select {
	case <-other.send:
		t.Fatal("unsubscribed client received a broadcast")
	default:
	}
}

func TestClientSubscriptions(t *testing.T) {
	c := &Client{subscriptions: make(map[string]bool)}
	if c.IsSubscribed(SettlementsChannel) {
		t.Error("fresh client subscribed")
	}
	c.subscribe(SettlementsChannel)
	if !c.IsSubscribed(SettlementsChannel) {
		t.Error("subscribe did not register")
	}
	c.unsubscribe(SettlementsChannel)
	if c.IsSubscribed(SettlementsChannel) {
		t.Error("unsubscribe did not remove")
	}
}
