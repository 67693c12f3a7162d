package api

import (
	"encoding/json"

	"github.com/minjcho/cowlick/pkg/schema"
)

// ArchiveEntry is an archived auction instance with its solution, if any.
type ArchiveEntry struct {
	ID       string                `json:"id"`
	Instance json.RawMessage       `json:"instance"`
	Solution *schema.SolveResponse `json:"solution,omitempty"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WSSubscribeRequest is sent by a client to manage channel subscriptions,
// e.g. ["settlements"].
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// SettlementUpdate is broadcast on the "settlements" channel after each
// solved auction.
type SettlementUpdate struct {
	Type      string            `json:"type"` // "settlement"
	AuctionID string            `json:"auctionId"`
	Orders    int               `json:"orders"`
	Trades    int               `json:"trades"`
	Prices    map[string]string `json:"prices"`
	Timestamp int64             `json:"timestamp"`
}
