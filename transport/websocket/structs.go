package websocket

import "encoding/json"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Ack is the reply to one request, mirroring the (ok, message, data)
// acknowledgement convention the clients expect.
type Ack struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type authenticatePayload struct {
	Token string `json:"token"`
}

type createPayload struct {
	Mark   string `json:"mark"`
	Avatar string `json:"avatar"`
}

type checkPayload struct {
	Code string `json:"code"`
}

type joinPayload struct {
	Code    string `json:"code"`
	MatchID string `json:"matchId"`
	Mark    string `json:"mark"`
	Avatar  string `json:"avatar"`
}

type connectPayload struct {
	MatchID string `json:"matchId"`
}

type startPayload struct {
	MatchID     string `json:"matchId"`
	TotalRounds int    `json:"totalRounds"`
}

type movePayload struct {
	MatchID string `json:"matchId"`
	Cell    int    `json:"cell"`
}
