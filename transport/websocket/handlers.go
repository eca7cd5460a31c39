package websocket

import (
	"encoding/json"
)

func (that *Server) handleAuthenticate(state *connState, payload json.RawMessage) Ack {
	log := that.logger.With("method", "handleAuthenticate")

	var req authenticatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return Ack{Message: "invalid payload"}
	}

	username, err := that.auth.VerifyToken(req.Token)
	if err != nil {
		log.Info("authentication failed", "error", err)
		return Ack{Message: "authentication failed"}
	}

	state.username = username

	that.connectionsMutex.Lock()
	that.connections[username] = state.client
	that.connectionsMutex.Unlock()

	log.Info("player authenticated", "username", username)

	return Ack{OK: true, Message: "authenticated", Data: map[string]string{"username": username}}
}

func (that *Server) handleCreate(state *connState, payload json.RawMessage) Ack {
	var req createPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return Ack{Message: "invalid payload"}
	}

	result, err := that.coordinator.CreateMatch(state.username, req.Mark, req.Avatar)
	if err != nil {
		return Ack{Message: err.Error()}
	}

	return Ack{OK: true, Message: "match created", Data: result}
}

func (that *Server) handleCheck(state *connState, payload json.RawMessage) Ack {
	var req checkPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return Ack{Message: "invalid payload"}
	}

	result, err := that.coordinator.CheckCode(req.Code, state.username)
	if err != nil {
		return Ack{Message: err.Error()}
	}

	return Ack{OK: true, Message: "match joinable", Data: result}
}

func (that *Server) handleJoin(state *connState, payload json.RawMessage) Ack {
	var req joinPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return Ack{Message: "invalid payload"}
	}

	if err := that.coordinator.JoinMatch(state.username, req.Code, req.MatchID, req.Mark, req.Avatar); err != nil {
		return Ack{Message: err.Error()}
	}

	return Ack{OK: true, Message: "joined match"}
}

// handleConnect attaches the connection to its match: the coordinator
// records the session and broadcasts player-connected to the current group,
// then this connection subscribes, so the announcement never echoes back to
// the connecting player.
func (that *Server) handleConnect(state *connState, payload json.RawMessage) Ack {
	var req connectPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return Ack{Message: "invalid payload"}
	}

	snapshot, err := that.coordinator.Connect(req.MatchID, state.username)
	if err != nil {
		return Ack{Message: err.Error()}
	}

	if state.matchID != "" && state.matchID != req.MatchID {
		that.hub.Unregister(state.matchID, state.client)
	}

	that.hub.Register(req.MatchID, state.client)
	state.matchID = req.MatchID

	return Ack{OK: true, Message: "connected to match", Data: snapshot}
}

func (that *Server) handleStart(state *connState, payload json.RawMessage) Ack {
	var req startPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return Ack{Message: "invalid payload"}
	}

	if err := that.coordinator.Start(req.MatchID, state.username, req.TotalRounds); err != nil {
		return Ack{Message: err.Error()}
	}

	return Ack{OK: true, Message: "match started"}
}

func (that *Server) handleMove(state *connState, payload json.RawMessage) Ack {
	var req movePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return Ack{Message: "invalid payload"}
	}

	result, err := that.coordinator.Move(req.MatchID, state.username, req.Cell)
	if err != nil {
		return Ack{Message: err.Error()}
	}

	return Ack{OK: true, Message: "move applied", Data: result}
}
