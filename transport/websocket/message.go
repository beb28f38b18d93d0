package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
)

const (
	actionState = "session:state"
	actionMove  = "session:move"
	actionReset = "session:reset"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type movePayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type moveRejectedPayload struct {
	Applied bool                 `json:"applied"`
	Player  entity.Cell          `json:"player"`
	Session *entity.SessionState `json:"session"`
}

type errorPayload struct {
	Error   string               `json:"error"`
	Session *entity.SessionState `json:"session,omitempty"`
}
