package entity

import "time"

// Session is a stored snapshot of one engine.
type Session struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Turn      Cell      `json:"turn"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Turn:      PlayerOne,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SessionState is a session together with its derived outcome, as shown to renderers.
type SessionState struct {
	ID        string     `json:"id"`
	Board     Board      `json:"board"`
	Turn      Cell       `json:"turn"`
	Moves     int        `json:"moves"`
	Status    string     `json:"status"`
	Winner    Cell       `json:"winner"`
	Line      []Position `json:"line,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewSessionState(session *Session, outcome Outcome) *SessionState {
	return &SessionState{
		ID:        session.ID,
		Board:     session.Board,
		Turn:      session.Turn,
		Moves:     session.Moves,
		Status:    outcome.Status,
		Winner:    outcome.Winner,
		Line:      outcome.Line,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func (that *SessionState) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDrawn
}
