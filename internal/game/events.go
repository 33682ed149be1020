package game

import (
	"encoding/json"
	"log"
)

// Session is the room actor's only view of a connected client. Send must
// never block the actor: implementations buffer and drop, so a tick event
// is delivered at most once and a missed one is superseded by the next.
type Session interface {
	Send(data []byte) error
	Close() error
}

// Outbound event type tags.
const (
	EventMembership  = "membership-update"
	EventGameStarted = "game-started"
	EventGameEnded   = "game-ended"
	EventTickState   = "tick-state"
	EventError       = "error"
)

// End-of-round reasons.
const (
	EndReasonTimeUp    = "timeUp"
	EndReasonHostEnded = "hostEnded"
)

type PlayerInfo struct {
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

type ScoreEntry struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

type SnakeState struct {
	Nickname string  `json:"nickname"`
	Body     []Cell  `json:"body"`
	Heading  Heading `json:"heading"`
}

type MembershipUpdate struct {
	Type    string       `json:"type"`
	Host    string       `json:"host"`
	Players []PlayerInfo `json:"players"`
}

type GameStarted struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"` // seconds
}

type GameEnded struct {
	Type   string       `json:"type"`
	Reason string       `json:"reason"`
	Scores []ScoreEntry `json:"scores"` // descending, ties by join order
}

type TickState struct {
	Type     string       `json:"type"`
	Tick     uint64       `json:"tick"`
	Snakes   []SnakeState `json:"snakes"`
	Food     []Cell       `json:"food"`
	Scores   []ScoreEntry `json:"scores"`
	TimeLeft int          `json:"timeLeft"` // seconds
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: msg}
}

// EncodeEvent marshals an outbound event. Events are plain structs built by
// the actor, so a marshal failure is a programming error; it is logged and
// the frame is dropped rather than crashing the room.
func EncodeEvent(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("event marshal: %v", err)
		return nil
	}
	return data
}
