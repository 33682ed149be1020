package server

// Request/response bodies for the room CRUD routes. The realtime event
// payloads live in internal/game next to the actor that emits them.

type createRoomRequest struct {
	Nickname string `json:"nickname"`
	Boundary string `json:"boundary,omitempty"` // "reset" (default) or "wrap"
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
	Host   string `json:"host"`
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

type successResponse struct {
	Success bool     `json:"success"`
	Players []string `json:"players,omitempty"`
}

type gameStatusResponse struct {
	Status   string   `json:"status"`
	Players  []string `json:"players"`
	TimeLeft int      `json:"timeLeft"`
}

type errorResponse struct {
	Error string `json:"error"`
}
