package game

import "errors"

var (
	ErrEmptyName     = errors.New("room id and nickname must be non-empty")
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomClosed    = errors.New("room closed")
	ErrRoomFull      = errors.New("room is full (4 players max)")
	ErrNicknameTaken = errors.New("nickname already exists in this room")
	ErrNotHost       = errors.New("only the host can do that")
	ErrGameRunning   = errors.New("game already in progress")
	ErrGameNotActive = errors.New("no game in progress")
)
