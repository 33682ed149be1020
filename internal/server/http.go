package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"snakearena/internal/game"
)

func startServer(reg *game.Registry, addr string) {
	log.Fatal(http.ListenAndServe(addr, newMux(reg)))
}

// newMux wires the REST surface and the realtime endpoint. Split out from
// startServer so tests can mount it on httptest.
func newMux(reg *game.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := decodeJSON(r, &req); err != nil || req.Nickname == "" {
			writeError(w, http.StatusBadRequest, "nickname is required")
			return
		}
		rules := reg.Rules()
		if req.Boundary != "" {
			rules.Boundary = game.Boundary(req.Boundary)
		}
		roomID := uuid.NewString()
		if _, err := reg.CreateRoom(roomID, req.Nickname, rules); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: roomID, Host: req.Nickname})
	})

	mux.HandleFunc("GET /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.ListRooms())
	})

	mux.HandleFunc("GET /api/rooms/{roomId}", func(w http.ResponseWriter, r *http.Request) {
		v, ok := reg.GetView(r.PathValue("roomId"))
		if !ok {
			writeGameError(w, game.ErrRoomNotFound)
			return
		}
		writeJSON(w, http.StatusOK, v)
	})

	mux.HandleFunc("POST /api/rooms/{roomId}/join", func(w http.ResponseWriter, r *http.Request) {
		room, nickname, ok := roomAndNickname(w, r, reg)
		if !ok {
			return
		}
		// Seat reservation only; the websocket connect claims it.
		if err := room.Join(nickname, nil); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Players: playerNames(room)})
	})

	mux.HandleFunc("POST /api/rooms/{roomId}/leave", func(w http.ResponseWriter, r *http.Request) {
		room, nickname, ok := roomAndNickname(w, r, reg)
		if !ok {
			return
		}
		room.Leave(nickname)
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	})

	mux.HandleFunc("POST /api/rooms/{roomId}/game/start", func(w http.ResponseWriter, r *http.Request) {
		room, nickname, ok := roomAndNickname(w, r, reg)
		if !ok {
			return
		}
		if err := room.Start(nickname); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	})

	mux.HandleFunc("POST /api/rooms/{roomId}/game/end", func(w http.ResponseWriter, r *http.Request) {
		room, nickname, ok := roomAndNickname(w, r, reg)
		if !ok {
			return
		}
		if err := room.End(nickname); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	})

	mux.HandleFunc("GET /api/rooms/{roomId}/game/status", func(w http.ResponseWriter, r *http.Request) {
		v, ok := reg.GetView(r.PathValue("roomId"))
		if !ok {
			writeGameError(w, game.ErrRoomNotFound)
			return
		}
		names := make([]string, 0, len(v.Players))
		for _, p := range v.Players {
			names = append(names, p.Nickname)
		}
		writeJSON(w, http.StatusOK, gameStatusResponse{
			Status:   string(v.Status),
			Players:  names,
			TimeLeft: v.TimeLeft,
		})
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.Stats())
	})

	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(reg, w, r)
	})

	return mux
}

func roomAndNickname(w http.ResponseWriter, r *http.Request, reg *game.Registry) (*game.Room, string, bool) {
	var req nicknameRequest
	if err := decodeJSON(r, &req); err != nil || req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return nil, "", false
	}
	room := reg.GetRoom(r.PathValue("roomId"))
	if room == nil {
		writeGameError(w, game.ErrRoomNotFound)
		return nil, "", false
	}
	return room, req.Nickname, true
}

func playerNames(room *game.Room) []string {
	v, ok := room.View()
	if !ok {
		return nil
	}
	names := make([]string, 0, len(v.Players))
	for _, p := range v.Players {
		names = append(names, p.Nickname)
	}
	return names
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeGameError maps the core error taxonomy onto HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrRoomClosed):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrRoomExists),
		errors.Is(err, game.ErrNicknameTaken),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrGameRunning),
		errors.Is(err, game.ErrGameNotActive):
		status = http.StatusConflict
	case errors.Is(err, game.ErrNotHost):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrEmptyName):
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}
