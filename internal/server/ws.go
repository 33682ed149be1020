package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snakearena/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	sessionBuffer = 32
	writeWait     = 10 * time.Second
)

var errSessionClosed = errors.New("session closed")

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type directionChangePayload struct {
	Heading string `json:"heading"`
}

// wsSession adapts one websocket connection to the room actor's Session
// interface. Send never blocks: frames are buffered and dropped when the
// buffer is full, so a slow client only loses superseded ticks, it cannot
// stall the room.
type wsSession struct {
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newWSSession(conn *websocket.Conn) *wsSession {
	s := &wsSession{
		conn: conn,
		out:  make(chan []byte, sessionBuffer),
		done: make(chan struct{}),
	}
	go s.writePump()
	return s
}

func (s *wsSession) Send(data []byte) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.out <- data:
	default:
		// Full buffer: drop. State is re-derivable from the next frame.
	}
	return nil
}

func (s *wsSession) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *wsSession) writePump() {
	for {
		select {
		case <-s.done:
			// Flush what is already queued, then say goodbye.
			for {
				select {
				case data := <-s.out:
					_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
						_ = s.conn.Close()
						return
					}
				default:
					_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = s.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					_ = s.conn.Close()
					return
				}
			}
		case data := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = s.conn.Close()
				_ = s.Close()
				return
			}
		}
	}
}

// serveWS binds a connection to (roomId, nickname) and pumps input events
// into the room actor until the client goes away. Disconnect means leave:
// the player is removed from the room synchronously with the read error.
func serveWS(reg *game.Registry, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roomID := query.Get("room")
	nickname := query.Get("nickname")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}

	// The original client sends the literal string "undefined" when the
	// page state is broken; treat it like a missing value.
	if roomID == "" || nickname == "" || roomID == "undefined" || nickname == "undefined" {
		rejectConn(conn, "room and nickname are required")
		return
	}

	room := reg.GetRoom(roomID)
	if room == nil {
		rejectConn(conn, game.ErrRoomNotFound.Error())
		return
	}

	sess := newWSSession(conn)
	if err := room.Join(nickname, sess); err != nil {
		_ = sess.Send(game.EncodeEvent(game.NewErrorEvent(err.Error())))
		_ = sess.Close()
		return
	}

	defer func() {
		room.Leave(nickname)
		_ = sess.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("room %s: %s disconnected", roomID, nickname)
			return
		}
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			log.Printf("room %s: invalid message from %s: %v", roomID, nickname, err)
			continue
		}
		switch inbound.Type {
		case "direction-change":
			var payload directionChangePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				continue
			}
			if h, ok := game.ParseHeading(payload.Heading); ok {
				room.SetHeading(nickname, h)
			}
		case "start-game":
			if err := room.Start(nickname); err != nil {
				_ = sess.Send(game.EncodeEvent(game.NewErrorEvent(err.Error())))
			}
		case "end-game":
			if err := room.End(nickname); err != nil {
				_ = sess.Send(game.EncodeEvent(game.NewErrorEvent(err.Error())))
			}
		default:
			log.Printf("room %s: unknown message type %q from %s", roomID, nickname, inbound.Type)
		}
	}
}

// rejectConn reports a binding problem and drops the connection without
// ever touching a room.
func rejectConn(conn *websocket.Conn, msg string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(game.NewErrorEvent(msg))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg))
	_ = conn.Close()
}
