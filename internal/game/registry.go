package game

import (
	"log"
	"sort"
	"sync"
	"time"
)

// Registry owns room existence. It is the only state shared between actor
// contexts, so every structural change (create, delete) happens under one
// mutex and is immediately visible to later lookups. Room internals are
// never touched here; reads go through RoomView snapshots.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rules Rules
}

// Stats is an aggregate over all live rooms.
type Stats struct {
	TotalRooms   int `json:"totalRooms"`
	ActiveGames  int `json:"activeGames"`
	TotalPlayers int `json:"totalPlayers"`
}

func NewRegistry(rules Rules) *Registry {
	return &Registry{
		rooms: map[string]*Room{},
		rules: SanitizeRules(rules),
	}
}

// Rules returns the registry's base tuning.
func (g *Registry) Rules() Rules { return g.rules }

// CreateRoom inserts a Waiting room with the host as its sole player and
// starts its actor. Creating an id that already exists always fails; it
// never overwrites.
func (g *Registry) CreateRoom(id, host string, rules Rules) (*Room, error) {
	if id == "" || host == "" {
		return nil, ErrEmptyName
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[id]; ok {
		return nil, ErrRoomExists
	}
	r := NewRoom(id, host, rules)
	r.OnEmpty = func(roomID string) { g.removeRoom(roomID, r) }
	g.rooms[id] = r
	go r.Run()
	log.Printf("room %s created by %s", id, host)
	return r, nil
}

// GetRoom returns the live room or nil.
func (g *Registry) GetRoom(id string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[id]
}

// GetView returns a snapshot of one room.
func (g *Registry) GetView(id string) (RoomView, bool) {
	r := g.GetRoom(id)
	if r == nil {
		return RoomView{}, false
	}
	return r.View()
}

// RemoveRoom deletes and stops the room if present. Idempotent.
func (g *Registry) RemoveRoom(id string) {
	g.mu.Lock()
	r, ok := g.rooms[id]
	if ok {
		delete(g.rooms, id)
	}
	g.mu.Unlock()
	if ok {
		r.Stop()
		log.Printf("room %s deleted", id)
	}
}

// removeRoom drops the room only if it is still the same instance, so a
// delete racing a re-create of the same id cannot kill the new room.
func (g *Registry) removeRoom(id string, expect *Room) {
	g.mu.Lock()
	r, ok := g.rooms[id]
	if ok && r == expect {
		delete(g.rooms, id)
	} else {
		ok = false
	}
	g.mu.Unlock()
	if ok {
		r.Stop()
		log.Printf("room %s deleted (empty)", id)
	}
}

// ListRooms snapshots every live room, oldest first. The mutex is released
// before the rooms are queried so a room mid-removal cannot wedge the list.
func (g *Registry) ListRooms() []RoomView {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.Unlock()

	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		if v, ok := r.View(); ok {
			views = append(views, v)
		}
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].ID < views[j].ID
		}
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views
}

// Stats aggregates room counts for the monitoring route.
func (g *Registry) Stats() Stats {
	var s Stats
	for _, v := range g.ListRooms() {
		s.TotalRooms++
		if v.Status == StatusPlaying {
			s.ActiveGames++
		}
		s.TotalPlayers += len(v.Players)
	}
	return s
}

// CleanupIdleRooms removes rooms whose last connected player went away
// longer than maxIdle ago. Rooms emptied by explicit leaves are removed
// immediately through OnEmpty; this sweep catches seats reserved over HTTP
// whose players never connected. Returns the number of rooms removed.
func (g *Registry) CleanupIdleRooms(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for _, v := range g.ListRooms() {
		connected := 0
		for _, p := range v.Players {
			if p.Connected {
				connected++
			}
		}
		if connected == 0 && v.LastActive.Before(cutoff) {
			g.RemoveRoom(v.ID)
			removed++
		}
	}
	return removed
}
