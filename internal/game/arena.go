package game

import (
	"math/rand"
)

// Arena is the authoritative board state for one room: every snake, every
// food cell and the tick counter. It is owned exclusively by the room
// actor and mutated only between command dispatches.
type Arena struct {
	Rules Rules
	Tick  uint64
	Food  []Cell

	players map[string]*Player
	order   []string // nicknames in join order
	nextSeq int
	rng     *rand.Rand
}

func NewArena(rules Rules, seed int64) *Arena {
	return &Arena{
		Rules:   SanitizeRules(rules),
		players: map[string]*Player{},
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (a *Arena) Player(nickname string) *Player { return a.players[nickname] }

func (a *Arena) PlayerCount() int { return len(a.players) }

// PlayersInJoinOrder returns the live players ordered by join time.
func (a *Arena) PlayersInJoinOrder() []*Player {
	out := make([]*Player, 0, len(a.order))
	for _, nick := range a.order {
		out = append(out, a.players[nick])
	}
	return out
}

// AddPlayer seats a new snake at the lowest free spawn slot.
func (a *Arena) AddPlayer(nickname string, connected bool) (*Player, error) {
	if nickname == "" {
		return nil, ErrEmptyName
	}
	if _, ok := a.players[nickname]; ok {
		return nil, ErrNicknameTaken
	}
	if len(a.players) >= RoomMaxPlayers {
		return nil, ErrRoomFull
	}
	p := &Player{
		Nickname:  nickname,
		Connected: connected,
		slot:      a.freeSlot(),
		joinSeq:   a.nextSeq,
	}
	a.nextSeq++
	a.respawn(p)
	a.players[nickname] = p
	a.order = append(a.order, nickname)
	return p, nil
}

// RemovePlayer deletes the snake entirely. Returns false if the nickname
// was not present.
func (a *Arena) RemovePlayer(nickname string) bool {
	if _, ok := a.players[nickname]; !ok {
		return false
	}
	delete(a.players, nickname)
	for i, n := range a.order {
		if n == nickname {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

func (a *Arena) freeSlot() int {
	for slot := 0; slot < RoomMaxPlayers; slot++ {
		taken := false
		for _, p := range a.players {
			if p.slot == slot {
				taken = true
				break
			}
		}
		if !taken {
			return slot
		}
	}
	return 0
}

// spawnFor computes the deterministic body and heading for a slot. Heads
// sit at the quadrant quarter points with the body trailing toward the
// nearer vertical edge, so no two slots can overlap at spawn.
func (a *Arena) spawnFor(slot int) ([]Cell, Heading) {
	w, h := a.Rules.GridWidth, a.Rules.GridHeight
	heading := HeadingRight
	head := Cell{w / 4, h / 4}
	switch slot {
	case 1:
		head = Cell{3 * w / 4, h / 4}
		heading = HeadingLeft
	case 2:
		head = Cell{w / 4, 3 * h / 4}
	case 3:
		head = Cell{3 * w / 4, 3 * h / 4}
		heading = HeadingLeft
	}
	body := make([]Cell, a.Rules.StartLength)
	back := heading.Opposite().Delta()
	c := head
	for i := range body {
		body[i] = c
		c = c.Add(back)
	}
	return body, heading
}

// respawn reverts a snake to its slot spawn state. Score is untouched.
// Food that landed on the spawn cells since the last reset is removed so
// it never hides under the body; the tick's restock replaces it.
func (a *Arena) respawn(p *Player) {
	body, heading := a.spawnFor(p.slot)
	p.Body = body
	p.Heading = heading
	p.pending = heading
	a.dropFoodUnder(body)
}

func (a *Arena) dropFoodUnder(body []Cell) {
	if len(a.Food) == 0 {
		return
	}
	covered := map[Cell]bool{}
	for _, c := range body {
		covered[c] = true
	}
	kept := a.Food[:0]
	for _, c := range a.Food {
		if !covered[c] {
			kept = append(kept, c)
		}
	}
	a.Food = kept
}

// ResetBoard respawns every snake, zeroes scores and restocks food. Called
// when a round starts.
func (a *Arena) ResetBoard() {
	a.Tick = 0
	for _, p := range a.players {
		a.respawn(p)
		p.Score = 0
	}
	a.Food = nil
	a.restockFood()
}

// restockFood spawns food until the configured cardinality is reached or
// the board has no free cell left.
func (a *Arena) restockFood() {
	for len(a.Food) < a.Rules.FoodCount {
		c, ok := a.randomFreeCell()
		if !ok {
			return
		}
		a.Food = append(a.Food, c)
	}
}

// randomFreeCell picks uniformly among cells not covered by any snake or
// existing food.
func (a *Arena) randomFreeCell() (Cell, bool) {
	occupied := map[Cell]bool{}
	for _, p := range a.players {
		for _, c := range p.Body {
			occupied[c] = true
		}
	}
	for _, c := range a.Food {
		occupied[c] = true
	}
	free := make([]Cell, 0, a.Rules.GridWidth*a.Rules.GridHeight-len(occupied))
	for y := 0; y < a.Rules.GridHeight; y++ {
		for x := 0; x < a.Rules.GridWidth; x++ {
			c := Cell{x, y}
			if !occupied[c] {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return Cell{}, false
	}
	return free[a.rng.Intn(len(free))], true
}
