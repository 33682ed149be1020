package game

// Player is one snake in a room. All fields are owned by the room actor;
// nothing outside the actor goroutine may touch them.
type Player struct {
	Nickname  string
	Body      []Cell // head first, contiguous
	Heading   Heading
	Score     int
	Connected bool

	pending Heading // requested heading, latched at the next tick
	slot    int     // spawn slot, stable for the player's lifetime
	joinSeq int     // join order, breaks score ties
}

func (p *Player) Head() Cell { return p.Body[0] }

// RequestHeading records a pending direction change. A request that exactly
// reverses the committed heading is dropped, which is the only input
// validation the server performs. The last accepted request before a tick
// boundary wins.
func (p *Player) RequestHeading(h Heading) bool {
	if h == p.Heading.Opposite() {
		return false
	}
	p.pending = h
	return true
}
