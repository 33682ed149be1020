package game

// StepResult reports what one tick did, for logging and tests.
type StepResult struct {
	Eaten  []string // players that consumed food this tick
	Resets []string // players reverted to spawn this tick
}

// Step advances the simulation by one tick.
//
// All new head positions are computed from the pre-tick body snapshot, so
// moves are simultaneous: a player cannot dodge inside the tick based on
// where someone else ended up. Collisions and boundary exits revert the
// snake to its spawn slot without touching its score; the round keeps
// running until the countdown or the host ends it.
func (a *Arena) Step() StepResult {
	a.Tick++
	players := a.PlayersInJoinOrder()
	if len(players) == 0 {
		return StepResult{}
	}

	// Latch pending headings. Everything below uses the committed value.
	for _, p := range players {
		p.Heading = p.pending
	}

	// Pre-tick snapshot.
	occupied := map[Cell]bool{}
	preHeads := make([]Cell, len(players))
	for i, p := range players {
		preHeads[i] = p.Head()
		for _, c := range p.Body {
			occupied[c] = true
		}
	}

	newHead := make([]Cell, len(players))
	reset := make([]bool, len(players))
	for i, p := range players {
		h := p.Head().Add(p.Heading.Delta())
		if a.Rules.Boundary == BoundaryWrap {
			h.X = mod(h.X, a.Rules.GridWidth)
			h.Y = mod(h.Y, a.Rules.GridHeight)
		} else if h.X < 0 || h.Y < 0 || h.X >= a.Rules.GridWidth || h.Y >= a.Rules.GridHeight {
			reset[i] = true
		}
		newHead[i] = h
	}

	// Contact with any pre-tick body cell resets the mover; hitting a
	// pre-tick head is a draw that resets both snakes.
	for i := range players {
		if reset[i] {
			continue
		}
		if occupied[newHead[i]] {
			reset[i] = true
			for j := range players {
				if j != i && preHeads[j] == newHead[i] {
					reset[j] = true
				}
			}
		}
	}

	// Two heads entering the same cell is also a draw.
	for i := 0; i < len(players); i++ {
		if reset[i] {
			continue
		}
		for j := i + 1; j < len(players); j++ {
			if !reset[j] && newHead[i] == newHead[j] {
				reset[i] = true
				reset[j] = true
			}
		}
	}

	var res StepResult
	for i, p := range players {
		if reset[i] {
			a.respawn(p)
			res.Resets = append(res.Resets, p.Nickname)
			continue
		}
		if fi := cellIndex(a.Food, newHead[i]); fi >= 0 {
			a.Food = append(a.Food[:fi], a.Food[fi+1:]...)
			p.Score += a.Rules.FoodValue
			p.Body = append([]Cell{newHead[i]}, p.Body...)
			res.Eaten = append(res.Eaten, p.Nickname)
		} else {
			p.Body = append([]Cell{newHead[i]}, p.Body[:len(p.Body)-1]...)
		}
	}

	// Replacement food spawns against post-move occupancy.
	a.restockFood()
	return res
}

func cellIndex(cells []Cell, c Cell) int {
	for i, cur := range cells {
		if cur == c {
			return i
		}
	}
	return -1
}
