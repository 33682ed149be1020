package game

import "time"

// Boundary selects what happens when a head leaves the grid.
type Boundary string

const (
	BoundaryReset Boundary = "reset" // snake respawns at its slot
	BoundaryWrap  Boundary = "wrap"  // toroidal arena
)

// Rules holds the per-room simulation tuning. Zero or nonsense values are
// repaired by SanitizeRules before a room is created.
type Rules struct {
	TickMs      int
	GridWidth   int
	GridHeight  int
	StartLength int
	FoodValue   int
	FoodCount   int
	GameSeconds int
	Boundary    Boundary
}

func DefaultRules() Rules {
	return Rules{
		TickMs:      DefaultTickMs,
		GridWidth:   DefaultGridWidth,
		GridHeight:  DefaultGridHeight,
		StartLength: DefaultStartLength,
		FoodValue:   DefaultFoodValue,
		FoodCount:   DefaultFoodCount,
		GameSeconds: DefaultGameSeconds,
		Boundary:    BoundaryReset,
	}
}

// SanitizeRules clamps tuning into ranges where every spawn slot fits on
// the grid and the tick loop stays schedulable.
func SanitizeRules(r Rules) Rules {
	if r.TickMs < 20 {
		r.TickMs = 20
	}
	if r.TickMs > 1000 {
		r.TickMs = 1000
	}
	if r.StartLength < 2 {
		r.StartLength = 2
	}
	if r.StartLength > 10 {
		r.StartLength = 10
	}
	// Slot heads sit at quarter points with bodies trailing toward the
	// nearest edge, so each dimension needs four start lengths of space.
	minDim := 4 * r.StartLength
	if minDim < 10 {
		minDim = 10
	}
	if r.GridWidth < minDim {
		r.GridWidth = minDim
	}
	if r.GridHeight < minDim {
		r.GridHeight = minDim
	}
	if r.FoodValue < 1 {
		r.FoodValue = 1
	}
	if r.FoodCount < 1 {
		r.FoodCount = 1
	}
	if r.FoodCount > 10 {
		r.FoodCount = 10
	}
	if r.GameSeconds < 10 {
		r.GameSeconds = 10
	}
	if r.Boundary != BoundaryWrap {
		r.Boundary = BoundaryReset
	}
	return r
}

func (r Rules) TickInterval() time.Duration {
	return time.Duration(r.TickMs) * time.Millisecond
}

func (r Rules) GameDuration() time.Duration {
	return time.Duration(r.GameSeconds) * time.Second
}
