package game

import (
	"encoding/json"
	"fmt"
)

// Cell is one grid square of the arena.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) Add(d Cell) Cell { return Cell{c.X + d.X, c.Y + d.Y} }

// Heading is the movement direction a snake advances in each tick.
type Heading int

const (
	HeadingUp Heading = iota
	HeadingDown
	HeadingLeft
	HeadingRight
)

var headingNames = map[Heading]string{
	HeadingUp:    "up",
	HeadingDown:  "down",
	HeadingLeft:  "left",
	HeadingRight: "right",
}

// Delta returns the unit step for one tick of movement.
func (h Heading) Delta() Cell {
	switch h {
	case HeadingUp:
		return Cell{0, -1}
	case HeadingDown:
		return Cell{0, 1}
	case HeadingLeft:
		return Cell{-1, 0}
	default:
		return Cell{1, 0}
	}
}

// Opposite returns the exact reverse direction.
func (h Heading) Opposite() Heading {
	switch h {
	case HeadingUp:
		return HeadingDown
	case HeadingDown:
		return HeadingUp
	case HeadingLeft:
		return HeadingRight
	default:
		return HeadingLeft
	}
}

func (h Heading) String() string {
	if s, ok := headingNames[h]; ok {
		return s
	}
	return "right"
}

// ParseHeading maps the wire spelling to a Heading. The second return is
// false for anything that is not one of up/down/left/right.
func ParseHeading(s string) (Heading, bool) {
	for h, name := range headingNames {
		if s == name {
			return h, true
		}
	}
	return HeadingRight, false
}

func (h Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Heading) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseHeading(s)
	if !ok {
		return fmt.Errorf("unknown heading %q", s)
	}
	*h = parsed
	return nil
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
