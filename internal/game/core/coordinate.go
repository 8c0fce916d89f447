package core

import (
	"fmt"
	"math"
)

// Coordinate represents a cell on the map
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// WithinInclusive checks if the coordinate lies in [0,maxX]x[0,maxY]
func (c Coordinate) WithinInclusive(maxX, maxY int) bool {
	return c.X >= 0 && c.X <= maxX && c.Y >= 0 && c.Y <= maxY
}

// EuclideanDistanceTo calculates the straight-line distance to another coordinate
func (c Coordinate) EuclideanDistanceTo(other Coordinate) float64 {
	dx := float64(c.X - other.X)
	dy := float64(c.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ManhattanDistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) ManhattanDistanceTo(other Coordinate) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Neighbors returns the four cardinal neighbors in direction order (N, S, E, W)
func (c Coordinate) Neighbors() [4]Coordinate {
	var out [4]Coordinate
	for i, d := range Directions {
		out[i] = c.Move(d)
	}
	return out
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// Move returns a new coordinate moved one step in the given direction
func (c Coordinate) Move(direction Direction) Coordinate {
	return c.Add(direction.Offset())
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction represents a cardinal direction. The numeric order is the
// enumeration order used by the action enumerator.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions lists every direction a unit may move in, in enumeration order
var Directions = [...]Direction{North, South, East, West}

// directionVectors provides coordinate offsets for each direction. North is -Y.
var directionVectors = [...]Coordinate{
	North: {X: 0, Y: -1},
	South: {X: 0, Y: 1},
	East:  {X: 1, Y: 0},
	West:  {X: -1, Y: 0},
}

// Offset returns the unit step for the direction, or the zero offset for an unknown direction
func (d Direction) Offset() Coordinate {
	if d < North || d > West {
		return Coordinate{}
	}
	return directionVectors[d]
}

// Valid reports whether d is one of the four cardinal directions
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}
