package core

// Occupancy indexes every occupied cell of a world state. Units occupy their
// cell whether alive or dead; obstacles occupy theirs permanently.
type Occupancy struct {
	cells map[Coordinate]int
}

// NewOccupancy creates an empty index sized for n entities
func NewOccupancy(n int) *Occupancy {
	return &Occupancy{cells: make(map[Coordinate]int, n)}
}

// Add marks c occupied and reports whether it was free before
func (o *Occupancy) Add(c Coordinate) bool {
	o.cells[c]++
	return o.cells[c] == 1
}

// IsOpen reports whether nothing occupies c
func (o *Occupancy) IsOpen(c Coordinate) bool {
	return o.cells[c] == 0
}

// BlockedNeighbors counts the cardinal neighbours of c that are occupied (0-4)
func (o *Occupancy) BlockedNeighbors(c Coordinate) int {
	blocked := 0
	for _, n := range c.Neighbors() {
		if !o.IsOpen(n) {
			blocked++
		}
	}
	return blocked
}

// Len returns the number of distinct occupied cells
func (o *Occupancy) Len() int {
	return len(o.cells)
}
