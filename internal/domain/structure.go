package domain

import "time"

// Complexity grades a structure's lesson track.
type Complexity string

const (
	ComplexityBasic        Complexity = "Básico"
	ComplexityIntermediate Complexity = "Intermediário"
	ComplexityAdvanced     Complexity = "Avançado"
)

// Structure is a catalog entry shown on the structures index.
type Structure struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Complexity  Complexity `json:"complexity"`
	Lessons     int        `json:"lessons"`
	// Interactive is true for structures with a practice console.
	Interactive bool `json:"interactive"`
}

// Progress records a visitor's standing on one structure.
type Progress struct {
	StructureID string     `json:"structure_id"`
	Completed   bool       `json:"completed"`
	LastVisited *time.Time `json:"last_visited,omitempty"`
}
