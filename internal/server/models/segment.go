package models

// Segment is one source unit and its translation. Position is the 0-based
// index the segment had in the uploaded document.
type Segment struct {
	ID          string
	ProjectID   string
	Position    int
	Source      string
	Translation string
}
