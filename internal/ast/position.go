package ast

import "fmt"

// Position is a single point in the source text. Line and Column are 1-based
// when set by the engine; the zero value means "unknown".
type Position struct {
	Line   uint `json:"line"`
	Offset uint `json:"offset"`
	Column uint `json:"column"`
}

// IsValid reports whether the engine supplied this position.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionInfo is the half-open span [Start, End) covered by a node.
type PositionInfo struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsValid reports whether the span has a known start.
func (p PositionInfo) IsValid() bool {
	return p.Start.IsValid()
}

// Len returns the length of the span in bytes of the source text.
func (p PositionInfo) Len() uint {
	if p.End.Offset < p.Start.Offset {
		return 0
	}
	return p.End.Offset - p.Start.Offset
}
