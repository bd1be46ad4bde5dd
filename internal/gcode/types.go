// Package gcode implements GCodePlanner (travel/retraction/fan
// scheduling over an ordered layer) and GCodeEmitter (rendering a
// planned move list into a specific printer dialect's text format).
package gcode

import "github.com/Faultbox/gofff/internal/geom"

// Dialect selects the target firmware's G-code flavor. Kept as a plain
// enum switched over inside the emitter rather than as a set of
// implementations behind an interface, so the emitter has one code path
// per command instead of one type per dialect.
type Dialect int

const (
	DialectRepRap Dialect = iota
	DialectUltiGCode
	DialectBFB
	DialectMakerBot
	DialectMach3
)

// MoveKind distinguishes an extruding move from a bare travel move.
type MoveKind int

const (
	MoveTravel MoveKind = iota
	MoveExtrude
	MoveRetract
	MoveUnretract
	MoveToolChange
	MoveFanSpeed
	MoveComment
)

// Move is one planned step of a layer: a single G-code line's worth of
// intent, still independent of the target dialect's exact syntax.
type Move struct {
	Kind MoveKind

	Point       geom.Point
	ZUm         int64
	HasZ        bool
	FeedrateMmM float64

	// ExtrudeUm is the filament length to push for this move (0 for
	// travel), already accounting for ExtrusionMultiplier.
	ExtrudeUm int64

	ToolIndex  int
	FanPercent int
	Comment    string
}

// LayerPlan is one layer's fully ordered, retraction- and fan-annotated
// move list, ready for the emitter.
type LayerPlan struct {
	LayerIndex       int
	ZUm              int64
	Moves            []Move
	EstimatedSeconds float64
}
