// Package session holds the mutable state a print run threads through
// the pipeline explicitly, in place of the package-level globals a
// smaller tool might reach for: the active extruder, per-object file
// counters, and cumulative print statistics.
package session

import "github.com/Faultbox/gofff/internal/mesh"

// Session is created once per invocation and passed by pointer through
// every pipeline stage that needs to observe or update shared state.
type Session struct {
	// ActiveExtruder starts at -1. Nothing in this module updates it:
	// cmd/slicer's interleaved writer tracks the active extruder itself.
	ActiveExtruder int

	// ObjectIndex counts which object (0-based) is currently being
	// processed in a multi-object plate, resolving the Open Question of
	// distinguishing a run's first vs. subsequent output file: object 0
	// gets the full start code, later objects get no start code.
	ObjectIndex int

	// FilamentLengthUm and PrintTimeSeconds start at zero and nothing in
	// this module updates them; the Emitter keeps its own totals.
	FilamentLengthUm int64
	PrintTimeSeconds float64
}

// New returns a Session ready for the first object of a run.
func New() *Session {
	return &Session{ActiveExtruder: -1}
}

// NextObject advances to the next object on the plate, resetting nothing
// but ObjectIndex — filament/time totals and ActiveExtruder are
// cumulative across the whole plate.
func (s *Session) NextObject() {
	s.ObjectIndex++
}

// IsFirstObject reports whether the run is still on its first object,
// the point at which the full start sequence (bed leveling, priming line)
// belongs in the G-code; later objects get none.
func (s *Session) IsFirstObject() bool {
	return s.ObjectIndex == 0
}

// LiftAndTravelUm computes the Z-hop height and destination used when
// moving the nozzle to a new, physically separate object: lift clear of
// both objects' tallest printed layer so the nozzle cannot drag across
// either one.
func LiftAndTravelUm(fromBounds, toBounds [2]mesh.Point3, hopUm int64) (liftZUm int64, destination mesh.Point3) {
	maxZ := fromBounds[1].Z
	if toBounds[1].Z > maxZ {
		maxZ = toBounds[1].Z
	}
	return maxZ + hopUm, mesh.Point3{
		X: (toBounds[0].X + toBounds[1].X) / 2,
		Y: (toBounds[0].Y + toBounds[1].Y) / 2,
		Z: maxZ + hopUm,
	}
}
