package gcode

import (
	"testing"

	"github.com/Faultbox/gofff/internal/geom"
	"github.com/Faultbox/gofff/internal/pathorder"
)

func basePlannerOptions() PlannerOptions {
	return PlannerOptions{
		ZUm:                 200,
		ExtrusionWidthUm:    400,
		LayerThicknessUm:    200,
		FilamentDiameterUm:  1750,
		ExtrusionMultiplier: 1,
		TravelSpeedMmM:      9000,
		PrintSpeedMmM:       1800,
		FanSpeedMaxPercent:  100,
	}
}

func TestPlanEmitsExtrudeMovesForClosedLoop(t *testing.T) {
	loop := pathorder.Path{
		Points: []geom.Point{{0, 0}, {10000, 0}, {10000, 10000}, {0, 10000}},
		Closed: true,
	}
	plan := Plan([]pathorder.Path{loop}, basePlannerOptions())

	extrudeCount := 0
	for _, m := range plan.Moves {
		if m.Kind == MoveExtrude {
			extrudeCount++
			if m.ExtrudeUm <= 0 {
				t.Errorf("expected positive extrusion amount, got %d", m.ExtrudeUm)
			}
		}
	}
	if extrudeCount != 4 {
		t.Errorf("expected 4 extrude segments closing the loop, got %d", extrudeCount)
	}
}

func TestPlanRetractsOnLongTravel(t *testing.T) {
	opts := basePlannerOptions()
	opts.MinimumTravelToCauseRetractionUm = 1000
	opts.RetractionAmountUm = 800

	a := pathorder.Path{Points: []geom.Point{{0, 0}, {100, 0}}}
	b := pathorder.Path{Points: []geom.Point{{50000, 50000}, {50100, 50000}}}

	plan := Plan([]pathorder.Path{a, b}, opts)

	sawRetract := false
	for _, m := range plan.Moves {
		if m.Kind == MoveRetract {
			sawRetract = true
		}
	}
	if !sawRetract {
		t.Error("expected a retraction before the long travel between paths")
	}
}

func TestPlanEnforcesMinimumLayerTime(t *testing.T) {
	opts := basePlannerOptions()
	opts.MinimumLayerTimeSeconds = 1000
	opts.MinimumPrintingSpeedMmM = 300
	opts.PrintSpeedMmM = 6000

	loop := pathorder.Path{
		Points: []geom.Point{{0, 0}, {1000, 0}, {1000, 1000}, {0, 1000}},
		Closed: true,
	}
	plan := Plan([]pathorder.Path{loop}, opts)

	for _, m := range plan.Moves {
		if m.Kind == MoveExtrude && m.FeedrateMmM > opts.PrintSpeedMmM {
			t.Errorf("expected feedrate to be reduced, got %v > %v", m.FeedrateMmM, opts.PrintSpeedMmM)
		}
	}
	// A few millimeters of extrusion cannot take 1000s even at the
	// minimum printing speed, so every extrude move ends up clamped there.
	for _, m := range plan.Moves {
		if m.Kind == MoveExtrude && m.FeedrateMmM != opts.MinimumPrintingSpeedMmM {
			t.Errorf("expected slowed extrude moves to stop at the minimum printing speed %v, got %v", opts.MinimumPrintingSpeedMmM, m.FeedrateMmM)
		}
	}
}

func TestPlanEmitsTypeMarkerOnEachTypeChange(t *testing.T) {
	outer := pathorder.Path{Points: []geom.Point{{0, 0}, {1000, 0}}, Type: pathorder.TypeWallOuter}
	inner := pathorder.Path{Points: []geom.Point{{2000, 0}, {3000, 0}}, Type: pathorder.TypeWallInner}
	innerAgain := pathorder.Path{Points: []geom.Point{{4000, 0}, {5000, 0}}, Type: pathorder.TypeWallInner}

	plan := Plan([]pathorder.Path{outer, inner, innerAgain}, basePlannerOptions())

	var markers []string
	for _, m := range plan.Moves {
		if m.Kind == MoveComment {
			markers = append(markers, m.Comment)
		}
	}
	want := []string{"TYPE:WALL-OUTER", "TYPE:WALL-INNER"}
	if len(markers) != len(want) {
		t.Fatalf("expected %d type markers (one per run of same-typed paths), got %v", len(want), markers)
	}
	for i, w := range want {
		if markers[i] != w {
			t.Errorf("marker %d: expected %q, got %q", i, w, markers[i])
		}
	}
}

func TestPlanFanBelowFirstLayerToAllowFan(t *testing.T) {
	opts := basePlannerOptions()
	opts.LayerIndex = 0
	opts.FirstLayerToAllowFan = 2
	opts.FanSpeedMinPercent = 0
	opts.FanSpeedMaxPercent = 100

	plan := Plan(nil, opts)
	if plan.Moves[0].Kind != MoveFanSpeed || plan.Moves[0].FanPercent != 0 {
		t.Errorf("expected fan off before FirstLayerToAllowFan, got %+v", plan.Moves[0])
	}
}

func TestPlanFanRampsWithTimeScaling(t *testing.T) {
	opts := basePlannerOptions()
	opts.FanSpeedMinPercent = 20
	opts.FanSpeedMaxPercent = 100
	opts.MinimumLayerTimeSeconds = 1000
	opts.MinimumPrintingSpeedMmM = 300

	loop := pathorder.Path{
		Points: []geom.Point{{0, 0}, {1000, 0}, {1000, 1000}, {0, 1000}},
		Closed: true,
	}
	plan := Plan([]pathorder.Path{loop}, opts)

	// A tiny loop needs heavy slowdown to hit a 1000s minimum layer
	// time, so extrudeSpeedFactor lands well under 0.5 and the fan
	// should be pinned at max, not the un-scaled default.
	if plan.Moves[0].Kind != MoveFanSpeed || plan.Moves[0].FanPercent != opts.FanSpeedMaxPercent {
		t.Errorf("expected max fan speed for a heavily slowed layer, got %+v", plan.Moves[0])
	}
}

func TestPlanFanNotForcedWhenNoTimeScalingApplies(t *testing.T) {
	opts := basePlannerOptions()
	opts.FanSpeedMinPercent = 20
	opts.FanSpeedMaxPercent = 100
	// No MinimumLayerTimeSeconds set, so enforceMinimumLayerTime never
	// scales anything and extrudeSpeedFactor stays 1.
	plan := Plan(nil, opts)
	if plan.Moves[0].FanPercent != opts.FanSpeedMinPercent {
		t.Errorf("expected min fan speed when no slowdown was needed, got %d", plan.Moves[0].FanPercent)
	}
}

func TestPlanSkipsRetractionWhenCombingStaysInsideBoundary(t *testing.T) {
	opts := basePlannerOptions()
	opts.AvoidCrossingPerimeters = true
	opts.MinimumTravelToCauseRetractionUm = 100
	opts.CombBoundary = geom.PolygonSet{{
		{X: -10000, Y: -10000}, {X: 10000, Y: -10000}, {X: 10000, Y: 10000}, {X: -10000, Y: 10000},
	}}

	a := pathorder.Path{Points: []geom.Point{{0, 0}, {100, 0}}}
	b := pathorder.Path{Points: []geom.Point{{5000, 5000}, {5100, 5000}}}
	plan := Plan([]pathorder.Path{a, b}, opts)

	for _, m := range plan.Moves {
		if m.Kind == MoveRetract {
			t.Error("expected no retraction for a travel combed entirely inside the boundary")
		}
	}
}

func TestPlanRoutesAroundBoundaryWhenTravelLeavesIt(t *testing.T) {
	opts := basePlannerOptions()
	opts.AvoidCrossingPerimeters = true
	// Two disjoint comb regions (as two separate parts on a layer would
	// produce): a straight line between them necessarily crosses the
	// open gap in between, which crossesFreely's midpoint check reports
	// as leaving the boundary.
	opts.CombBoundary = geom.PolygonSet{
		{{X: 0, Y: 0}, {X: 4000, Y: 0}, {X: 4000, Y: 4000}, {X: 0, Y: 4000}},
		{{X: 6000, Y: 6000}, {X: 10000, Y: 6000}, {X: 10000, Y: 10000}, {X: 6000, Y: 10000}},
	}

	a := pathorder.Path{Points: []geom.Point{{2000, 2000}, {2100, 2000}}}
	b := pathorder.Path{Points: []geom.Point{{8000, 8000}, {8100, 8000}}}
	plan := Plan([]pathorder.Path{a, b}, opts)

	travels := 0
	for _, m := range plan.Moves {
		if m.Kind == MoveTravel {
			travels++
		}
	}
	if travels < 3 {
		t.Errorf("expected combing to insert at least one waypoint alongside the final destination, got %d travel moves", travels)
	}
}
