package gcode

import (
	"math"

	"github.com/Faultbox/gofff/internal/geom"
	"github.com/Faultbox/gofff/internal/pathorder"
)

// PlannerOptions carries the subset of config needed to turn an ordered
// layer of paths into a fully annotated LayerPlan.
type PlannerOptions struct {
	LayerIndex   int
	ZUm          int64
	StartPoint   geom.Point
	CombBoundary geom.PolygonSet

	ExtrusionWidthUm    int
	LayerThicknessUm    int
	FilamentDiameterUm  int
	ExtrusionMultiplier float64

	TravelSpeedMmM float64
	PrintSpeedMmM  float64

	AvoidCrossingPerimeters            bool
	MinimumTravelToCauseRetractionUm   int64
	MinimumExtrusionBeforeRetractionUm int64
	RetractionAmountUm                 int64
	RetractionZHopUm                   int64

	MinimumLayerTimeSeconds float64
	MinimumPrintingSpeedMmM float64

	FanSpeedMinPercent   int
	FanSpeedMaxPercent   int
	FirstLayerToAllowFan int
}

// Plan sequences paths (already ordered by pathorder.Order) into a
// LayerPlan: travel moves get retraction and a comb-aware straight-line
// check, extrude moves get their filament push computed from bead
// cross-section, and the whole layer is checked against
// MinimumLayerTimeSeconds before being returned. The fan speed move is
// reserved as the layer's first move but only filled in once time
// scaling is known, since how hard the fan needs to run depends on how
// much the print speed was slowed down to hit the minimum layer time.
func Plan(paths []pathorder.Path, opts PlannerOptions) LayerPlan {
	plan := LayerPlan{LayerIndex: opts.LayerIndex, ZUm: opts.ZUm}
	cursor := opts.StartPoint
	var extrudedSinceRetract int64
	retracted := false

	crossSectionAreaUm2 := float64(opts.ExtrusionWidthUm) * float64(opts.LayerThicknessUm)
	filamentAreaUm2 := math.Pi * math.Pow(float64(opts.FilamentDiameterUm)/2, 2)

	fanMoveIndex := len(plan.Moves)
	plan.Moves = append(plan.Moves, Move{Kind: MoveFanSpeed})

	lastType := pathorder.PathType(-1)
	for _, p := range paths {
		if len(p.Points) == 0 {
			continue
		}
		if p.Type != lastType {
			plan.Moves = append(plan.Moves, Move{Kind: MoveComment, Comment: "TYPE:" + pathTypeLabel(p.Type)})
			lastType = p.Type
		}
		dest := p.Points[0]
		travelDistUm := math.Sqrt(float64(cursor.DistanceSquared(dest)))

		if travelDistUm > 0 {
			avoidingCollision := opts.AvoidCrossingPerimeters && len(opts.CombBoundary) > 0
			inside := crossesFreely(cursor, dest, opts.CombBoundary)

			var waypoints []geom.Point
			if avoidingCollision && !inside {
				waypoints = combRoute(cursor, dest, opts.CombBoundary)
			}
			combed := (avoidingCollision && inside) || len(waypoints) > 0

			needsRetract := !combed &&
				int64(travelDistUm) > opts.MinimumTravelToCauseRetractionUm &&
				extrudedSinceRetract >= opts.MinimumExtrusionBeforeRetractionUm

			if needsRetract && !retracted {
				plan.Moves = append(plan.Moves, Move{Kind: MoveRetract, ExtrudeUm: -opts.RetractionAmountUm})
				retracted = true
				extrudedSinceRetract = 0
			}

			for _, wp := range waypoints {
				plan.Moves = append(plan.Moves, Move{
					Kind: MoveTravel, Point: wp, ZUm: opts.ZUm, HasZ: true,
					FeedrateMmM: opts.TravelSpeedMmM,
				})
			}
			plan.Moves = append(plan.Moves, Move{
				Kind: MoveTravel, Point: dest, ZUm: opts.ZUm, HasZ: true,
				FeedrateMmM: opts.TravelSpeedMmM,
			})

			if retracted {
				plan.Moves = append(plan.Moves, Move{Kind: MoveUnretract, ExtrudeUm: opts.RetractionAmountUm})
				retracted = false
			}
		}

		cursor = dest
		points := p.Points
		if p.Closed {
			points = append(points, p.Points[0])
		}
		for _, next := range points[1:] {
			segLenUm := math.Sqrt(float64(cursor.DistanceSquared(next)))
			extrudeUm := int64(segLenUm * crossSectionAreaUm2 / filamentAreaUm2 * opts.ExtrusionMultiplier)
			plan.Moves = append(plan.Moves, Move{
				Kind: MoveExtrude, Point: next, ZUm: opts.ZUm, HasZ: true,
				FeedrateMmM: opts.PrintSpeedMmM, ExtrudeUm: extrudeUm,
			})
			extrudedSinceRetract += extrudeUm
			cursor = next
		}
	}

	plan.EstimatedSeconds = estimateSeconds(plan.Moves)
	extrudeSpeedFactor := enforceMinimumLayerTime(&plan, opts.MinimumLayerTimeSeconds, opts.MinimumPrintingSpeedMmM)
	plan.Moves[fanMoveIndex].FanPercent = fanSpeedPercent(opts, extrudeSpeedFactor)
	return plan
}

// fanSpeedPercent picks the cooling fan duty cycle for the layer just
// planned: forced off below FirstLayerToAllowFan (the first layer or two
// need full bed adhesion, not a draft), otherwise ramped by how hard
// enforceMinimumLayerTime had to slow the print down. A layer barely
// slowed (extrudeSpeedFactor near 1) is already printing close to full
// speed and doesn't need much help cooling; one throttled to half speed
// or less is thin enough to need the fan at maximum.
func fanSpeedPercent(opts PlannerOptions, extrudeSpeedFactor float64) int {
	if opts.LayerIndex < opts.FirstLayerToAllowFan {
		return 0
	}
	if extrudeSpeedFactor <= 0.5 {
		return opts.FanSpeedMaxPercent
	}
	span := float64(opts.FanSpeedMaxPercent - opts.FanSpeedMinPercent)
	percent := float64(opts.FanSpeedMaxPercent) - (extrudeSpeedFactor-0.5)*2*span
	return int(math.Round(percent))
}

// pathTypeLabel maps a path's role to the feature-marker text following
// the ;TYPE: comment prefix.
func pathTypeLabel(t pathorder.PathType) string {
	switch t {
	case pathorder.TypeWallOuter:
		return "WALL-OUTER"
	case pathorder.TypeWallInner:
		return "WALL-INNER"
	case pathorder.TypeFill:
		return "FILL"
	case pathorder.TypeSkirt:
		return "SKIRT"
	case pathorder.TypeSupport:
		return "SUPPORT"
	case pathorder.TypeRaft:
		return "RAFT"
	case pathorder.TypeWipeTower:
		return "WIPE-TOWER"
	default:
		return "WALL-OUTER"
	}
}

// crossesFreely reports whether the straight line from a to b stays
// inside comb (or comb is empty, meaning combing is disabled/irrelevant
// for this part). The midpoint is the cheapest usable proxy for "the
// whole segment" without a full segment-vs-polygon intersection test.
func crossesFreely(a, b geom.Point, comb geom.PolygonSet) bool {
	if len(comb) == 0 {
		return true
	}
	mid := geom.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	for _, poly := range comb {
		if geom.PointInPolygon(mid, poly) {
			return true
		}
	}
	return false
}

// combRoute routes a travel from a to b along whichever comb boundary
// polygon sits nearest both endpoints, instead of a straight line that
// would leave the printed part and cross open air. It walks the
// polygon's own vertex ring between the vertices nearest a and b,
// picking the shorter of the two arcs — the same nearest-candidate
// approximation the rest of this package uses in place of a true
// visibility graph (pathorder.Order, slicer's chain repair).
func combRoute(a, b geom.Point, boundary geom.PolygonSet) []geom.Point {
	poly, ok := nearestBoundaryPolygon(a, b, boundary)
	if !ok || len(poly) < 3 {
		return nil
	}
	ia := nearestVertexIndex(poly, a)
	ib := nearestVertexIndex(poly, b)
	if ia == ib {
		return nil
	}
	return boundaryArc(poly, ia, ib)
}

func nearestBoundaryPolygon(a, b geom.Point, boundary geom.PolygonSet) (geom.Polygon, bool) {
	best := -1
	var bestDist int64
	for i, poly := range boundary {
		for _, v := range poly {
			if d := a.DistanceSquared(v); best == -1 || d < bestDist {
				best, bestDist = i, d
			}
			if d := b.DistanceSquared(v); d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	if best == -1 {
		return nil, false
	}
	return boundary[best], true
}

func nearestVertexIndex(poly geom.Polygon, p geom.Point) int {
	best := 0
	bestDist := int64(-1)
	for i, v := range poly {
		if d := p.DistanceSquared(v); bestDist == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// boundaryArc walks poly's vertex ring from ia to ib, choosing whichever
// direction visits fewer vertices.
func boundaryArc(poly geom.Polygon, ia, ib int) []geom.Point {
	n := len(poly)
	forward := (ib - ia + n) % n
	backward := (ia - ib + n) % n

	var arc []geom.Point
	if forward <= backward {
		for i := ia; i != ib; i = (i + 1) % n {
			arc = append(arc, poly[i])
		}
	} else {
		for i := ia; i != ib; i = (i - 1 + n) % n {
			arc = append(arc, poly[i])
		}
	}
	return append(arc, poly[ib])
}

func estimateSeconds(moves []Move) float64 {
	var seconds float64
	var cursor geom.Point
	have := false
	for _, m := range moves {
		if m.Kind != MoveTravel && m.Kind != MoveExtrude {
			continue
		}
		if have && m.FeedrateMmM > 0 {
			distUm := math.Sqrt(float64(cursor.DistanceSquared(m.Point)))
			distMm := distUm / 1000
			seconds += distMm / (m.FeedrateMmM / 60)
		}
		cursor, have = m.Point, true
	}
	return seconds
}

// enforceMinimumLayerTime scales every print-speed move's feedrate down
// (never below MinimumPrintingSpeedMmM) so the layer takes at least
// minimumSeconds, giving the previous layer time to cool, and returns
// the uniform scale factor EstimatedSeconds/minimumSeconds it applied
// before clamping (1 if no scaling was needed) so the caller can size the
// cooling fan to match. Moves clamped at minimumSpeedMmM are slowed by
// less than that factor, and the layer can then stay shorter than
// minimumSeconds.
func enforceMinimumLayerTime(plan *LayerPlan, minimumSeconds, minimumSpeedMmM float64) float64 {
	if plan.EstimatedSeconds >= minimumSeconds || plan.EstimatedSeconds <= 0 {
		return 1
	}
	scale := plan.EstimatedSeconds / minimumSeconds
	for i, m := range plan.Moves {
		if m.Kind != MoveExtrude || m.FeedrateMmM <= 0 {
			continue
		}
		scaled := m.FeedrateMmM * scale
		if scaled < minimumSpeedMmM {
			scaled = minimumSpeedMmM
		}
		plan.Moves[i].FeedrateMmM = scaled
	}
	plan.EstimatedSeconds = estimateSeconds(plan.Moves)
	return scale
}
