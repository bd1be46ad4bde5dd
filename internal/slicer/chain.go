package slicer

import "github.com/Faultbox/gofff/internal/geom"

// chain links segments into closed polygons. Segment endpoints from
// separate triangles that share a mesh edge land on (numerically)
// identical points, so exact matching handles the common case; anything
// left unmatched within tolerance is force-closed and counted as a
// repaired open contour, matching the tolerant handling MeshIndex
// already gives non-watertight input.
//
// Segments are treated as undirected while chaining: a triangle wound
// opposite its neighbors (still a legal, watertight mesh — winding only
// determines a face's outward normal, not which of its edges border
// which faces) produces a segment whose Start/End are swapped relative
// to the segments around it. Matching only Start against the cursor
// would miss that segment entirely and break the contour open, so both
// endpoints are indexed and a segment found by its End is spliced in
// reversed.
func chain(segments []Segment, toleranceUm int64) (contours []geom.Polygon, openCount int) {
	if len(segments) == 0 {
		return nil, 0
	}

	byStart := make(map[geom.Point][]int, len(segments))
	byEnd := make(map[geom.Point][]int, len(segments))
	used := make([]bool, len(segments))
	for i, s := range segments {
		byStart[s.Start] = append(byStart[s.Start], i)
		byEnd[s.End] = append(byEnd[s.End], i)
	}

	pop := func(index map[geom.Point][]int, pt geom.Point) (int, bool) {
		for _, idx := range index[pt] {
			if !used[idx] {
				return idx, true
			}
		}
		return 0, false
	}

	for i := range segments {
		if used[i] {
			continue
		}
		used[i] = true
		poly := geom.Polygon{segments[i].Start}
		cursor := segments[i].End

		for {
			var next int
			var reversed, ok bool
			if idx, found := pop(byStart, cursor); found {
				next, ok = idx, true
			} else if idx, found := pop(byEnd, cursor); found {
				next, reversed, ok = idx, true, true
			} else if idx, rev, found := nearestUnused(segments, used, cursor, toleranceUm); found {
				next, reversed, ok = idx, rev, true
			}
			if !ok {
				openCount++
				break
			}
			used[next] = true
			if reversed {
				poly = append(poly, segments[next].End)
				cursor = segments[next].Start
			} else {
				poly = append(poly, segments[next].Start)
				cursor = segments[next].End
			}
			if closeEnough(cursor, poly[0], toleranceUm) {
				break
			}
		}

		if len(poly) >= 3 {
			contours = append(contours, poly)
		}
	}

	return contours, openCount
}

// nearestUnused falls back to a tolerance search when no unused segment
// starts or ends exactly at from, checking both endpoints of every
// remaining segment and reporting whether the nearest one matched by
// its Start (forward) or its End (reversed).
func nearestUnused(segments []Segment, used []bool, from geom.Point, toleranceUm int64) (idx int, reversed bool, ok bool) {
	if toleranceUm <= 0 {
		return 0, false, false
	}
	best := -1
	var bestDist int64
	limit := toleranceUm * toleranceUm
	for i, s := range segments {
		if used[i] {
			continue
		}
		if d := from.DistanceSquared(s.Start); d <= limit && (best == -1 || d < bestDist) {
			best, bestDist, reversed = i, d, false
		}
		if d := from.DistanceSquared(s.End); d <= limit && (best == -1 || d < bestDist) {
			best, bestDist, reversed = i, d, true
		}
	}
	if best == -1 {
		return 0, false, false
	}
	return best, reversed, true
}

func closeEnough(a, b geom.Point, toleranceUm int64) bool {
	if a == b {
		return true
	}
	if toleranceUm <= 0 {
		return false
	}
	return a.DistanceSquared(b) <= toleranceUm*toleranceUm
}
