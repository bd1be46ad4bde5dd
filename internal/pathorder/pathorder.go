// Package pathorder implements PathOrderOptimizer: sequencing a layer's
// printable paths (walls, skin, infill lines) to minimize travel moves,
// using a greedy nearest-neighbor walk with a per-path best-start-point
// choice for closed loops.
package pathorder

import "github.com/Faultbox/gofff/internal/geom"

// PathType classifies a path for the ;TYPE: feature marker GCodeEmitter
// writes ahead of it.
type PathType int

const (
	TypeWallOuter PathType = iota
	TypeWallInner
	TypeFill
	TypeSkirt
	TypeSupport
	TypeRaft
	TypeWipeTower
)

// Path is one printable move: an open polyline (infill/skin line) or a
// closed loop (a perimeter wall), in print order.
type Path struct {
	Points []geom.Point
	Closed bool
	Type   PathType
}

// startCandidates returns every point a Closed path could legally start
// from (any vertex, since a loop has no fixed start), or just the two
// endpoints for an open path.
func (p Path) startCandidates() []int {
	if !p.Closed {
		return []int{0, len(p.Points) - 1}
	}
	idxs := make([]int, len(p.Points))
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

// rotatedFrom returns p's points reordered to start at index i (for a
// closed loop) or reversed (for an open path starting from its far end).
func (p Path) rotatedFrom(i int) []geom.Point {
	if !p.Closed {
		if i == 0 {
			return p.Points
		}
		reversed := make([]geom.Point, len(p.Points))
		for j, v := range p.Points {
			reversed[len(p.Points)-1-j] = v
		}
		return reversed
	}
	n := len(p.Points)
	out := make([]geom.Point, n)
	for j := 0; j < n; j++ {
		out[j] = p.Points[(i+j)%n]
	}
	return out
}

// Order greedily sequences paths starting from startUm, always choosing
// the unvisited path (and, for closed loops, the specific start vertex
// on it) nearest the current position.
func Order(paths []Path, startUm geom.Point) []Path {
	remaining := make([]Path, len(paths))
	copy(remaining, paths)
	used := make([]bool, len(remaining))

	ordered := make([]Path, 0, len(remaining))
	cursor := startUm

	for range remaining {
		bestPath, bestStart, bestDist := -1, -1, int64(-1)
		for i, p := range remaining {
			if used[i] || len(p.Points) == 0 {
				continue
			}
			for _, c := range p.startCandidates() {
				d := cursor.DistanceSquared(p.Points[c])
				if bestPath == -1 || d < bestDist {
					bestPath, bestStart, bestDist = i, c, d
				}
			}
		}
		if bestPath == -1 {
			break
		}
		used[bestPath] = true
		reordered := Path{
			Points: remaining[bestPath].rotatedFrom(bestStart),
			Closed: remaining[bestPath].Closed,
			Type:   remaining[bestPath].Type,
		}
		ordered = append(ordered, reordered)
		cursor = reordered.Points[len(reordered.Points)-1]
	}

	return ordered
}
