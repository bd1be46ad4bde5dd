package geom

import "github.com/ctessum/go.clipper"

// This file is the entire boundary with the polygon-boolean kernel: every
// other package in this module works with Polygon/PolygonSet only, and
// nothing outside of geom ever imports go.clipper directly.

const clipperScale = 1 // coordinates already live in integer micrometers

func toClipperPath(p Polygon) clipper.Path {
	path := make(clipper.Path, len(p))
	for i, v := range p {
		path[i] = &clipper.IntPoint{X: clipper.CInt(v.X * clipperScale), Y: clipper.CInt(v.Y * clipperScale)}
	}
	return path
}

func toClipperPaths(set PolygonSet) clipper.Paths {
	paths := make(clipper.Paths, len(set))
	for i, p := range set {
		paths[i] = toClipperPath(p)
	}
	return paths
}

func fromClipperPaths(paths clipper.Paths) PolygonSet {
	set := make(PolygonSet, len(paths))
	for i, path := range paths {
		poly := make(Polygon, len(path))
		for j, v := range path {
			poly[j] = Point{X: int64(v.X) / clipperScale, Y: int64(v.Y) / clipperScale}
		}
		set[i] = poly
	}
	return set
}

func boolOp(op clipper.ClipType, subject, clip PolygonSet, fill clipper.PolyFillType) PolygonSet {
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(toClipperPaths(subject), clipper.PtSubject, true)
	if len(clip) > 0 {
		c.AddPaths(toClipperPaths(clip), clipper.PtClip, true)
	}
	solution, _ := c.Execute1(op, fill, fill)
	return fromClipperPaths(solution)
}

// Union merges every polygon of a and b into a single non-overlapping set.
func Union(a, b PolygonSet) PolygonSet {
	return boolOp(clipper.CtUnion, a, b, clipper.PftNonZero)
}

// Difference subtracts b from a (a AND NOT b).
func Difference(a, b PolygonSet) PolygonSet {
	return boolOp(clipper.CtDifference, a, b, clipper.PftNonZero)
}

// Intersection returns the region covered by both a and b.
func Intersection(a, b PolygonSet) PolygonSet {
	return boolOp(clipper.CtIntersection, a, b, clipper.PftNonZero)
}

// Xor returns the region covered by exactly one of a or b.
func Xor(a, b PolygonSet) PolygonSet {
	return boolOp(clipper.CtXor, a, b, clipper.PftNonZero)
}

// JoinStyle mirrors the corner style go.clipper offers for outward/inward
// offsetting, kept as our own type so callers never import go.clipper.
type JoinStyle int

const (
	JoinRound JoinStyle = iota
	JoinSquare
	JoinMiter
)

func (j JoinStyle) clipperJoinType() clipper.JoinType {
	switch j {
	case JoinSquare:
		return clipper.JtSquare
	case JoinMiter:
		return clipper.JtMiter
	default:
		return clipper.JtRound
	}
}

// Offset grows (deltaUm > 0) or shrinks (deltaUm < 0) every polygon in set
// by deltaUm micrometers. This is the primitive InsetGenerator (C4) and
// SupportGenerator (C7) build their concentric-loop and erode/dilate logic
// on top of.
func Offset(set PolygonSet, deltaUm float64, join JoinStyle) PolygonSet {
	co := clipper.NewClipperOffset()
	for _, p := range set {
		co.AddPath(toClipperPath(p), join.clipperJoinType(), clipper.EtClosedPolygon)
	}
	solution := co.Execute(deltaUm * clipperScale)
	return fromClipperPaths(solution)
}

// OffsetOpenLine offsets a single open polyline into a closed polygon of
// width 2*deltaUm with butt ends. Nothing else in this module calls it.
func OffsetOpenLine(line Polygon, deltaUm float64, join JoinStyle) PolygonSet {
	co := clipper.NewClipperOffset()
	co.AddPath(toClipperPath(line), join.clipperJoinType(), clipper.EtOpenButt)
	solution := co.Execute(deltaUm * clipperScale)
	return fromClipperPaths(solution)
}
