// Package geom holds the integer-micrometer 2D polygon types shared by
// every layer-processing stage, and the narrow boundary to the external
// Clipper-style polygon kernel (keep the boundary with
// that kernel narrow and well-typed).
package geom

// Point is a single 2D vertex in integer micrometers.
type Point struct {
	X, Y int64
}

// Add returns p+o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Sub returns p-o.
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// DistanceSquared returns the squared Euclidean distance to o, avoiding
// a sqrt when only comparisons are needed.
func (p Point) DistanceSquared(o Point) int64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

// Polygon is an ordered, closed (implicit wrap-around) sequence of
// vertices. By convention outers wind CCW (positive signed area) and
// holes wind CW (negative signed area).
type Polygon []Point

// PolygonSet is an ordered sequence of Polygons, treated as an even-odd
// or non-zero region depending on the operation being performed.
type PolygonSet []Polygon

// SignedArea returns twice the shoelace signed area (positive for CCW).
// Kept doubled (not halved) since only the sign and relative magnitude
// matter at call sites; Area below divides by two where an absolute
// physical area is needed.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum int64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return float64(sum)
}

// Area returns the unsigned physical area in µm².
func (p Polygon) Area() float64 {
	a := p.SignedArea()
	if a < 0 {
		a = -a
	}
	return a / 2
}

// IsCCW reports whether p winds counter-clockwise (positive signed area).
func (p Polygon) IsCCW() bool { return p.SignedArea() > 0 }

// Reversed returns p with vertex order reversed (flips winding).
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// Orient returns p with the winding direction forced to ccw.
func (p Polygon) Orient(ccw bool) Polygon {
	if p.IsCCW() == ccw {
		return p
	}
	return p.Reversed()
}

// NormalizeWinding enforces Invariant 2 across a whole set produced by a
// boolean op: a polygon's depth is the number of other polygons in the
// set that contain its approximate centroid (the mean of its vertices).
// Even depth makes it an outer, forced CCW; odd depth makes it a hole,
// forced CW.
func (set PolygonSet) NormalizeWinding() PolygonSet {
	out := make(PolygonSet, len(set))
	for i, poly := range set {
		depth := 0
		for j, other := range set {
			if i == j {
				continue
			}
			if PointInPolygon(poly.centroidApprox(), other) {
				depth++
			}
		}
		out[i] = poly.Orient(depth%2 == 0)
	}
	return out
}

func (p Polygon) centroidApprox() Point {
	if len(p) == 0 {
		return Point{}
	}
	var sx, sy int64
	for _, v := range p {
		sx += v.X
		sy += v.Y
	}
	n := int64(len(p))
	return Point{sx / n, sy / n}
}

// PointInPolygon is a standard even-odd ray cast, used for hole/outer
// nesting and for clipping infill lines against a region's boundary.
func PointInPolygon(pt Point, poly Polygon) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xIntersect := float64(pj.X-pi.X)*float64(pt.Y-pi.Y)/float64(pj.Y-pi.Y) + float64(pi.X)
			if float64(pt.X) < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// BoundingBox returns the min/max corner of the set. Ok is false for an
// empty set.
func (set PolygonSet) BoundingBox() (min, max Point, ok bool) {
	for _, poly := range set {
		for _, v := range poly {
			if !ok {
				min, max = v, v
				ok = true
				continue
			}
			if v.X < min.X {
				min.X = v.X
			}
			if v.Y < min.Y {
				min.Y = v.Y
			}
			if v.X > max.X {
				max.X = v.X
			}
			if v.Y > max.Y {
				max.Y = v.Y
			}
		}
	}
	return
}
