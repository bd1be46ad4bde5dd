package geom

import "testing"

func square(x0, y0, x1, y1 int64) Polygon {
	return Polygon{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func TestUnionOfOverlappingSquares(t *testing.T) {
	a := PolygonSet{square(0, 0, 10000, 10000)}
	b := PolygonSet{square(5000, 5000, 15000, 15000)}

	result := Union(a, b)
	if len(result) != 1 {
		t.Fatalf("expected a single merged outline, got %d polygons", len(result))
	}

	total := result[0].Area()
	if total <= a[0].Area() || total >= a[0].Area()+b[0].Area() {
		t.Errorf("merged area %v not between the two overlapping squares' areas", total)
	}
}

func TestDifferenceCutsHole(t *testing.T) {
	outer := PolygonSet{square(0, 0, 10000, 10000)}
	hole := PolygonSet{square(2000, 2000, 4000, 4000)}

	result := Difference(outer, hole)
	if len(result) != 2 {
		t.Fatalf("expected outer + 1 hole, got %d polygons", len(result))
	}

	normalized := result.NormalizeWinding()
	ccwCount, cwCount := 0, 0
	for _, p := range normalized {
		if p.IsCCW() {
			ccwCount++
		} else {
			cwCount++
		}
	}
	if ccwCount != 1 || cwCount != 1 {
		t.Errorf("expected 1 CCW outer and 1 CW hole, got %d/%d", ccwCount, cwCount)
	}
}

func TestIntersectionOfDisjointIsEmpty(t *testing.T) {
	a := PolygonSet{square(0, 0, 1000, 1000)}
	b := PolygonSet{square(5000, 5000, 6000, 6000)}

	result := Intersection(a, b)
	if len(result) != 0 {
		t.Errorf("expected no intersection for disjoint squares, got %d polygons", len(result))
	}
}

func TestOffsetGrowsArea(t *testing.T) {
	set := PolygonSet{square(0, 0, 10000, 10000)}
	grown := Offset(set, 500, JoinMiter)
	if len(grown) != 1 {
		t.Fatalf("expected 1 polygon after offset, got %d", len(grown))
	}
	if grown[0].Area() <= set[0].Area() {
		t.Errorf("expected positive offset to grow area, got %v <= %v", grown[0].Area(), set[0].Area())
	}
}

func TestOffsetShrinksArea(t *testing.T) {
	set := PolygonSet{square(0, 0, 10000, 10000)}
	shrunk := Offset(set, -500, JoinMiter)
	if len(shrunk) != 1 {
		t.Fatalf("expected 1 polygon after inward offset, got %d", len(shrunk))
	}
	if shrunk[0].Area() >= set[0].Area() {
		t.Errorf("expected negative offset to shrink area, got %v >= %v", shrunk[0].Area(), set[0].Area())
	}
}

func TestPointInPolygon(t *testing.T) {
	poly := square(0, 0, 10000, 10000)
	if !PointInPolygon(Point{5000, 5000}, poly) {
		t.Error("center point should be inside square")
	}
	if PointInPolygon(Point{20000, 20000}, poly) {
		t.Error("far point should be outside square")
	}
}

func TestBoundingBox(t *testing.T) {
	set := PolygonSet{square(-1000, -1000, 2000, 3000)}
	min, max, ok := set.BoundingBox()
	if !ok {
		t.Fatal("expected ok=true for non-empty set")
	}
	if min != (Point{-1000, -1000}) || max != (Point{2000, 3000}) {
		t.Errorf("unexpected bounding box min=%v max=%v", min, max)
	}
}
