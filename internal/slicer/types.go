// Package slicer implements the plane-sweep slicing stage: cutting a
// mesh.MeshIndex at each layer height into closed 2D contours.
package slicer

import "github.com/Faultbox/gofff/internal/geom"

// Segment is one triangle-plane intersection: a directed 2D edge that,
// once chained with its neighbors, forms part of a closed layer contour.
// Direction is preserved from the source triangle's winding so that
// chained loops come out already correctly oriented (Invariant 2).
type Segment struct {
	Start, End geom.Point
	// Face is the source triangle index, kept for diagnostics only.
	Face int
}

// LayerSlice is the raw chained output for a single Z height: zero or
// more closed contours, plus any chains that failed to close within
// Options.RepairToleranceUm.
type LayerSlice struct {
	ZUm       int64
	Contours  []geom.Polygon
	OpenCount int
}
