// Package mesh implements MeshIndex: the model-loading and vertex-welding
// stage that turns a raw triangle soup (as decoded by pkg/stl) into an
// indexed, quantized mesh ready for plane-sweep slicing.
package mesh

import fffmath "github.com/Faultbox/gofff/pkg/math"

// Triangle is one raw triangle as decoded from a model file: three
// vertices and (optionally) a facet normal, both still in the source
// file's native float32 units.
type Triangle struct {
	V0, V1, V2 fffmath.Vec3
	Normal     fffmath.Vec3
}

// Model is the raw, unwelded triangle soup produced by a loader such as
// pkg/stl. ScaleUmPerUnit converts one unit of V0/V1/V2 into micrometers
// (STL carries no units of its own, so the caller/config supplies it).
type Model struct {
	Triangles      []Triangle
	ScaleUmPerUnit float64
}

// Volume is one ordered set of triangles printed with a single
// extruder: the unit a multi-material plate's plate is actually built
// from. A plain STL carries no per-triangle extruder metadata, so today
// every Volume is exactly one loaded file's full Model; a format that
// could split a single file into several materials would still produce
// a []Volume the rest of the pipeline consumes unchanged.
type Volume struct {
	Model    Model
	Extruder int
}

// Point3 is a mesh vertex position in integer micrometers, the 3D
// counterpart of geom.Point used only inside this package and the slicer
// (the slicer immediately collapses it to 2D contour points once it
// crosses a slicing plane).
type Point3 struct {
	X, Y, Z int64
}

// Face is a welded triangle, referencing three vertex indices into
// MeshIndex.Vertices.
type Face struct {
	V0, V1, V2 int
}

// Edge identifies an undirected edge between two vertex indices, always
// stored with the lower index first so it can key a map regardless of
// winding direction.
type Edge struct {
	A, B int
}

func makeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}
