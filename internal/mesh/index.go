package mesh

import fffmath "github.com/Faultbox/gofff/pkg/math"

// MeshIndex is the welded, quantized, rotated form of a Model: the shape
// every downstream component (slicer, path ordering) actually operates
// on. Vertex welding uses a quantized-position hash map, the same
// technique the origin engine's normal-smoothing pass used to group
// coincident vertices — here it collapses them into one shared index
// instead of just averaging an attribute.
type MeshIndex struct {
	Vertices []Point3
	Faces    []Face

	// Adjacency maps each edge to the 1 or 2 face indices that share it.
	// A manifold mesh has exactly 2 faces per interior edge and 1 for a
	// boundary edge. OpenEdges reads this to find boundary edges; the
	// slicer does not consult it.
	Adjacency map[Edge][]int

	min, max Point3

	flippedNormals int
}

// BuildOptions controls how a raw Model is converted into a MeshIndex.
type BuildOptions struct {
	// Rotation is applied to every vertex before quantization
	// (modelRotationMatrix).
	Rotation fffmath.Mat3
	// TranslateUm is added after rotation and scaling, in micrometers
	// (modelPosition_um).
	TranslateUm Point3
	// WeldToleranceUm is the pitch of the grid every vertex coordinate is
	// snapped to before welding; vertices that snap to the same grid point
	// share one index. Two vertices closer than this can still land on
	// different grid points when they straddle a cell boundary. Values
	// below 1 use a 1um grid, so only exact coincidence welds.
	WeldToleranceUm int64
}

// NewMeshIndex welds, quantizes and indexes model into a MeshIndex.
// Degenerate triangles (two or more corners welded to the same vertex)
// are dropped rather than causing an error.
func NewMeshIndex(model Model, opts BuildOptions) *MeshIndex {
	idx := &MeshIndex{Adjacency: make(map[Edge][]int)}

	weldGrid := opts.WeldToleranceUm
	if weldGrid < 1 {
		weldGrid = 1
	}
	snap := func(v int64) int64 {
		if v >= 0 {
			return (v + weldGrid/2) / weldGrid * weldGrid
		}
		return -((-v + weldGrid/2) / weldGrid * weldGrid)
	}

	quantize := func(v fffmath.Vec3) Point3 {
		rx, ry, rz := opts.Rotation.Transform(float64(v.X), float64(v.Y), float64(v.Z))
		return Point3{
			X: snap(int64(rx*model.ScaleUmPerUnit) + opts.TranslateUm.X),
			Y: snap(int64(ry*model.ScaleUmPerUnit) + opts.TranslateUm.Y),
			Z: snap(int64(rz*model.ScaleUmPerUnit) + opts.TranslateUm.Z),
		}
	}

	vertexIndex := make(map[Point3]int)
	weld := func(p Point3) int {
		if existing, ok := vertexIndex[p]; ok {
			return existing
		}
		i := len(idx.Vertices)
		idx.Vertices = append(idx.Vertices, p)
		vertexIndex[p] = i
		if i == 0 {
			idx.min, idx.max = p, p
		} else {
			idx.expand(p)
		}
		return i
	}

	for _, tri := range model.Triangles {
		i0 := weld(quantize(tri.V0))
		i1 := weld(quantize(tri.V1))
		i2 := weld(quantize(tri.V2))
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		faceIdx := len(idx.Faces)
		idx.Faces = append(idx.Faces, Face{i0, i1, i2})
		for _, e := range [3]Edge{makeEdge(i0, i1), makeEdge(i1, i2), makeEdge(i2, i0)} {
			idx.Adjacency[e] = append(idx.Adjacency[e], faceIdx)
		}
		if facetNormalDisagrees(tri) {
			idx.flippedNormals++
		}
	}

	return idx
}

// facetNormalDisagrees reports whether a triangle's stored facet normal
// points away from the winding-order normal derived from its own
// vertices, the sign a badly exported STL flips when a CAD tool writes a
// garbage or left-handed normal alongside a correctly wound triangle.
// A zero stored normal (some exporters omit it) is not a disagreement.
func facetNormalDisagrees(tri Triangle) bool {
	if tri.Normal.Length() == 0 {
		return false
	}
	geometric := tri.V1.Sub(tri.V0).Cross(tri.V2.Sub(tri.V0)).Normalize()
	return geometric.Dot(tri.Normal.Normalize()) < 0
}

func (m *MeshIndex) expand(p Point3) {
	if p.X < m.min.X {
		m.min.X = p.X
	}
	if p.Y < m.min.Y {
		m.min.Y = p.Y
	}
	if p.Z < m.min.Z {
		m.min.Z = p.Z
	}
	if p.X > m.max.X {
		m.max.X = p.X
	}
	if p.Y > m.max.Y {
		m.max.Y = p.Y
	}
	if p.Z > m.max.Z {
		m.max.Z = p.Z
	}
}

// Bounds returns the mesh's axis-aligned bounding box in micrometers.
func (m *MeshIndex) Bounds() (min, max Point3) { return m.min, m.max }

// TriangleCount returns the number of welded, non-degenerate faces.
func (m *MeshIndex) TriangleCount() int { return len(m.Faces) }

// OpenEdges returns every edge shared by exactly one face — a boundary
// of a non-watertight mesh. Pipeline.PrepareModel logs their count as a
// warning rather than failing; the slicer itself does not read them.
func (m *MeshIndex) OpenEdges() []Edge {
	var open []Edge
	for e, faces := range m.Adjacency {
		if len(faces) == 1 {
			open = append(open, e)
		}
	}
	return open
}

// Vertex resolves a vertex index to its position.
func (m *MeshIndex) Vertex(i int) Point3 { return m.Vertices[i] }

// FlippedNormals returns the number of source triangles whose stored
// facet normal disagreed with their own winding order, surfaced the same
// way OpenEdges is: a count for the caller to log, not a hard failure.
func (m *MeshIndex) FlippedNormals() int { return m.flippedNormals }
