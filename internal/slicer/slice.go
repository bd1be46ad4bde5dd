package slicer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/gofff/internal/geom"
	"github.com/Faultbox/gofff/internal/logger"
	"github.com/Faultbox/gofff/internal/mesh"
)

// Options controls the plane-sweep and chain-repair behavior.
type Options struct {
	// RepairToleranceUm is the maximum gap between a chain's open ends
	// that will still be closed by force rather than reported as an
	// OpenContour.
	RepairToleranceUm int64
}

// SliceLayers cuts idx at every Z height in layerZUm (already computed by
// the caller from layerThickness_um / firstLayerThickness_um) and returns
// one LayerSlice per height, in the same order.
func SliceLayers(idx *mesh.MeshIndex, layerZUm []int64, opts Options) []LayerSlice {
	slices := make([]LayerSlice, len(layerZUm))
	for i, z := range layerZUm {
		slices[i] = sliceLayer(idx, z, opts)
	}
	return slices
}

func sliceLayer(idx *mesh.MeshIndex, z int64, opts Options) LayerSlice {
	segments := collectSegments(idx, z)
	contours, openCount := chain(segments, opts.RepairToleranceUm)

	if openCount > 0 && logger.Log != nil {
		logger.Log.Warn("open contour after chaining",
			zap.Int64("z_um", z),
			zap.Int("open_chains", openCount),
		)
	}

	normalized := make([]geom.Polygon, len(contours))
	for i, c := range contours {
		normalized[i] = c
	}

	return LayerSlice{ZUm: z, Contours: geom.PolygonSet(normalized).NormalizeWinding(), OpenCount: openCount}
}

// collectSegments finds, for every triangle straddling the z plane, the
// directed 2D segment where it crosses. Walking the triangle's three
// edges in their original winding order and taking the rising crossing
// as the segment start and the falling crossing as its end means the
// resulting segment is already oriented consistently with the source
// mesh's winding (Invariant 2), with no separate orientation pass needed
// per triangle.
func collectSegments(idx *mesh.MeshIndex, z int64) []Segment {
	var segs []Segment
	for fi, f := range idx.Faces {
		verts := [3]mesh.Point3{idx.Vertex(f.V0), idx.Vertex(f.V1), idx.Vertex(f.V2)}

		var start, end geom.Point
		var haveStart, haveEnd bool

		for e := 0; e < 3; e++ {
			a := verts[e]
			b := verts[(e+1)%3]

			rising := a.Z < z && b.Z >= z
			falling := a.Z >= z && b.Z < z
			if !rising && !falling {
				continue
			}

			p := intersectEdge(a, b, z)
			if rising {
				start, haveStart = p, true
			} else {
				end, haveEnd = p, true
			}
		}

		if haveStart && haveEnd {
			segs = append(segs, Segment{Start: start, End: end, Face: fi})
		}
	}
	return segs
}

// intersectEdge linearly interpolates the XY position where edge a->b
// crosses the plane z.
func intersectEdge(a, b mesh.Point3, z int64) geom.Point {
	if a.Z == b.Z {
		return geom.Point{X: a.X, Y: a.Y}
	}
	t := float64(z-a.Z) / float64(b.Z-a.Z)
	return geom.Point{
		X: a.X + int64(t*float64(b.X-a.X)),
		Y: a.Y + int64(t*float64(b.Y-a.Y)),
	}
}
