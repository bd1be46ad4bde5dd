// Package structures builds the auxiliary print structures that aren't
// part of the model itself: the raft, skirt, wipe tower, and wipe
// shield.
package structures

import (
	"math"

	"github.com/Faultbox/gofff/internal/geom"
)

// RaftOptions mirrors config.RaftConfig.
type RaftOptions struct {
	BaseThicknessUm           int
	InterfaceThicknessUm      int
	SurfaceLayers             int
	SurfaceThicknessUm        int
	AirGapUm                  int
	ExtraDistanceAroundPartUm float64
}

// RaftLayer is one printable raft layer's outline and the Z thickness it
// occupies.
type RaftLayer struct {
	Outline     geom.PolygonSet
	ThicknessUm int
}

// BuildRaft returns the raft's layer stack (base, interface, surface x N)
// below footprint, the union of every part's outline on the first
// printed layer.
func BuildRaft(footprint geom.PolygonSet, opts RaftOptions) []RaftLayer {
	outline := geom.Offset(footprint, opts.ExtraDistanceAroundPartUm, geom.JoinRound)

	layers := []RaftLayer{
		{Outline: outline, ThicknessUm: opts.BaseThicknessUm},
		{Outline: outline, ThicknessUm: opts.InterfaceThicknessUm},
	}
	for i := 0; i < opts.SurfaceLayers; i++ {
		layers = append(layers, RaftLayer{Outline: outline, ThicknessUm: opts.SurfaceThicknessUm})
	}
	return layers
}

// SkirtOptions mirrors config.SkirtConfig.
type SkirtOptions struct {
	NumberOfLoops    int
	DistanceUm       float64
	MinLengthUm      float64
	ExtrusionWidthUm float64
}

// BuildSkirt returns the skirt loops around footprint, adding extra
// loops beyond NumberOfLoops if the requested count doesn't reach
// MinLengthUm of total priming length (Non-goal: still an explicit,
// bounded computation rather than an unbounded retry loop).
func BuildSkirt(footprint geom.PolygonSet, opts SkirtOptions) []geom.PolygonSet {
	var loops []geom.PolygonSet
	var totalLength float64

	offset := opts.DistanceUm
	loopCount := opts.NumberOfLoops
	for i := 0; i < loopCount || (totalLength < opts.MinLengthUm && i < loopCount+8); i++ {
		loop := geom.Offset(footprint, offset, geom.JoinRound)
		if len(loop) == 0 {
			break
		}
		loops = append(loops, loop)
		for _, p := range loop {
			totalLength += perimeterLength(p)
		}
		offset += opts.ExtrusionWidthUm
	}
	return loops
}

func perimeterLength(p geom.Polygon) float64 {
	var length float64
	n := len(p)
	for i := 0; i < n; i++ {
		a, b := p[i], p[(i+1)%n]
		dx := float64(b.X - a.X)
		dy := float64(b.Y - a.Y)
		length += math.Hypot(dx, dy)
	}
	return length
}

// WipeTowerOptions mirrors the relevant fields of config.MultiConfig.
type WipeTowerOptions struct {
	SizeUm   int
	BedMinX  int64
	BedMinY  int64
	MarginUm int64
}

// BuildWipeTower returns the wipe tower's footprint, or nil if disabled
// (Open Question resolved: sizeUm <= 1 means disabled).
func BuildWipeTower(opts WipeTowerOptions) geom.Polygon {
	if opts.SizeUm <= 1 {
		return nil
	}
	x0 := opts.BedMinX + opts.MarginUm
	y0 := opts.BedMinY + opts.MarginUm
	size := int64(opts.SizeUm)
	return geom.Polygon{
		{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size},
	}
}

// BuildWipeShield returns a thin wall offset outward from footprint by
// DistanceFromShapesUm. cmd/slicer does not call it, so no wipe shield is
// printed.
func BuildWipeShield(footprint geom.PolygonSet, distanceFromShapesUm float64) geom.PolygonSet {
	if distanceFromShapesUm <= 0 {
		return nil
	}
	return geom.Offset(footprint, distanceFromShapesUm, geom.JoinRound)
}
