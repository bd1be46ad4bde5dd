package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/gofff/internal/config"
	"github.com/Faultbox/gofff/internal/geom"
	"github.com/Faultbox/gofff/internal/mesh"
	"github.com/Faultbox/gofff/internal/session"
	"github.com/Faultbox/gofff/internal/skin"
	fffmath "github.com/Faultbox/gofff/pkg/math"
)

var identityRotation = fffmath.Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// asciiCubePath writes a watertight cube of edge l millimeters as ASCII
// STL, 12 triangles wound counter-clockwise looking in from outside each
// face, and returns its path.
func asciiCubePath(t *testing.T, l float64) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.stl")

	type v3 struct{ x, y, z float64 }
	tris := [][3]v3{
		{{0, 0, 0}, {l, l, 0}, {l, 0, 0}}, {{0, 0, 0}, {0, l, 0}, {l, l, 0}}, // bottom
		{{0, 0, l}, {l, 0, l}, {l, l, l}}, {{0, 0, l}, {l, l, l}, {0, l, l}}, // top
		{{0, 0, 0}, {l, 0, 0}, {l, 0, l}}, {{0, 0, 0}, {l, 0, l}, {0, 0, l}}, // y=0
		{{0, l, 0}, {l, l, l}, {l, l, 0}}, {{0, l, 0}, {0, l, l}, {l, l, l}}, // y=l
		{{0, 0, 0}, {0, l, l}, {0, l, 0}}, {{0, 0, 0}, {0, 0, l}, {0, l, l}}, // x=0
		{{l, 0, 0}, {l, l, 0}, {l, l, l}}, {{l, 0, 0}, {l, l, l}, {l, 0, l}}, // x=l
	}

	out := "solid cube\n"
	for _, tri := range tris {
		out += "facet normal 0 0 0\nouter loop\n"
		for _, p := range tri {
			out += fmt.Sprintf("vertex %g %g %g\n", p.x, p.y, p.z)
		}
		out += "endloop\nendfacet\n"
	}
	out += "endsolid cube\n"

	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		t.Fatalf("failed to write test STL: %v", err)
	}
	return path
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Layers.ThicknessUm = 1000
	cfg.Layers.FirstLayerThicknessUm = 1000
	cfg.Shells.ExtrusionWidthUm = 400
	cfg.Shells.NumberOfPerimeters = 1
	cfg.Shells.NumberOfTopLayers = 2
	cfg.Shells.NumberOfBottomLayers = 2
	cfg.Infill.Percent = 20
	cfg.Support.Extruder = -1
	return cfg
}

func buildPipeline(t *testing.T, cfg *config.Config, extruder int) *Pipeline {
	t.Helper()
	path := asciiCubePath(t, 10)
	sess := session.New()
	p := New(cfg, sess, extruder)
	if err := p.PrepareModel(path, identityRotation, mesh.Point3{}); err != nil {
		t.Fatalf("PrepareModel failed: %v", err)
	}
	if err := p.ProcessSliceData(); err != nil {
		t.Fatalf("ProcessSliceData failed: %v", err)
	}
	return p
}

func TestNewCapturesIsFirstObjectAtConstructionTime(t *testing.T) {
	sess := session.New()
	first := New(config.Default(), sess, 0)
	if !first.isFirst {
		t.Fatalf("expected the first pipeline built against a fresh session to be first")
	}
	sess.NextObject()
	second := New(config.Default(), sess, 1)
	if second.isFirst {
		t.Fatalf("expected the second pipeline built after NextObject to not be first")
	}
}

// TestSkinAndSparseDoNotOverlap exercises the classification pipeline.go
// itself runs in buildLayerPaths: skin classification against a layer's
// full innermost coverage, clipped down to one part's own walls, must
// split that part's innermost region into two regions with no overlap.
func TestSkinAndSparseDoNotOverlap(t *testing.T) {
	cfg := testConfig()
	p := buildPipeline(t, cfg, 0)

	if len(p.perLayerInnermost) < 3 {
		t.Fatalf("expected several sliced layers, got %d", len(p.perLayerInnermost))
	}

	mid := len(p.perLayerInnermost) / 2
	walls := p.perLayerWalls[mid][0]

	skinResult := skin.Classify(p.perLayerInnermost, mid, skin.Options{
		NumberOfTopLayers:    cfg.Shells.NumberOfTopLayers,
		NumberOfBottomLayers: cfg.Shells.NumberOfBottomLayers,
	})
	skinOutline := geom.Union(skinResult.Top, skinResult.Bottom)
	partSkin := geom.Intersection(skinOutline, walls.Innermost)
	sparse := geom.Difference(walls.Innermost, partSkin)

	if overlap := geom.Intersection(partSkin, sparse); len(overlap) != 0 {
		t.Fatalf("expected skin and sparse regions not to overlap, got %d overlapping polygons", len(overlap))
	}

	// A middle layer of a 10mm cube sliced at 1mm/layer with 2 top/bottom
	// layers sits well clear of the solid skin bands, so it must be
	// mostly sparse.
	if len(partSkin) != 0 {
		t.Errorf("expected the middle layer to carry no solid skin, got %d polygons", len(partSkin))
	}
	if len(sparse) == 0 {
		t.Errorf("expected the middle layer to have a sparse fill region")
	}
}

func TestExtruderAndLayerAccessorsReflectAssignment(t *testing.T) {
	cfg := testConfig()
	p := buildPipeline(t, cfg, 2)

	if p.Extruder() != 2 {
		t.Errorf("expected extruder 2, got %d", p.Extruder())
	}
	if p.LayerCount() == 0 {
		t.Errorf("expected at least one layer plan")
	}
	if p.ZUm(0) <= 0 {
		t.Errorf("expected a positive Z for layer 0, got %d", p.ZUm(0))
	}
}

func TestFinalizeAdvancesSessionObjectIndex(t *testing.T) {
	cfg := testConfig()
	sess := session.New()
	p := New(cfg, sess, 0)
	if err := p.PrepareModel(asciiCubePath(t, 10), identityRotation, mesh.Point3{}); err != nil {
		t.Fatalf("PrepareModel failed: %v", err)
	}
	if err := p.ProcessSliceData(); err != nil {
		t.Fatalf("ProcessSliceData failed: %v", err)
	}
	if sess.ObjectIndex != 0 {
		t.Fatalf("expected ObjectIndex to stay 0 until Finalize, got %d", sess.ObjectIndex)
	}
	p.Finalize()
	if sess.ObjectIndex != 1 {
		t.Fatalf("expected Finalize to advance ObjectIndex to 1, got %d", sess.ObjectIndex)
	}
}

func TestBridgeAngleDegreesUsesLongestEdgeDirection(t *testing.T) {
	rectangle := geom.PolygonSet{{
		{X: 0, Y: 0}, {X: 20000, Y: 0}, {X: 20000, Y: 5000}, {X: 0, Y: 5000},
	}}
	angle := bridgeAngleDegrees(rectangle)
	if angle == nil {
		t.Fatalf("expected a bridge angle for a non-empty region")
	}
	if *angle != 0 {
		t.Errorf("expected the longest (horizontal) edge to give angle 0, got %d", *angle)
	}
}

func TestBridgeAngleDegreesNilForEmptyRegion(t *testing.T) {
	if angle := bridgeAngleDegrees(nil); angle != nil {
		t.Errorf("expected nil bridge angle for an empty region, got %v", *angle)
	}
}
