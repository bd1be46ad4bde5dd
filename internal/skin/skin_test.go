package skin

import (
	"testing"

	"github.com/Faultbox/gofff/internal/geom"
)

func square(side int64) geom.PolygonSet {
	return geom.PolygonSet{{{0, 0}, {side, 0}, {side, side}, {0, side}}}
}

func TestClassifyTopAndBottomLayerFullySolid(t *testing.T) {
	regions := []geom.PolygonSet{square(10000)}
	result := Classify(regions, 0, Options{NumberOfTopLayers: 2, NumberOfBottomLayers: 2})

	if result.Top[0].Area() != regions[0][0].Area() {
		t.Errorf("sole layer should be fully top skin, got area %v", result.Top[0].Area())
	}
	if result.Bottom[0].Area() != regions[0][0].Area() {
		t.Errorf("sole layer should be fully bottom skin, got area %v", result.Bottom[0].Area())
	}
	if len(result.Sparse) != 0 {
		t.Errorf("sole layer should have no sparse region, got %d polygons", len(result.Sparse))
	}
}

func TestClassifyMiddleLayerIsSparseWhenFullyCovered(t *testing.T) {
	regions := []geom.PolygonSet{square(10000), square(10000), square(10000)}
	result := Classify(regions, 1, Options{NumberOfTopLayers: 1, NumberOfBottomLayers: 1})

	if len(result.Top) != 0 {
		t.Errorf("fully covered middle layer should have no top skin, got %d", len(result.Top))
	}
	if len(result.Bottom) != 0 {
		t.Errorf("fully covered middle layer should have no bottom skin, got %d", len(result.Bottom))
	}
	if len(result.Sparse) == 0 {
		t.Error("fully covered middle layer should be sparse infill")
	}
}

func TestClassifyEmptyLayer(t *testing.T) {
	regions := []geom.PolygonSet{nil}
	result := Classify(regions, 0, Options{})
	if len(result.Top) != 0 || len(result.Bottom) != 0 || len(result.Sparse) != 0 {
		t.Error("empty layer should classify to nothing")
	}
}
