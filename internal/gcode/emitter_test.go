package gcode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/gofff/internal/geom"
)

func TestEmitterWriteLayerRepRap(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectRepRap)

	plan := LayerPlan{
		LayerIndex: 0, ZUm: 200,
		Moves: []Move{
			{Kind: MoveTravel, Point: geom.Point{X: 1000, Y: 1000}, ZUm: 200, HasZ: true, FeedrateMmM: 9000},
			{Kind: MoveExtrude, Point: geom.Point{X: 2000, Y: 1000}, ZUm: 200, HasZ: true, FeedrateMmM: 1800, ExtrudeUm: 500},
		},
	}
	if err := em.WriteLayer(plan); err != nil {
		t.Fatalf("WriteLayer failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "G0 X1.000 Y1.000") {
		t.Errorf("expected a G0 travel move, got:\n%s", out)
	}
	if !strings.Contains(out, "G1 X2.000 Y1.000") {
		t.Errorf("expected a G1 extrude move, got:\n%s", out)
	}
}

func TestEmitterUltiGCodeOmitsEFromLinearMove(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectUltiGCode)

	plan := LayerPlan{
		Moves: []Move{
			{Kind: MoveExtrude, Point: geom.Point{X: 1000, Y: 0}, FeedrateMmM: 1800, ExtrudeUm: 500},
		},
	}
	_ = em.WriteLayer(plan)

	// Only the move lines are checked: the ;LAYER: header itself contains
	// an E.
	sawMove := false
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.HasPrefix(line, "G0") && !strings.HasPrefix(line, "G1") {
			continue
		}
		sawMove = true
		if strings.Contains(line, "E") {
			t.Errorf("expected UltiGCode dialect to omit E from linear moves, got:\n%s", buf.String())
		}
	}
	if !sawMove {
		t.Errorf("expected a linear move in the output, got:\n%s", buf.String())
	}
}

func TestEmitterFooterReportsFilamentAndTime(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectRepRap)
	plan := LayerPlan{
		Moves: []Move{
			{Kind: MoveExtrude, Point: geom.Point{X: 1000, Y: 0}, FeedrateMmM: 1800, ExtrudeUm: 500000},
		},
		EstimatedSeconds: 12.5,
	}
	_ = em.WriteLayer(plan)
	_ = em.WriteFooter()

	out := buf.String()
	if !strings.Contains(out, "Filament used: 0.500m") {
		t.Errorf("expected filament footer, got:\n%s", out)
	}
	if !strings.Contains(out, "Estimated print time: 13s") && !strings.Contains(out, "Estimated print time: 12s") {
		t.Errorf("expected print time footer, got:\n%s", out)
	}
}

func TestEmitterWriteHeaderRepRapHasNoUltiGCodePlaceholders(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectRepRap)
	if err := em.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, ";Generated with "+Version) {
		t.Errorf("expected the generator header line, got:\n%s", out)
	}
	if strings.Contains(out, ";MATERIAL:") {
		t.Errorf("expected no UltiGCode placeholders for RepRap dialect, got:\n%s", out)
	}
}

func TestEmitterWriteHeaderUltiGCodeAddsPlaceholders(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectUltiGCode)
	if err := em.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{";Generated with " + Version, ";TIME:", ";MATERIAL:", ";MATERIAL2:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected header to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitterWriteCommentHasNoLayerMarker(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectRepRap)
	if err := em.WriteComment("WIPE_TOWER:1"); err != nil {
		t.Fatalf("WriteComment failed: %v", err)
	}

	if got := buf.String(); got != ";WIPE_TOWER:1\n" {
		t.Errorf("expected a bare comment line, got %q", got)
	}
}

func TestEmitterSwitchExtruderRetractsAndChangesTool(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectRepRap)

	if err := em.SwitchExtruder(1, 16000); err != nil {
		t.Fatalf("SwitchExtruder failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "E-16.00000") {
		t.Errorf("expected a retraction move before the tool change, got:\n%s", out)
	}
	if !strings.Contains(out, "T1") {
		t.Errorf("expected a T1 tool change, got:\n%s", out)
	}
}

func TestEmitterBFBToolChange(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf, DialectBFB)
	if err := em.writeToolChange(1); err != nil {
		t.Fatalf("writeToolChange failed: %v", err)
	}
	if !strings.Contains(buf.String(), "M108 T1") {
		t.Errorf("expected BFB-style tool change, got:\n%s", buf.String())
	}
}
