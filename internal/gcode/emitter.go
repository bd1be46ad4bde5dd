package gcode

import (
	"fmt"
	"io"
	"math"
)

// Emitter renders LayerPlans into a specific dialect's G-code text,
// tracking the running XYZE state every dialect needs to emit correct
// deltas or absolutes.
type Emitter struct {
	w       io.Writer
	dialect Dialect

	x, y, z, e float64
	haveXYZ    bool
	feedrate   float64
	fanPercent int

	filamentLengthUm int64
	printTimeSeconds float64
}

// NewEmitter returns an Emitter writing dialect-specific G-code to w.
func NewEmitter(w io.Writer, dialect Dialect) *Emitter {
	return &Emitter{w: w, dialect: dialect}
}

// Version is the identifier this build stamps into every output file's
// header comment.
const Version = "gofff-1.0"

// WriteHeader emits the run's leading comment block: the generator
// identifier every dialect shares, plus the extra UltiGCode placeholders
// its host software expects to find before the first move.
func (em *Emitter) WriteHeader() error {
	if _, err := fmt.Fprintf(em.w, ";Generated with %s\n", Version); err != nil {
		return err
	}
	if em.dialect == DialectUltiGCode {
		_, err := fmt.Fprint(em.w, ";TYPE:UltiGCode\n;TIME:\n;MATERIAL:\n;MATERIAL2:\n")
		return err
	}
	return nil
}

// WriteStartCode emits the configured custom start G-code verbatim.
func (em *Emitter) WriteStartCode(code string) error {
	if code == "" {
		return nil
	}
	_, err := fmt.Fprintln(em.w, code)
	return err
}

// WriteEndCode emits the configured custom end G-code verbatim.
func (em *Emitter) WriteEndCode(code string) error {
	if code == "" {
		return nil
	}
	_, err := fmt.Fprintln(em.w, code)
	return err
}

// WriteComment emits a single ";text" line with no layer marker, for
// plate-level annotations (raft/wipe tower/wipe shield presence) that
// sit outside any one object's layer stack.
func (em *Emitter) WriteComment(text string) error {
	_, err := fmt.Fprintf(em.w, ";%s\n", text)
	return err
}

// WriteLayer renders every move of plan in order.
func (em *Emitter) WriteLayer(plan LayerPlan) error {
	if _, err := fmt.Fprintf(em.w, ";LAYER:%d\n", plan.LayerIndex); err != nil {
		return err
	}
	if err := em.WriteMoves(plan.Moves); err != nil {
		return err
	}
	em.printTimeSeconds += plan.EstimatedSeconds
	return nil
}

// WriteMoves renders a bare sequence of moves with no layer header, for
// mid-layer insertions — a wipe-tower pass triggered by an extruder
// switch — that don't belong to any one object's own LayerPlan.
func (em *Emitter) WriteMoves(moves []Move) error {
	for _, m := range moves {
		if err := em.writeMove(m); err != nil {
			return err
		}
	}
	return nil
}

// SwitchExtruder is GCodePlanner's setExtruder: it retracts the active
// extruder by retractUm, emits the tool-change command for tool, and
// resets the running extrusion counter so the next extrude move starts
// from that tool's own zero rather than carrying over the old one's E
// value.
func (em *Emitter) SwitchExtruder(tool int, retractUm int64) error {
	if retractUm > 0 {
		if err := em.writeExtrudeDelta(-retractUm, em.feedrate); err != nil {
			return err
		}
	}
	if err := em.writeToolChange(tool); err != nil {
		return err
	}
	em.e = 0
	return nil
}

func (em *Emitter) writeMove(m Move) error {
	switch m.Kind {
	case MoveComment:
		_, err := fmt.Fprintf(em.w, ";%s\n", m.Comment)
		return err
	case MoveFanSpeed:
		return em.writeFan(m.FanPercent)
	case MoveToolChange:
		return em.writeToolChange(m.ToolIndex)
	case MoveRetract:
		return em.writeExtrudeDelta(m.ExtrudeUm, em.feedrate)
	case MoveUnretract:
		return em.writeExtrudeDelta(m.ExtrudeUm, em.feedrate)
	case MoveTravel, MoveExtrude:
		return em.writeLinearMove(m)
	default:
		return nil
	}
}

func (em *Emitter) writeFan(percent int) error {
	em.fanPercent = percent
	switch em.dialect {
	case DialectBFB:
		// BFB has no dedicated fan command in this dialect's minimal
		// command set; fan speed is fixed by the printer's own profile.
		return nil
	default:
		pwm := int(math.Round(float64(percent) * 255 / 100))
		_, err := fmt.Fprintf(em.w, "M106 S%d\n", pwm)
		return err
	}
}

func (em *Emitter) writeToolChange(tool int) error {
	switch em.dialect {
	case DialectBFB:
		_, err := fmt.Fprintf(em.w, "M108 T%d\n", tool)
		return err
	default:
		_, err := fmt.Fprintf(em.w, "T%d\n", tool)
		return err
	}
}

func (em *Emitter) writeExtrudeDelta(deltaUm int64, feedrate float64) error {
	deltaMm := float64(deltaUm) / 1000
	em.e += deltaMm
	em.filamentLengthUm += deltaUm
	switch em.dialect {
	case DialectUltiGCode:
		// UltiGCode's firmware computes filament flow itself; the host
		// only signals retract/unretract via feedrate-tagged G1 moves
		// with no E value.
		_, err := fmt.Fprintf(em.w, "G1 F%d\n", int(feedrate))
		return err
	default:
		_, err := fmt.Fprintf(em.w, "G1 F%d E%.5f\n", int(feedrate), em.e)
		return err
	}
}

func (em *Emitter) writeLinearMove(m Move) error {
	if m.FeedrateMmM > 0 {
		em.feedrate = m.FeedrateMmM
	}
	x, y := float64(m.Point.X)/1000, float64(m.Point.Y)/1000

	var zPart string
	if m.HasZ {
		z := float64(m.ZUm) / 1000
		if !em.haveXYZ || z != em.z {
			zPart = fmt.Sprintf(" Z%.3f", z)
			em.z = z
		}
	}

	if m.Kind == MoveExtrude {
		em.e += float64(m.ExtrudeUm) / 1000
		em.filamentLengthUm += m.ExtrudeUm
	}

	em.x, em.y = x, y
	em.haveXYZ = true

	switch {
	case m.Kind == MoveExtrude && em.dialect != DialectUltiGCode:
		_, err := fmt.Fprintf(em.w, "G1 X%.3f Y%.3f%s F%.0f E%.5f\n", x, y, zPart, em.feedrate, em.e)
		return err
	case m.Kind == MoveExtrude:
		_, err := fmt.Fprintf(em.w, "G1 X%.3f Y%.3f%s F%.0f\n", x, y, zPart, em.feedrate)
		return err
	default:
		_, err := fmt.Fprintf(em.w, "G0 X%.3f Y%.3f%s F%.0f\n", x, y, zPart, em.feedrate)
		return err
	}
}

// WriteFooter emits the total-filament/print-time summary comment block
// every dialect writes in the same RepRap-derived comment convention.
func (em *Emitter) WriteFooter() error {
	_, err := fmt.Fprintf(em.w, ";Filament used: %.3fm\n;Estimated print time: %.0fs\n",
		float64(em.filamentLengthUm)/1_000_000, em.printTimeSeconds)
	return err
}
