// slicer is the command-line entry point for the FFF slicing pipeline:
// it loads configuration, runs every input model through its own
// Pipeline, composes the plate-level raft/skirt structures across all of
// them, and writes one interleaved G-code stream — switching extruders
// and pausing at the wipe tower exactly where the plate's objects
// actually change material — to a single output file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/gofff/internal/config"
	"github.com/Faultbox/gofff/internal/gcode"
	"github.com/Faultbox/gofff/internal/geom"
	"github.com/Faultbox/gofff/internal/infill"
	"github.com/Faultbox/gofff/internal/logger"
	"github.com/Faultbox/gofff/internal/mesh"
	"github.com/Faultbox/gofff/internal/pathorder"
	"github.com/Faultbox/gofff/internal/pipeline"
	"github.com/Faultbox/gofff/internal/session"
	"github.com/Faultbox/gofff/internal/structures"
	fffmath "github.com/Faultbox/gofff/pkg/math"
)

var (
	flagOutput    = flag.String("o", "out.gcode", "output G-code file path")
	flagExtruders = flag.String("e", "", "comma-separated extruder index per input model, e.g. 0,1 (default 0 for every object)")
)

func main() {
	config.ParseFlags()

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: slicer [-config file] [-s key=value]... [-e 0,1] [-o out.gcode] model.stl [model2.stl ...]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, logger.PerRunLogPath(cfg.Logging.LogFile, *flagOutput)); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Log.Sync()

	if err := run(cfg, inputs, *flagOutput, parseExtruders(*flagExtruders, len(inputs))); err != nil {
		logger.Log.Error("slicing failed", zap.Error(err))
		os.Exit(1)
	}
}

// parseExtruders splits a "-e" flag value into one extruder index per
// object, defaulting any object the flag didn't cover (including all of
// them, when the flag is empty) to extruder 0.
func parseExtruders(flagValue string, n int) []int {
	extruders := make([]int, n)
	if flagValue == "" {
		return extruders
	}
	parts := strings.Split(flagValue, ",")
	for i := 0; i < n && i < len(parts); i++ {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[i])); err == nil {
			extruders[i] = v
		}
	}
	return extruders
}

func run(cfg *config.Config, inputs []string, outputPath string, extruders []int) error {
	sess := session.New()

	var footprints []geom.PolygonSet
	pipelines := make([]*pipeline.Pipeline, len(inputs))

	for i, path := range inputs {
		p := pipeline.New(cfg, sess, extruders[i])
		if err := p.PreSetup(); err != nil {
			return fmt.Errorf("preparing %s: %w", path, err)
		}

		rotation := rotationFromConfig(cfg)
		translate := placementFor(cfg, i)
		if err := p.PrepareModel(path, rotation, translate); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if err := p.ProcessSliceData(); err != nil {
			return fmt.Errorf("slicing %s: %w", path, err)
		}

		footprints = append(footprints, p.Finalize())
		pipelines[i] = p

		logger.Log.Info("object processed", zap.String("file", path), zap.Int("index", i), zap.Int("extruder", extruders[i]))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	dialect := gcode.DialectRepRap
	if len(pipelines) > 0 {
		dialect = pipelines[0].Dialect()
	}
	em := gcode.NewEmitter(out, dialect)
	if err := em.WriteHeader(); err != nil {
		return err
	}

	var plate geom.PolygonSet
	for _, f := range footprints {
		plate = geom.Union(plate, f)
	}

	if err := writePlateStructures(em, cfg, plate); err != nil {
		return err
	}

	if err := writeInterleavedLayers(em, cfg, pipelines, plate); err != nil {
		return err
	}

	if err := em.WriteEndCode(cfg.GCode.EndCode); err != nil {
		return err
	}
	if err := em.WriteFooter(); err != nil {
		return err
	}

	if err := cfg.SaveTo(effectiveConfigPath(outputPath)); err != nil {
		logger.Log.Warn("failed to save effective config", zap.Error(err))
	}

	logger.Log.Info("slicing complete", zap.String("output", outputPath), zap.Int("objects", len(inputs)))
	return nil
}

// effectiveConfigPath names the sidecar YAML file capturing this run's
// merged defaults/file/-s settings, saved next to the G-code output so
// two runs' effective configs can be diffed for determinism.
func effectiveConfigPath(outputPath string) string {
	return outputPath + ".config.yaml"
}

// writePlateStructures emits the raft (as real, fully extruded layers
// beneath the model, if enabled) and the skirt around the plate's
// combined first-layer footprint, ahead of any object's own G-code. The
// skirt still prints at its configured first-layer Z regardless of
// whether a raft is enabled; coordinating the skirt onto the raft's own
// top surface would need the skirt to know the raft's height before the
// raft has been built, which this pass doesn't attempt.
func writePlateStructures(em *gcode.Emitter, cfg *config.Config, plate geom.PolygonSet) error {
	if cfg.Raft.Enable {
		if _, err := writeRaftLayers(em, cfg, plate); err != nil {
			return err
		}
	}

	skirt := structures.BuildSkirt(plate, structures.SkirtOptions{
		NumberOfLoops:    cfg.Skirt.NumberOfLoops,
		DistanceUm:       float64(cfg.Skirt.DistanceUm),
		MinLengthUm:      float64(cfg.Skirt.MinLengthUm),
		ExtrusionWidthUm: float64(cfg.Shells.ExtrusionWidthUm),
	})
	if len(skirt) > 0 {
		var paths []pathorder.Path
		for _, loop := range skirt {
			for _, poly := range loop {
				paths = append(paths, pathorder.Path{Points: poly, Closed: true, Type: pathorder.TypeSkirt})
			}
		}
		ordered := pathorder.Order(paths, geom.Point{})
		plan := gcode.Plan(ordered, gcode.PlannerOptions{
			ExtrusionWidthUm:    cfg.Shells.FirstLayerExtrusionWidthUm,
			LayerThicknessUm:    cfg.Layers.FirstLayerThicknessUm,
			FilamentDiameterUm:  cfg.GCode.FilamentDiameterUm,
			ExtrusionMultiplier: cfg.GCode.ExtrusionMultiplier,
			TravelSpeedMmM:      mmPerSecToMmPerMin(cfg.Speed.Travel),
			PrintSpeedMmM:       mmPerSecToMmPerMin(cfg.Speed.FirstLayer),
			ZUm:                 int64(cfg.Layers.FirstLayerThicknessUm),
			FanSpeedMinPercent:  cfg.Cooling.FanSpeedMinPercent,
			FanSpeedMaxPercent:  cfg.Cooling.FanSpeedMaxPercent,
		})
		if err := em.WriteLayer(plan); err != nil {
			return err
		}
	}

	return nil
}

// raftOffsetUm is how far above the bed a model's own layer 0 sits once
// a raft is enabled: the raft's own stacked thickness plus the air gap
// left between its top surface and the model. It depends only on
// configuration, so placementFor can apply it to every object's Z before
// slicing even starts, while the raft's own G-code (which needs each
// object's sliced first-layer footprint) is written later once
// Finalize has run.
func raftOffsetUm(cfg *config.Config) int64 {
	if !cfg.Raft.Enable {
		return 0
	}
	return int64(cfg.Raft.BaseThicknessUm + cfg.Raft.InterfaceThicknessUm +
		cfg.Raft.SurfaceLayers*cfg.Raft.SurfaceThicknessUm + cfg.Raft.AirGapUm)
}

// writeRaftLayers emits every raft layer as a real, extruded LayerPlan
// stacked from the bed upward, and returns the Z of the raft's own top
// surface. LayerIndex runs from -len(raft) at the bottom raft layer up to
// -1 at the top one, so raft layers never collide with an object's own
// zero-based layer indices in log output.
func writeRaftLayers(em *gcode.Emitter, cfg *config.Config, plate geom.PolygonSet) (int64, error) {
	raft := structures.BuildRaft(plate, structures.RaftOptions{
		BaseThicknessUm:           cfg.Raft.BaseThicknessUm,
		InterfaceThicknessUm:      cfg.Raft.InterfaceThicknessUm,
		SurfaceLayers:             cfg.Raft.SurfaceLayers,
		SurfaceThicknessUm:        cfg.Raft.SurfaceThicknessUm,
		AirGapUm:                  cfg.Raft.AirGapUm,
		ExtraDistanceAroundPartUm: float64(cfg.Raft.ExtraDistanceAroundPartUm),
	})

	var zUm int64
	for i, layer := range raft {
		zUm += int64(layer.ThicknessUm)

		var paths []pathorder.Path
		for _, poly := range layer.Outline {
			paths = append(paths, pathorder.Path{Points: poly, Closed: true, Type: pathorder.TypeRaft})
		}
		lines := infill.Generate(layer.Outline, infill.Options{
			Pattern:       infill.Lines,
			LineSpacingUm: float64(cfg.Shells.ExtrusionWidthUm),
			AngleDegrees:  raftAngleForLayer(i),
		})
		for _, l := range lines {
			paths = append(paths, pathorder.Path{Points: []geom.Point{l.A, l.B}, Type: pathorder.TypeRaft})
		}

		ordered := pathorder.Order(paths, geom.Point{})
		plan := gcode.Plan(ordered, gcode.PlannerOptions{
			LayerIndex:          -(len(raft) - i),
			ZUm:                 zUm,
			ExtrusionWidthUm:    cfg.Shells.ExtrusionWidthUm,
			LayerThicknessUm:    layer.ThicknessUm,
			FilamentDiameterUm:  cfg.GCode.FilamentDiameterUm,
			ExtrusionMultiplier: cfg.GCode.ExtrusionMultiplier,
			TravelSpeedMmM:      mmPerSecToMmPerMin(cfg.Speed.Travel),
			PrintSpeedMmM:       mmPerSecToMmPerMin(cfg.Speed.FirstLayer),
			FanSpeedMinPercent:  cfg.Cooling.FanSpeedMinPercent,
			FanSpeedMaxPercent:  cfg.Cooling.FanSpeedMaxPercent,
		})
		if err := em.WriteLayer(plan); err != nil {
			return 0, err
		}
	}
	return zUm, nil
}

func raftAngleForLayer(i int) int {
	if i%2 == 0 {
		return 0
	}
	return 90
}

// writeInterleavedLayers walks every pipeline's layers in lockstep,
// switching extruders (and printing a wipe-tower pass to purge and prime
// the new one) at the exact layer an object requiring a different
// extruder starts, instead of emitting one object's full stack before
// moving to the next.
func writeInterleavedLayers(em *gcode.Emitter, cfg *config.Config, pipelines []*pipeline.Pipeline, plate geom.PolygonSet) error {
	maxLayers := 0
	for _, p := range pipelines {
		if n := p.LayerCount(); n > maxLayers {
			maxLayers = n
		}
	}

	activeExtruder := -1
	for layer := 0; layer < maxLayers; layer++ {
		for _, p := range pipelines {
			if layer >= p.LayerCount() {
				continue
			}
			if p.Extruder() != activeExtruder {
				retract := int64(0)
				if activeExtruder != -1 {
					retract = int64(cfg.Retract.AmountOnExtruderSwitchUm)
				}
				if err := em.SwitchExtruder(p.Extruder(), retract); err != nil {
					return err
				}
				if activeExtruder != -1 {
					if err := writeWipeTowerPass(em, cfg, plate, p.ZUm(layer)); err != nil {
						return err
					}
				}
				activeExtruder = p.Extruder()
			}
			if err := p.WriteLayerGCode(em, layer); err != nil {
				return fmt.Errorf("writing layer %d: %w", layer, err)
			}
		}
	}
	return nil
}

// writeWipeTowerPass fills one layer's worth of the wipe tower at zUm
// and emits it as bare moves, not a full LayerPlan: it happens mid-layer
// at an extruder switch, not on its own layer boundary, so it must not
// carry its own ;LAYER: header.
func writeWipeTowerPass(em *gcode.Emitter, cfg *config.Config, plate geom.PolygonSet, zUm int64) error {
	if cfg.WipeTowerDisabled() {
		return nil
	}
	min, _, ok := plate.BoundingBox()
	if !ok {
		return nil
	}
	tower := structures.BuildWipeTower(structures.WipeTowerOptions{
		SizeUm:   cfg.Multi.WipeTowerSizeUm,
		BedMinX:  min.X,
		BedMinY:  min.Y,
		MarginUm: 5000,
	})
	if tower == nil {
		return nil
	}

	var paths []pathorder.Path
	paths = append(paths, pathorder.Path{Points: tower, Closed: true, Type: pathorder.TypeWipeTower})
	lines := infill.Generate(geom.PolygonSet{tower}, infill.Options{
		Pattern:       infill.Lines,
		LineSpacingUm: float64(cfg.Shells.ExtrusionWidthUm),
		AngleDegrees:  45,
	})
	for _, l := range lines {
		paths = append(paths, pathorder.Path{Points: []geom.Point{l.A, l.B}, Type: pathorder.TypeWipeTower})
	}

	ordered := pathorder.Order(paths, geom.Point{})
	plan := gcode.Plan(ordered, gcode.PlannerOptions{
		ZUm:                 zUm,
		ExtrusionWidthUm:    cfg.Shells.ExtrusionWidthUm,
		LayerThicknessUm:    cfg.Layers.ThicknessUm,
		FilamentDiameterUm:  cfg.GCode.FilamentDiameterUm,
		ExtrusionMultiplier: cfg.GCode.ExtrusionMultiplier,
		TravelSpeedMmM:      mmPerSecToMmPerMin(cfg.Speed.Travel),
		PrintSpeedMmM:       mmPerSecToMmPerMin(cfg.Speed.Infill),
		FanSpeedMinPercent:  cfg.Cooling.FanSpeedMinPercent,
		FanSpeedMaxPercent:  cfg.Cooling.FanSpeedMaxPercent,
	})
	return em.WriteMoves(plan.Moves)
}

func mmPerSecToMmPerMin(mmPerSec int) float64 {
	return float64(mmPerSec) * 60
}

func rotationFromConfig(cfg *config.Config) fffmath.Mat3 {
	m := cfg.Placement.RotationMatrix
	return fffmath.Mat3{
		{m[0][0], m[0][1], m[0][2]},
		{m[1][0], m[1][1], m[1][2]},
		{m[2][0], m[2][1], m[2][2]},
	}
}

// placementFor spaces multiple objects out along X so they don't
// overlap on the plate when CenterObjectInXY is set, and lifts every
// object's mesh by raftOffsetUm so slicing (and the layer heights it
// derives from the mesh's own bounds) already accounts for a raft's
// stacked thickness and air gap when one is enabled.
func placementFor(cfg *config.Config, index int) mesh.Point3 {
	x := int64(cfg.Placement.PositionUm[0])
	y := int64(cfg.Placement.PositionUm[1])
	if cfg.Placement.CenterObjectInXY {
		x += int64(index) * 60000
	}
	return mesh.Point3{X: x, Y: y, Z: raftOffsetUm(cfg)}
}
