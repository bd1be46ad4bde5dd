// Package pipeline wires every processing stage together: preSetup
// (config/session bring-up), prepareModel (load + mesh index), slice
// data processing (partition/inset/skin/infill/support per layer), and
// G-code writing.
package pipeline

import (
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/gofff/internal/config"
	"github.com/Faultbox/gofff/internal/gcode"
	"github.com/Faultbox/gofff/internal/geom"
	"github.com/Faultbox/gofff/internal/infill"
	"github.com/Faultbox/gofff/internal/inset"
	"github.com/Faultbox/gofff/internal/logger"
	"github.com/Faultbox/gofff/internal/mesh"
	"github.com/Faultbox/gofff/internal/partition"
	"github.com/Faultbox/gofff/internal/pathorder"
	"github.com/Faultbox/gofff/internal/session"
	"github.com/Faultbox/gofff/internal/skin"
	"github.com/Faultbox/gofff/internal/slicer"
	"github.com/Faultbox/gofff/internal/support"
	fffmath "github.com/Faultbox/gofff/pkg/math"
	"github.com/Faultbox/gofff/pkg/stl"
)

// Pipeline is the fffProcessor: a single Volume's full slice run, from
// loaded model to written G-code.
type Pipeline struct {
	cfg     *config.Config
	session *session.Session
	volume  mesh.Volume
	isFirst bool

	idx      *mesh.MeshIndex
	layerZUm []int64

	// perLayerRegions[i] is layer i's net printable region (outer minus
	// holes, unioned across every part), before any wall has been inset
	// away. Support generation reasons about this raw footprint, since an
	// overhang is a property of the physical outer shell, not the fill
	// boundary left after perimeters are cut away.
	perLayerRegions []geom.PolygonSet
	// perLayerInnermost[i] is layer i's innermost wall boundary (the
	// union, across every part, of each part's inset.Walls.Innermost) —
	// the region skin classification and sparse infill actually operate
	// on, per each part's own walls once buildLayerPaths clips back down
	// to it.
	perLayerInnermost []geom.PolygonSet
	perLayerWalls     [][]inset.Walls
	perLayerParts     [][]partition.Part
	layerPlans        []gcode.LayerPlan
}

// New creates a Pipeline for one object placed on the plate, assigned to
// extruder and sharing sess across every other object on the same plate.
func New(cfg *config.Config, sess *session.Session, extruder int) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		session: sess,
		volume:  mesh.Volume{Extruder: extruder},
		isFirst: sess.IsFirstObject(),
	}
}

// PreSetup validates configuration and logs the resolved settings for
// this run before any file I/O happens.
func (p *Pipeline) PreSetup() error {
	if err := config.Validate(p.cfg); err != nil {
		return err
	}
	if logger.Log != nil {
		logger.Log.Info("pipeline configured",
			zap.Int("layer_thickness_um", p.cfg.Layers.ThicknessUm),
			zap.Int("perimeters", p.cfg.Shells.NumberOfPerimeters),
			zap.String("infill_type", string(p.cfg.Infill.Type)),
			zap.String("output", string(p.cfg.GCode.Output)),
		)
	}
	return nil
}

// stlUnitScaleUm converts one STL file unit into micrometers. STL
// carries no unit metadata; every slicer in the corpus this one is
// modeled on assumes millimeters, so 1 unit = 1000um.
const stlUnitScaleUm = 1000

// PrepareModel loads modelPath and builds its welded, rotated MeshIndex,
// and computes the per-layer Z heights.
func (p *Pipeline) PrepareModel(modelPath string, rotation fffmath.Mat3, translateUm mesh.Point3) error {
	model, err := stl.Load(modelPath, stlUnitScaleUm)
	if err != nil {
		return err
	}
	p.volume.Model = model

	p.idx = mesh.NewMeshIndex(model, mesh.BuildOptions{
		Rotation:        rotation,
		TranslateUm:     translateUm,
		WeldToleranceUm: 10,
	})

	if open := p.idx.OpenEdges(); len(open) > 0 && logger.Log != nil {
		logger.Log.Warn("mesh has open edges", zap.Int("count", len(open)))
	}
	if flipped := p.idx.FlippedNormals(); flipped > 0 && logger.Log != nil {
		logger.Log.Warn("mesh has facets whose stored normal disagrees with its winding order",
			zap.Int("count", flipped))
	}

	min, max := p.idx.Bounds()
	p.layerZUm = computeLayerHeights(min.Z, max.Z, p.cfg.Layers.FirstLayerThicknessUm, p.cfg.Layers.ThicknessUm)
	return nil
}

// computeLayerHeights returns the Z of every layer's top surface, the
// first layer thick enough for bed adhesion and every layer after it at
// the regular thickness.
func computeLayerHeights(minZ, maxZ int64, firstThicknessUm, thicknessUm int) []int64 {
	if firstThicknessUm <= 0 || thicknessUm <= 0 {
		return nil
	}
	var heights []int64
	z := minZ + int64(firstThicknessUm)
	for z <= maxZ {
		heights = append(heights, z)
		z += int64(thicknessUm)
	}
	return heights
}

// ProcessSliceData runs every layer through slicing, partitioning, wall
// generation, skin/infill/support classification, and path ordering,
// leaving p.layerPlans ready for WriteLayerGCode.
func (p *Pipeline) ProcessSliceData() error {
	slices := slicer.SliceLayers(p.idx, p.layerZUm, slicer.Options{RepairToleranceUm: int64(p.cfg.Shells.ExtrusionWidthUm)})

	p.perLayerParts = make([][]partition.Part, len(slices))
	p.perLayerRegions = make([]geom.PolygonSet, len(slices))
	p.perLayerInnermost = make([]geom.PolygonSet, len(slices))
	p.perLayerWalls = make([][]inset.Walls, len(slices))

	for i, s := range slices {
		parts := partition.Partition(s.Contours, partition.Options{
			RepairOverlaps:       true,
			CombBoundaryOffsetUm: float64(p.cfg.Shells.ExtrusionWidthUm),
		})
		p.perLayerParts[i] = parts

		isBottom := i < p.cfg.Shells.NumberOfBottomLayers
		walls := make([]inset.Walls, len(parts))
		var region, innermost geom.PolygonSet
		for pi, part := range parts {
			partRegion := geom.Difference(geom.PolygonSet{part.Outer}, geom.PolygonSet(part.Holes))
			region = geom.Union(region, partRegion)

			w := inset.Generate(partRegion, inset.Options{
				ExtrusionWidthUm:     float64(p.cfg.Shells.ExtrusionWidthUm),
				NumberOfPerimeters:   p.cfg.Shells.NumberOfPerimeters,
				Spiralize:            p.cfg.Layers.ContinuousSpiralOuter,
				IsBottomLayer:        isBottom,
				SpiralizeBottomBoost: p.cfg.Shells.NumberOfBottomLayers,
			})
			walls[pi] = w
			innermost = geom.Union(innermost, w.Innermost)
		}
		p.perLayerWalls[i] = walls
		p.perLayerRegions[i] = region
		p.perLayerInnermost[i] = innermost
	}

	supportRegions := p.computeSupport()
	p.layerPlans = make([]gcode.LayerPlan, len(slices))

	for i := range slices {
		paths := p.buildLayerPaths(i, supportRegions[i])
		cursor := geom.Point{}
		if i > 0 {
			for _, m := range p.layerPlans[i-1].Moves {
				cursor = m.Point
			}
		}
		p.layerPlans[i] = gcode.Plan(paths, p.plannerOptions(i, cursor))
	}

	return nil
}

func (p *Pipeline) computeSupport() []geom.PolygonSet {
	if p.cfg.Support.Extruder < 0 {
		regions := make([]geom.PolygonSet, len(p.perLayerRegions))
		return regions
	}
	return supportRegionsFor(p.perLayerRegions, p.cfg)
}

// buildLayerPaths walks layer i's parts, emitting each part's walls,
// skin, and sparse infill, plus this layer's share of the support
// scaffold. Skin classification runs against the whole layer's innermost
// coverage (perLayerInnermost), computed once per layer in
// ProcessSliceData before any cross-layer comparison happens, but the
// resulting solid/sparse split is clipped back to each part's own
// walls.Innermost so a multi-part layer never fills over a neighboring
// part's territory.
func (p *Pipeline) buildLayerPaths(i int, supportRegion geom.PolygonSet) []pathorder.Path {
	var paths []pathorder.Path

	skinResult := skin.Classify(p.perLayerInnermost, i, skin.Options{
		NumberOfTopLayers:    p.cfg.Shells.NumberOfTopLayers,
		NumberOfBottomLayers: p.cfg.Shells.NumberOfBottomLayers,
	})
	skinOutline := geom.Union(skinResult.Top, skinResult.Bottom)

	var bridge *int
	if len(skinResult.Bottom) > 0 && i > 0 {
		bridge = bridgeAngleDegrees(p.perLayerInnermost[i-1])
	}

	for pi := range p.perLayerParts[i] {
		walls := p.perLayerWalls[i][pi]
		for wi, loop := range walls.Loops {
			pathType := pathorder.TypeWallInner
			if wi == 0 {
				pathType = pathorder.TypeWallOuter
			}
			for _, poly := range loop {
				paths = append(paths, pathorder.Path{Points: poly, Closed: true, Type: pathType})
			}
		}

		partSkin := geom.Intersection(skinOutline, walls.Innermost)
		if len(partSkin) > 0 {
			solidLines := infill.Generate(partSkin, infill.Options{
				Pattern:               infill.Lines,
				LineSpacingUm:         float64(p.cfg.Shells.ExtrusionWidthUm),
				AngleDegrees:          angleForLayer(i),
				BridgeAngleDegrees:    bridge,
				ExtendIntoPerimeterUm: float64(p.cfg.Infill.ExtendIntoPerimeterUm),
			})
			paths = append(paths, linesToPaths(solidLines, pathorder.TypeFill)...)
		}

		if p.cfg.Infill.Percent > 0 {
			sparse := geom.Difference(walls.Innermost, partSkin)
			sparseLines := infill.Generate(sparse, infill.Options{
				Pattern:               infillPattern(p.cfg.Infill.Type),
				LineSpacingUm:         infillSpacingUm(p.cfg.Infill.Percent, p.cfg.Shells.ExtrusionWidthUm),
				AngleDegrees:          p.cfg.Infill.StartingAngle + angleForLayer(i),
				ExtendIntoPerimeterUm: float64(p.cfg.Infill.ExtendIntoPerimeterUm),
			})
			paths = append(paths, linesToPaths(sparseLines, pathorder.TypeFill)...)
		}
	}

	if len(supportRegion) > 0 {
		supportLines := infill.Generate(supportRegion, infill.Options{
			Pattern:       infillPattern(config.InfillType(p.cfg.Support.Type)),
			LineSpacingUm: float64(p.cfg.Support.LineSpacingUm),
		})
		paths = append(paths, linesToPaths(supportLines, pathorder.TypeSupport)...)
	}

	return paths
}

// bridgeAngleDegrees analyzes the previous layer's innermost outline and
// returns the direction of its single longest boundary edge, the
// heuristic span-maximizing angle for a bridge printed just above it: a
// bridge line running parallel to the longest edge below crosses the
// shortest unsupported gap. Returns nil if the layer below is empty (a
// bridge over nothing has no edge to take an angle from).
func bridgeAngleDegrees(below geom.PolygonSet) *int {
	var longestSq float64
	var dx, dy float64
	for _, poly := range below {
		n := len(poly)
		for i := 0; i < n; i++ {
			a, b := poly[i], poly[(i+1)%n]
			edx, edy := float64(b.X-a.X), float64(b.Y-a.Y)
			if lenSq := edx*edx + edy*edy; lenSq > longestSq {
				longestSq, dx, dy = lenSq, edx, edy
			}
		}
	}
	if longestSq == 0 {
		return nil
	}
	angle := int(math.Round(math.Atan2(dy, dx) * 180 / math.Pi))
	angle = ((angle % 180) + 180) % 180
	return &angle
}

func (p *Pipeline) plannerOptions(i int, cursor geom.Point) gcode.PlannerOptions {
	comb := geom.PolygonSet{}
	for _, part := range p.perLayerParts[i] {
		comb = append(comb, part.CombBoundary...)
	}
	return gcode.PlannerOptions{
		LayerIndex:                         i,
		ZUm:                                p.layerZUm[i],
		StartPoint:                         cursor,
		CombBoundary:                       comb,
		ExtrusionWidthUm:                   p.cfg.Shells.ExtrusionWidthUm,
		LayerThicknessUm:                   p.cfg.Layers.ThicknessUm,
		FilamentDiameterUm:                 p.cfg.GCode.FilamentDiameterUm,
		ExtrusionMultiplier:                p.cfg.GCode.ExtrusionMultiplier,
		TravelSpeedMmM:                     mmPerSecToMmPerMin(p.cfg.Speed.Travel),
		PrintSpeedMmM:                      mmPerSecToMmPerMin(p.cfg.Speed.Infill),
		AvoidCrossingPerimeters:            p.cfg.Shells.AvoidCrossingPerimeters,
		MinimumTravelToCauseRetractionUm:   int64(p.cfg.Retract.MinimumTravelToCauseUm),
		MinimumExtrusionBeforeRetractionUm: int64(p.cfg.Retract.MinimumExtrusionBeforeUm),
		RetractionAmountUm:                 int64(p.cfg.Retract.AmountUm),
		RetractionZHopUm:                   int64(p.cfg.Retract.ZHopUm),
		MinimumLayerTimeSeconds:            float64(p.cfg.Cooling.MinimumLayerTimeSeconds),
		MinimumPrintingSpeedMmM:            mmPerSecToMmPerMin(p.cfg.Speed.MinimumPrinting),
		FanSpeedMinPercent:                 p.cfg.Cooling.FanSpeedMinPercent,
		FanSpeedMaxPercent:                 p.cfg.Cooling.FanSpeedMaxPercent,
		FirstLayerToAllowFan:               p.cfg.Cooling.FirstLayerToAllowFan,
	}
}

// Extruder returns the extruder index this Volume was assigned at
// construction.
func (p *Pipeline) Extruder() int { return p.volume.Extruder }

// LayerCount returns how many layers this object slices into, so the
// caller can interleave several objects' WriteLayerGCode calls by index.
func (p *Pipeline) LayerCount() int { return len(p.layerPlans) }

// ZUm returns the top-surface Z of layer i, for a caller that needs to
// plan an inserted pass (a wipe-tower fill) at the same height.
func (p *Pipeline) ZUm(i int) int64 { return p.layerZUm[i] }

// WriteLayerGCode writes this object's start code (only immediately
// before the plate's first object's first layer) followed by layer i's
// planned moves. The caller drives the interleaving across every object
// on the plate and owns the run-wide header, end code, and footer.
func (p *Pipeline) WriteLayerGCode(em *gcode.Emitter, i int) error {
	if i == 0 && p.isFirst {
		if err := em.WriteStartCode(p.cfg.GCode.StartCode); err != nil {
			return err
		}
	}
	return em.WriteLayer(p.layerPlans[i])
}

// Dialect returns the G-code dialect this object's configuration selects,
// so the caller can build one shared Emitter for the whole plate.
func (p *Pipeline) Dialect() gcode.Dialect {
	return dialectFor(p.cfg.GCode.Output)
}

// Finalize returns this object's first-layer footprint, for the caller
// to fold into the plate-wide raft/skirt/wipe structures, and advances
// the session to the next object.
func (p *Pipeline) Finalize() geom.PolygonSet {
	var footprint geom.PolygonSet
	for _, part := range p.perLayerParts[0] {
		footprint = append(footprint, part.Outer)
	}
	p.session.NextObject()
	return footprint
}

func linesToPaths(lines []infill.Line, t pathorder.PathType) []pathorder.Path {
	paths := make([]pathorder.Path, len(lines))
	for i, l := range lines {
		paths[i] = pathorder.Path{Points: []geom.Point{l.A, l.B}, Type: t}
	}
	return paths
}

func mmPerSecToMmPerMin(mmPerSec int) float64 {
	return float64(mmPerSec) * 60
}

func angleForLayer(i int) int {
	if i%2 == 0 {
		return 45
	}
	return 135
}

func infillPattern(t config.InfillType) infill.Pattern {
	if t == config.InfillGrid {
		return infill.Grid
	}
	return infill.Lines
}

func infillSpacingUm(percent, extrusionWidthUm int) float64 {
	if percent <= 0 {
		return 0
	}
	return float64(extrusionWidthUm) * 100 / float64(percent)
}

func dialectFor(o config.OutputType) gcode.Dialect {
	switch o {
	case config.OutputUltiGCode:
		return gcode.DialectUltiGCode
	case config.OutputBFB:
		return gcode.DialectBFB
	case config.OutputMakerBot:
		return gcode.DialectMakerBot
	case config.OutputMach3:
		return gcode.DialectMach3
	default:
		return gcode.DialectRepRap
	}
}

func supportRegionsFor(regions []geom.PolygonSet, cfg *config.Config) []geom.PolygonSet {
	return support.ComputeRegions(regions, support.Options{
		OverhangAllowanceUm: float64(cfg.Shells.ExtrusionWidthUm),
		XYDistanceUm:        float64(cfg.Support.XYDistanceUm),
		LineSpacingUm:       float64(cfg.Support.LineSpacingUm),
		Pattern:             infillPattern(config.InfillType(cfg.Support.Type)),
		ExtrusionWidthUm:    float64(cfg.Shells.ExtrusionWidthUm),
	})
}
