package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ApplyOptionString parses a single "key=value" pair, as passed via the
// CLI's repeatable "-s key=value" flag, and applies it to cfg.
func ApplyOptionString(cfg *Config, kv string) error {
	idx := strings.IndexByte(kv, '=')
	if idx < 0 {
		return errors.Wrapf(ErrUnsupportedOption, "malformed option %q, expected key=value", kv)
	}
	return ApplyOption(cfg, kv[:idx], kv[idx+1:])
}

// ApplyOption sets a single named option
// on cfg. Unknown keys return ErrUnsupportedOption; well-formed values
// that are out of range for their field return ErrConfigOutOfRange from
// Validate, not from here — ApplyOption only rejects malformed literals.
func ApplyOption(cfg *Config, key, value string) error {
	setter, ok := bindOptionSetters(cfg)[key]
	if !ok {
		return errors.Wrapf(ErrUnsupportedOption, "unknown option %q", key)
	}
	if err := setter(cfg, value); err != nil {
		return errors.Wrapf(err, "option %q=%q", key, value)
	}
	return nil
}

type optionSetter func(*Config, string) error

func intSetter(dst *int) optionSetter {
	return func(_ *Config, value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func boolSetter(dst *bool) optionSetter {
	return func(_ *Config, value string) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func floatSetter(dst *float64) optionSetter {
	return func(_ *Config, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func stringSetter(dst *string) optionSetter {
	return func(_ *Config, value string) error {
		*dst = value
		return nil
	}
}

// bindOptionSetters builds the table of every recognized option name from
// bound to cfg's field addresses. It is rebuilt per call since the
// destination pointers depend on which Config instance is being mutated.
func bindOptionSetters(cfg *Config) map[string]optionSetter {
	return map[string]optionSetter{
		"layerThickness_um":                        intSetter(&cfg.Layers.ThicknessUm),
		"firstLayerThickness_um":                    intSetter(&cfg.Layers.FirstLayerThicknessUm),
		"bottomClipAmount_um":                       intSetter(&cfg.Layers.BottomClipAmountUm),
		"continuousSpiralOuterPerimeter":            boolSetter(&cfg.Layers.ContinuousSpiralOuter),
		"extrusionWidth_um":                         intSetter(&cfg.Shells.ExtrusionWidthUm),
		"firstLayerExtrusionWidth_um":               intSetter(&cfg.Shells.FirstLayerExtrusionWidthUm),
		"numberOfPerimeters":                        intSetter(&cfg.Shells.NumberOfPerimeters),
		"numberOfTopLayers":                         intSetter(&cfg.Shells.NumberOfTopLayers),
		"numberOfBottomLayers":                      intSetter(&cfg.Shells.NumberOfBottomLayers),
		"avoidCrossingPerimeters":                   boolSetter(&cfg.Shells.AvoidCrossingPerimeters),
		"infillPercent":                             intSetter(&cfg.Infill.Percent),
		"infillType":                                infillTypeSetter(&cfg.Infill.Type),
		"infillStartingAngle":                       intSetter(&cfg.Infill.StartingAngle),
		"infillExtendIntoPerimeter_um":               intSetter(&cfg.Infill.ExtendIntoPerimeterUm),
		"supportExtruder":                           intSetter(&cfg.Support.Extruder),
		"supportXYDistance_um":                      intSetter(&cfg.Support.XYDistanceUm),
		"supportLineSpacing_um":                     intSetter(&cfg.Support.LineSpacingUm),
		"supportType":                               supportTypeSetter(&cfg.Support.Type),
		"enableRaft":                                boolSetter(&cfg.Raft.Enable),
		"raftBaseThickness_um":                      intSetter(&cfg.Raft.BaseThicknessUm),
		"raftInterfaceThicknes_um":                  intSetter(&cfg.Raft.InterfaceThicknessUm),
		"raftSurfaceLayers":                         intSetter(&cfg.Raft.SurfaceLayers),
		"raftSurfaceThickness_um":                   intSetter(&cfg.Raft.SurfaceThicknessUm),
		"raftAirGap_um":                             intSetter(&cfg.Raft.AirGapUm),
		"raftExtraDistanceAroundPart_um":            intSetter(&cfg.Raft.ExtraDistanceAroundPartUm),
		"numberOfSkirtLoops":                        intSetter(&cfg.Skirt.NumberOfLoops),
		"skirtDistance_um":                          intSetter(&cfg.Skirt.DistanceUm),
		"skirtMinLength_um":                         intSetter(&cfg.Skirt.MinLengthUm),
		"wipeTowerSize_um":                          intSetter(&cfg.Multi.WipeTowerSizeUm),
		"wipeShieldDistanceFromShapes_um":           intSetter(&cfg.Multi.WipeShieldDistanceFromShapesUm),
		"multiVolumeOverlapPercent":                 intSetter(&cfg.Multi.OverlapPercent),
		"retractionAmount_um":                       intSetter(&cfg.Retract.AmountUm),
		"retractionSpeed":                           intSetter(&cfg.Retract.SpeedMmS),
		"retractionZHop":                            intSetter(&cfg.Retract.ZHopUm),
		"retractionAmountOnExtruderSwitch_um":       intSetter(&cfg.Retract.AmountOnExtruderSwitchUm),
		"minimumExtrusionBeforeRetraction_um":       intSetter(&cfg.Retract.MinimumExtrusionBeforeUm),
		"minimumTravelToCauseRetraction_um":         intSetter(&cfg.Retract.MinimumTravelToCauseUm),
		"travelSpeed":                               intSetter(&cfg.Speed.Travel),
		"infillSpeed":                               intSetter(&cfg.Speed.Infill),
		"outsidePerimeterSpeed":                     intSetter(&cfg.Speed.OutsidePerimeter),
		"insidePerimetersSpeed":                     intSetter(&cfg.Speed.InsidePerimeters),
		"supportMaterialSpeed":                      intSetter(&cfg.Speed.SupportMaterial),
		"firstLayerSpeed":                           intSetter(&cfg.Speed.FirstLayer),
		"minimumPrintingSpeed":                      intSetter(&cfg.Speed.MinimumPrinting),
		"minimumLayerTimeSeconds":                   intSetter(&cfg.Cooling.MinimumLayerTimeSeconds),
		"doCoolHeadLift":                            boolSetter(&cfg.Cooling.DoCoolHeadLift),
		"fanSpeedMinPercent":                        intSetter(&cfg.Cooling.FanSpeedMinPercent),
		"fanSpeedMaxPercent":                        intSetter(&cfg.Cooling.FanSpeedMaxPercent),
		"firstLayerToAllowFan":                      intSetter(&cfg.Cooling.FirstLayerToAllowFan),
		"centerObjectInXy":                          boolSetter(&cfg.Placement.CenterObjectInXY),
		"outputType":                                outputTypeSetter(&cfg.GCode.Output),
		"filamentDiameter_um":                       intSetter(&cfg.GCode.FilamentDiameterUm),
		"extrusionMultiplier":                       floatSetter(&cfg.GCode.ExtrusionMultiplier),
		"startCode":                                 stringSetter(&cfg.GCode.StartCode),
		"endCode":                                   stringSetter(&cfg.GCode.EndCode),
	}
}

func infillTypeSetter(dst *InfillType) optionSetter {
	return func(_ *Config, value string) error {
		switch InfillType(strings.ToUpper(value)) {
		case InfillLines:
			*dst = InfillLines
		case InfillGrid:
			*dst = InfillGrid
		default:
			return errors.Wrapf(ErrUnsupportedOption, "infillType %q", value)
		}
		return nil
	}
}

func supportTypeSetter(dst *SupportType) optionSetter {
	return func(_ *Config, value string) error {
		switch SupportType(strings.ToUpper(value)) {
		case SupportGridPattern:
			*dst = SupportGridPattern
		case SupportLinesPattern:
			*dst = SupportLinesPattern
		default:
			return errors.Wrapf(ErrUnsupportedOption, "supportType %q", value)
		}
		return nil
	}
}

func outputTypeSetter(dst *OutputType) optionSetter {
	return func(_ *Config, value string) error {
		switch OutputType(strings.ToUpper(value)) {
		case OutputRepRap, OutputUltiGCode, OutputBFB, OutputMakerBot, OutputMach3:
			*dst = OutputType(strings.ToUpper(value))
		default:
			return errors.Wrapf(ErrUnsupportedOption, "outputType %q", value)
		}
		return nil
	}
}
