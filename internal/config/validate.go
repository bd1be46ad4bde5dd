package config

import "github.com/pkg/errors"

// Validate performs pre-flight range checks:
// values that would make geometry impossible are rejected before any
// file is loaded.
func Validate(cfg *Config) error {
	if cfg.Layers.ThicknessUm <= 0 {
		return errors.Wrap(ErrConfigOutOfRange, "layerThickness_um must be positive")
	}
	if cfg.Layers.FirstLayerThicknessUm <= 0 {
		return errors.Wrap(ErrConfigOutOfRange, "firstLayerThickness_um must be positive")
	}
	if cfg.Shells.ExtrusionWidthUm <= 0 {
		return errors.Wrap(ErrConfigOutOfRange, "extrusionWidth_um must be positive")
	}
	if cfg.Shells.NumberOfPerimeters < 0 {
		return errors.Wrap(ErrConfigOutOfRange, "numberOfPerimeters must not be negative")
	}
	if cfg.Shells.NumberOfTopLayers < 0 || cfg.Shells.NumberOfBottomLayers < 0 {
		return errors.Wrap(ErrConfigOutOfRange, "numberOfTopLayers/numberOfBottomLayers must not be negative")
	}
	if cfg.Infill.Percent < 0 || cfg.Infill.Percent > 100 {
		return errors.Wrap(ErrConfigOutOfRange, "infillPercent must be within [0,100]")
	}
	if cfg.Support.LineSpacingUm <= 0 {
		return errors.Wrap(ErrConfigOutOfRange, "supportLineSpacing_um must be positive")
	}
	if cfg.Skirt.NumberOfLoops < 0 {
		return errors.Wrap(ErrConfigOutOfRange, "numberOfSkirtLoops must not be negative")
	}
	if cfg.Retract.SpeedMmS <= 0 {
		return errors.Wrap(ErrConfigOutOfRange, "retractionSpeed must be positive")
	}
	if cfg.Speed.Travel <= 0 || cfg.Speed.MinimumPrinting <= 0 {
		return errors.Wrap(ErrConfigOutOfRange, "travelSpeed and minimumPrintingSpeed must be positive")
	}
	if cfg.Cooling.FanSpeedMinPercent < 0 || cfg.Cooling.FanSpeedMaxPercent > 100 ||
		cfg.Cooling.FanSpeedMinPercent > cfg.Cooling.FanSpeedMaxPercent {
		return errors.Wrap(ErrConfigOutOfRange, "fan speed percentages must satisfy 0 <= min <= max <= 100")
	}
	if cfg.GCode.FilamentDiameterUm <= 0 {
		return errors.Wrap(ErrConfigOutOfRange, "filamentDiameter_um must be positive")
	}
	return nil
}

// WipeTowerDisabled implements the Open Question (a) resolution: any
// wipeTowerSize_um <= 1 is treated as "disabled" rather than as a
// degenerate 1-micrometer tower.
func (c *Config) WipeTowerDisabled() bool {
	return c.Multi.WipeTowerSizeUm <= 1
}
