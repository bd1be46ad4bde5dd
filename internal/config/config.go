// Package config handles slicer configuration loading and management.
package config

// Config holds all settings that drive one invocation of the slicing
// pipeline. Every length field is in integer micrometers unless its name
// says otherwise; every angle field is in integer degrees.
type Config struct {
	Layers    LayerConfig     `yaml:"layers"`
	Shells    ShellConfig     `yaml:"shells"`
	Infill    InfillConfig    `yaml:"infill"`
	Support   SupportConfig   `yaml:"support"`
	Raft      RaftConfig      `yaml:"raft"`
	Skirt     SkirtConfig     `yaml:"skirt"`
	Multi     MultiConfig     `yaml:"multi"`
	Retract   RetractConfig   `yaml:"retraction"`
	Speed     SpeedConfig     `yaml:"speed"`
	Cooling   CoolingConfig   `yaml:"cooling"`
	Placement PlacementConfig `yaml:"placement"`
	GCode     GCodeConfig     `yaml:"gcode"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LayerConfig controls Z stepping and vase mode.
type LayerConfig struct {
	ThicknessUm           int  `yaml:"layer_thickness_um"`
	FirstLayerThicknessUm int  `yaml:"first_layer_thickness_um"`
	BottomClipAmountUm    int  `yaml:"bottom_clip_amount_um"`
	ContinuousSpiralOuter bool `yaml:"continuous_spiral_outer_perimeter"`
}

// ShellConfig controls perimeters, skins, and extrusion bead width.
type ShellConfig struct {
	ExtrusionWidthUm           int  `yaml:"extrusion_width_um"`
	FirstLayerExtrusionWidthUm int  `yaml:"first_layer_extrusion_width_um"`
	NumberOfPerimeters         int  `yaml:"number_of_perimeters"`
	NumberOfTopLayers          int  `yaml:"number_of_top_layers"`
	NumberOfBottomLayers       int  `yaml:"number_of_bottom_layers"`
	AvoidCrossingPerimeters    bool `yaml:"avoid_crossing_perimeters"`
}

// InfillType selects the sparse-fill pattern.
type InfillType string

const (
	InfillLines InfillType = "LINES"
	InfillGrid  InfillType = "GRID"
)

// InfillConfig controls sparse interior fill.
type InfillConfig struct {
	Percent               int        `yaml:"infill_percent"`
	Type                  InfillType `yaml:"infill_type"`
	StartingAngle         int        `yaml:"infill_starting_angle"`
	ExtendIntoPerimeterUm int        `yaml:"infill_extend_into_perimeter_um"`
}

// SupportType selects the support-fill pattern.
type SupportType string

const (
	SupportGridPattern  SupportType = "GRID"
	SupportLinesPattern SupportType = "LINES"
)

// SupportConfig controls overhang support generation.
type SupportConfig struct {
	Extruder          int         `yaml:"support_extruder"` // -1 disables support
	XYDistanceUm      int         `yaml:"support_xy_distance_um"`
	LineSpacingUm     int         `yaml:"support_line_spacing_um"`
	Type              SupportType `yaml:"support_type"`
	AngleThresholdDeg int         `yaml:"support_angle_threshold_deg"`
	PrintFirst        bool        `yaml:"support_print_first"`
}

// RaftConfig controls raft generation beneath the model.
type RaftConfig struct {
	Enable                    bool `yaml:"enable_raft"`
	BaseThicknessUm           int  `yaml:"raft_base_thickness_um"`
	InterfaceThicknessUm      int  `yaml:"raft_interface_thickness_um"`
	SurfaceLayers             int  `yaml:"raft_surface_layers"`
	SurfaceThicknessUm        int  `yaml:"raft_surface_thickness_um"`
	AirGapUm                  int  `yaml:"raft_air_gap_um"`
	ExtraDistanceAroundPartUm int  `yaml:"raft_extra_distance_around_part_um"`
}

// SkirtConfig controls priming loops printed around layer 0.
type SkirtConfig struct {
	NumberOfLoops int `yaml:"number_of_skirt_loops"`
	DistanceUm    int `yaml:"skirt_distance_um"`
	MinLengthUm   int `yaml:"skirt_min_length_um"`
}

// MultiConfig controls multi-extruder auxiliary structures.
type MultiConfig struct {
	WipeTowerSizeUm                int `yaml:"wipe_tower_size_um"`
	WipeShieldDistanceFromShapesUm int `yaml:"wipe_shield_distance_from_shapes_um"`
	OverlapPercent                 int `yaml:"multi_volume_overlap_percent"`
}

// RetractConfig controls retraction, Z-hop, and combing thresholds.
type RetractConfig struct {
	AmountUm                 int `yaml:"retraction_amount_um"`
	SpeedMmS                 int `yaml:"retraction_speed"`
	ZHopUm                   int `yaml:"retraction_z_hop_um"`
	AmountOnExtruderSwitchUm int `yaml:"retraction_amount_on_extruder_switch_um"`
	MinimumExtrusionBeforeUm int `yaml:"minimum_extrusion_before_retraction_um"`
	MinimumTravelToCauseUm   int `yaml:"minimum_travel_to_cause_retraction_um"`
}

// SpeedConfig controls feed rates in mm/s.
type SpeedConfig struct {
	Travel           int `yaml:"travel_speed"`
	Infill           int `yaml:"infill_speed"`
	OutsidePerimeter int `yaml:"outside_perimeter_speed"`
	InsidePerimeters int `yaml:"inside_perimeters_speed"`
	SupportMaterial  int `yaml:"support_material_speed"`
	FirstLayer       int `yaml:"first_layer_speed"`
	MinimumPrinting  int `yaml:"minimum_printing_speed"`
}

// CoolingConfig controls the part-cooling fan schedule.
type CoolingConfig struct {
	MinimumLayerTimeSeconds int  `yaml:"minimum_layer_time_seconds"`
	DoCoolHeadLift          bool `yaml:"do_cool_head_lift"`
	FanSpeedMinPercent      int  `yaml:"fan_speed_min_percent"`
	FanSpeedMaxPercent      int  `yaml:"fan_speed_max_percent"`
	FirstLayerToAllowFan    int  `yaml:"first_layer_to_allow_fan"`
}

// PlacementConfig controls model rotation and bed placement.
type PlacementConfig struct {
	RotationMatrix   [3][3]float64 `yaml:"model_rotation_matrix"`
	PositionUm       [2]int        `yaml:"position_to_place_object_center_um"`
	CenterObjectInXY bool          `yaml:"center_object_in_xy"`
}

// OutputType selects the G-code dialect emitted by GCodeEmitter.
type OutputType string

const (
	OutputRepRap    OutputType = "REPRAP"
	OutputUltiGCode OutputType = "ULTIGCODE"
	OutputBFB       OutputType = "BFB"
	OutputMakerBot  OutputType = "MAKERBOT"
	OutputMach3     OutputType = "MACH3"
)

// GCodeConfig controls dialect, filament mapping, and user preamble/postamble.
type GCodeConfig struct {
	Output              OutputType `yaml:"output_type"`
	FilamentDiameterUm  int        `yaml:"filament_diameter_um"`
	ExtrusionMultiplier float64    `yaml:"extrusion_multiplier"`
	StartCode           string     `yaml:"start_code"`
	EndCode             string     `yaml:"end_code"`
}

// LoggingConfig mirrors the ambient logger's settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values, modeled on
// common FFF slicer defaults for a 0.4mm nozzle.
func Default() *Config {
	return &Config{
		Layers: LayerConfig{
			ThicknessUm:           200,
			FirstLayerThicknessUm: 300,
		},
		Shells: ShellConfig{
			ExtrusionWidthUm:           400,
			FirstLayerExtrusionWidthUm: 400,
			NumberOfPerimeters:         2,
			NumberOfTopLayers:          6,
			NumberOfBottomLayers:       6,
			AvoidCrossingPerimeters:    true,
		},
		Infill: InfillConfig{
			Percent:               20,
			Type:                  InfillLines,
			StartingAngle:         45,
			ExtendIntoPerimeterUm: 200,
		},
		Support: SupportConfig{
			Extruder:          -1,
			XYDistanceUm:      600,
			LineSpacingUm:     2000,
			Type:              SupportLinesPattern,
			AngleThresholdDeg: 45,
			PrintFirst:        false,
		},
		Raft: RaftConfig{
			Enable:                    false,
			BaseThicknessUm:           300,
			InterfaceThicknessUm:      200,
			SurfaceLayers:             2,
			SurfaceThicknessUm:        200,
			AirGapUm:                  200,
			ExtraDistanceAroundPartUm: 5000,
		},
		Skirt: SkirtConfig{
			NumberOfLoops: 1,
			DistanceUm:    3000,
			MinLengthUm:   0,
		},
		Multi: MultiConfig{
			WipeTowerSizeUm:                5000,
			WipeShieldDistanceFromShapesUm: 2000,
			OverlapPercent:                 0,
		},
		Retract: RetractConfig{
			AmountUm:                 4500,
			SpeedMmS:                 45,
			ZHopUm:                   0,
			AmountOnExtruderSwitchUm: 16000,
			MinimumExtrusionBeforeUm: 0,
			MinimumTravelToCauseUm:   1500,
		},
		Speed: SpeedConfig{
			Travel:           150,
			Infill:           60,
			OutsidePerimeter: 30,
			InsidePerimeters: 60,
			SupportMaterial:  60,
			FirstLayer:       20,
			MinimumPrinting:  10,
		},
		Cooling: CoolingConfig{
			MinimumLayerTimeSeconds: 5,
			DoCoolHeadLift:          false,
			FanSpeedMinPercent:      100,
			FanSpeedMaxPercent:      100,
			FirstLayerToAllowFan:    2,
		},
		Placement: PlacementConfig{
			RotationMatrix: [3][3]float64{
				{1, 0, 0},
				{0, 1, 0},
				{0, 0, 1},
			},
			CenterObjectInXY: true,
		},
		GCode: GCodeConfig{
			Output:              OutputRepRap,
			FilamentDiameterUm:  1750,
			ExtrusionMultiplier: 1.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
