package schema

import "github.com/aotfits/aot/internal/types"

// Enumerated values of discriminator and status fields.
const (
	TelescopeTypeMain = "Main Telescope"
	TelescopeTypeLLT  = "Laser Launch Telescope"

	SegmentTypeMonolithic = "Monolithic"
	SegmentTypeHexagon    = "Hexagon"
	SegmentTypeCircle     = "Circle"

	SourceTypeScienceStar            = "Science Star"
	SourceTypeNaturalGuideStar       = "Natural Guide Star"
	SourceTypeSodiumLaserGuideStar   = "Sodium Laser Guide Star"
	SourceTypeRayleighLaserGuideStar = "Rayleigh Laser Guide Star"

	WavefrontSensorTypeShackHartmann = "Shack-Hartmann"
	WavefrontSensorTypePyramid       = "Pyramid"

	WavefrontCorrectorTypeDM  = "Deformable Mirror"
	WavefrontCorrectorTypeTTM = "Tip-Tilt Mirror"
	WavefrontCorrectorTypeLS  = "Linear Stage"

	LoopTypeControl = "Control Loop"
	LoopTypeOffload = "Offload Loop"

	LoopStatusOpen   = "Open"
	LoopStatusClosed = "Closed"
)

type fieldOption func(*Field)

func mandatory(f *Field) { f.Mandatory = true }

func describe(text string) fieldOption {
	return func(f *Field) { f.Description = text }
}

func oneOf(values ...string) fieldOption {
	return func(f *Field) { f.Allowed = values }
}

func col(name string, kind types.Kind, unit Unit, opts ...fieldOption) Field {
	f := Field{Name: name, Kind: kind, Unit: unit}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func str(name string, opts ...fieldOption) Field {
	return col(name, types.KindString, UnitDimensionless, opts...)
}

func flt(name string, unit Unit, opts ...fieldOption) Field {
	return col(name, types.KindFloat, unit, opts...)
}

func integer(name string, unit Unit, opts ...fieldOption) Field {
	return col(name, types.KindInteger, unit, opts...)
}

func list(name string, unit Unit, opts ...fieldOption) Field {
	return col(name, types.KindList, unit, opts...)
}

// uid is the identity field of a mandatory table.
func uid() Field {
	return Field{
		Name:        FieldUID,
		Kind:        types.KindString,
		Unit:        UnitDimensionless,
		Mandatory:   true,
		Unique:      true,
		Description: "Unique identifier of the row",
	}
}

// extends is the identity field of a secondary table: it repeats the UID of
// the parent row the secondary row extends.
func extends(parent TableID) Field {
	f := uid()
	f.References = parent
	f.Description = "UID of the " + parent.String() + " row this row extends"
	return f
}

// definitions returns the field lists of every table. Called once when the
// registry is built.
func definitions() map[TableID][]Field {
	readoutNoise := Mul(UnitElectrons, Inv(UnitSeconds), Inv(UnitPixels))

	return map[TableID][]Field{
		TimeTable: {
			uid(),
			list("TIMESTAMPS", UnitSeconds, describe("Unix timestamps of each frame")),
			list("FRAME_NUMBERS", UnitCount),
		},
		GeometryTable: {
			uid(),
			ref(TimeReference, false, ""),
			list("ROTATION", UnitRadians),
			list("TRANSLATION_X", UnitMeters),
			list("TRANSLATION_Y", UnitMeters),
			list("MAGNIFICATION_X", UnitDimensionless),
			list("MAGNIFICATION_Y", UnitDimensionless),
		},
		AtmosphericParametersTable: {
			uid(),
			flt("WAVELENGTH", UnitMeters),
			ref(TimeReference, false, ""),
			list("R0", UnitMeters, describe("Fried parameter")),
			list("FWHM", UnitArcsec, describe("Seeing")),
			list("TAU0", UnitSeconds, describe("Coherence time")),
			list("THETA0", UnitRadians, describe("Isoplanatic angle")),
			str("LAYERS_WEIGHT"),
			str("LAYERS_HEIGHT"),
			str("LAYERS_LO"),
			str("LAYERS_WIND_SPEED"),
			str("LAYERS_WIND_DIRECTION"),
			ref(GeometryReference, false, ""),
		},
		AberrationsTable: {
			uid(),
			str("MODES", mandatory),
			str("COEFFICIENTS", mandatory),
			list("X_OFFSETS", UnitRadians),
			list("Y_OFFSETS", UnitRadians),
		},
		TelescopesTable: {
			uid(),
			str(FieldType, mandatory, oneOf(TelescopeTypeMain, TelescopeTypeLLT)),
			flt("LATITUDE", UnitDegrees),
			flt("LONGITUDE", UnitDegrees),
			flt("ELEVATION", UnitDegrees),
			flt("AZIMUTH", UnitDegrees),
			flt("PARALLACTIC", UnitDegrees),
			str("PUPIL_MASK"),
			flt("PUPIL_ANGLE", UnitRadians),
			flt("ENCLOSING_D", UnitMeters),
			flt("INSCRIBED_D", UnitMeters),
			flt("OBSTRUCTION_D", UnitMeters),
			str("SEGMENT_TYPE", mandatory, oneOf(SegmentTypeMonolithic, SegmentTypeHexagon, SegmentTypeCircle)),
			flt("SEGMENT_SIZE", UnitMeters),
			list("SEGMENTS_X", UnitMeters),
			list("SEGMENTS_Y", UnitMeters),
			ref(GeometryReference, false, ""),
			ref(AberrationReference, false, ""),
		},
		SourcesTable: {
			uid(),
			str(FieldType, mandatory, oneOf(
				SourceTypeScienceStar,
				SourceTypeNaturalGuideStar,
				SourceTypeSodiumLaserGuideStar,
				SourceTypeRayleighLaserGuideStar,
			)),
			flt("RIGHT_ASCENSION", UnitDegrees),
			flt("DECLINATION", UnitDegrees),
			flt("ELEVATION_OFFSET", UnitDegrees),
			flt("AZIMUTH_OFFSET", UnitDegrees),
			flt("WIDTH", UnitRadians),
		},
		SourcesSodiumLGSTable: {
			extends(SourcesTable),
			flt("HEIGHT", UnitMeters),
			str("PROFILE"),
			list("ALTITUDES", UnitMeters),
			ref(LaserLaunchTelescopeReference, false, "Laser launch telescope of the guide star"),
		},
		SourcesRayleighLGSTable: {
			extends(SourcesTable),
			flt("DISTANCE", UnitMeters),
			flt("DEPTH", UnitMeters),
			ref(LaserLaunchTelescopeReference, false, "Laser launch telescope of the guide star"),
		},
		DetectorsTable: {
			uid(),
			str(FieldType),
			str("SAMPLING_TECHNIQUE"),
			str("SHUTTER_TYPE"),
			str("FLAT_FIELD"),
			flt("READOUT_NOISE", readoutNoise),
			str("PIXEL_INTENSITIES"),
			flt("INTEGRATION_TIME", UnitSeconds),
			integer("COADDS", UnitCount),
			str("DARK"),
			str("WEIGHT_MAP"),
			flt("QUANTUM_EFFICIENCY", UnitDimensionless),
			flt("PIXEL_SCALE", Mul(UnitRadians, Inv(UnitPixels))),
			integer("BINNING", UnitCount),
			flt("BANDWIDTH", UnitMeters),
			list("TRANSMISSION_WAVELENGTH", UnitMeters),
			list("TRANSMISSION", UnitDimensionless),
			str("SKY_BACKGROUND"),
			flt("GAIN", UnitElectrons),
			flt("EXCESS_NOISE", UnitElectrons),
			str("FILTER"),
			str("BAD_PIXEL_MAP"),
			flt("DYNAMIC_RANGE", UnitDecibels),
			col("READOUT_RATE", types.KindString, Mul(UnitPixels, Inv(UnitSeconds))),
			col("FRAME_RATE", types.KindString, Mul(UnitFrame, Inv(UnitSeconds))),
			ref(GeometryReference, false, ""),
		},
		ScoringCamerasTable: {
			uid(),
			str("PUPIL_MASK"),
			flt("WAVELENGTH", UnitMeters),
			ref(GeometryReference, false, ""),
			ref(DetectorReference, false, ""),
			ref(AberrationReference, false, ""),
		},
		WavefrontSensorsTable: {
			uid(),
			str(FieldType, mandatory, oneOf(WavefrontSensorTypeShackHartmann, WavefrontSensorTypePyramid)),
			ref(SourceReference, true, "Source observed by the sensor"),
			integer("DIMENSIONS", UnitCount, mandatory),
			integer("N_VALID_SUBAPERTURES", UnitCount, mandatory),
			str("MEASUREMENTS"),
			str("REF_MEASUREMENTS"),
			str("SUBAPERTURE_MASK"),
			list("MASK_X_OFFSETS", UnitPixels),
			list("MASK_Y_OFFSETS", UnitPixels),
			col("SUBAPERTURE_SIZE", types.KindString, UnitPixels),
			str("SUBAPERTURE_INTENSITIES"),
			flt("WAVELENGTH", UnitMeters),
			str("OPTICAL_GAIN"),
			ref(GeometryReference, false, ""),
			ref(DetectorReference, false, ""),
			ref(AberrationReference, false, ""),
			ref(NCPAReference, false, "Non-common path aberration"),
		},
		WavefrontSensorsShackHartmannTable: {
			extends(WavefrontSensorsTable),
			str("CENTROIDING_ALGORITHM"),
			str("CENTROID_GAINS"),
			str("SPOT_FWHM"),
		},
		WavefrontSensorsPyramidTable: {
			extends(WavefrontSensorsTable),
			integer("N_SIDES", UnitCount, mandatory),
			flt("MODULATION", UnitMeters),
		},
		WavefrontCorrectorsTable: {
			uid(),
			str(FieldType, mandatory, oneOf(WavefrontCorrectorTypeDM, WavefrontCorrectorTypeTTM, WavefrontCorrectorTypeLS)),
			ref(TelescopeReference, true, "Telescope the corrector belongs to"),
			integer("N_VALID_ACTUATORS", UnitCount),
			str("PUPIL_MASK"),
			list("TFZ_NUM", UnitDimensionless),
			list("TFZ_DEN", UnitDimensionless),
			ref(GeometryReference, false, ""),
			ref(AberrationReference, false, ""),
		},
		WavefrontCorrectorsDMTable: {
			extends(WavefrontCorrectorsTable),
			list("ACTUATORS_X", UnitMeters),
			list("ACTUATORS_Y", UnitMeters),
			str("INFLUENCE_FUNCTION"),
			flt("STROKE", UnitMeters),
		},
		LoopsTable: {
			uid(),
			str(FieldType, mandatory, oneOf(LoopTypeControl, LoopTypeOffload)),
			ref(LoopsCommandedReference, true, "Wavefront corrector commanded by the loop"),
			ref(TimeReference, false, ""),
			str("STATUS", oneOf(LoopStatusOpen, LoopStatusClosed)),
			str("COMMANDS"),
			str("REF_COMMANDS"),
			flt("FRAMERATE", UnitHertz),
			flt("DELAY", UnitFrame),
			str("TIME_FILTER_NUM"),
			str("TIME_FILTER_DEN"),
		},
		LoopsControlTable: {
			extends(LoopsTable),
			ref(LoopsControlInputSensor, true, "Wavefront sensor feeding the loop"),
			str("CONTROL_MATRIX"),
			str("MEASUREMENTS_TO_MODES"),
			str("MODES_TO_COMMANDS"),
			str("INTERACTION_MATRIX"),
			str("COMMANDS_TO_MODES"),
			str("MODES_TO_MEASUREMENTS"),
			str("RESIDUAL_COMMANDS"),
		},
		LoopsOffloadTable: {
			extends(LoopsTable),
			ref(LoopsOffloadInputCorrector, true, "Wavefront corrector whose commands are offloaded"),
			str("OFFLOAD_MATRIX"),
		},
	}
}
