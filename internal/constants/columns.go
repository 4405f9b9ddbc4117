package constants

// Canonical logbook column names. Every persisted FlightLogRow column and
// every header produced by the upload pipeline resolves to one of these.

const (
	ColDate         = "DATE"
	ColAircraftType = "AIRCRAFT_TYPE"
)

// Numeric columns supplied directly by source files
const (
	ColTotalTime     = "TOTAL_TIME"
	ColPIC           = "PIC"
	ColSIC           = "SIC"
	ColCrossCountry  = "CROSS_COUNTRY"
	ColNight         = "NIGHT"
	ColInstrument    = "INSTRUMENT"
	ColSimInstrument = "SIM_INSTRUMENT"
	ColDualReceived  = "DUAL_RECEIVED"
	ColDualGiven     = "DUAL_GIVEN"
	ColSorties       = "SORTIES"
	ColLandingsDay   = "LANDINGS_DAY"
	ColLandingsNight = "LANDINGS_NIGHT"
	ColApproaches    = "APPROACHES"
	ColHolds         = "HOLDS"
)

// Derived columns, computed at save time from the resolved aircraft attributes
const (
	ColSingleEngine         = "SINGLE_ENGINE"
	ColMultiEngine          = "MULTI_ENGINE"
	ColFixedWing            = "FIXED_WING"
	ColTurbine              = "TURBINE"
	ColFixedWingMultiEngine = "FIXED_WING_MULTI_ENGINE"
	ColFixedWingTurbine     = "FIXED_WING_TURBINE"
	ColFixedWingPIC         = "FIXED_WING_PIC"
	ColFixedWingTurbinePIC  = "FIXED_WING_TURBINE_PIC"
	ColHelo                 = "HELO"
	ColMilitary             = "MILITARY"
)

// InputColumns are the numeric columns a source file may provide.
var InputColumns = []string{
	ColTotalTime,
	ColPIC,
	ColSIC,
	ColCrossCountry,
	ColNight,
	ColInstrument,
	ColSimInstrument,
	ColDualReceived,
	ColDualGiven,
	ColSorties,
	ColLandingsDay,
	ColLandingsNight,
	ColApproaches,
	ColHolds,
}

// DerivedColumns are computed from aircraft attributes and never accepted
// from client input.
var DerivedColumns = []string{
	ColSingleEngine,
	ColMultiEngine,
	ColFixedWing,
	ColTurbine,
	ColFixedWingMultiEngine,
	ColFixedWingTurbine,
	ColFixedWingPIC,
	ColFixedWingTurbinePIC,
	ColHelo,
	ColMilitary,
}

// NumericColumns is the full set of persisted numeric columns.
var NumericColumns = append(append([]string{}, InputColumns...), DerivedColumns...)

// ScorecardAircraftColumns are the categories broken down per aircraft type
// on the printable scorecard.
var ScorecardAircraftColumns = []string{
	ColTotalTime,
	ColPIC,
	ColSIC,
	ColCrossCountry,
	ColNight,
	ColInstrument,
	ColSorties,
	ColLandingsDay,
	ColLandingsNight,
	ColSingleEngine,
	ColMultiEngine,
	ColFixedWing,
	ColTurbine,
	ColFixedWingMultiEngine,
	ColFixedWingTurbine,
	ColFixedWingPIC,
	ColFixedWingTurbinePIC,
	ColHelo,
	ColMilitary,
}

// ColumnCatalog is the catalog returned to the review UI after an upload:
// the two mandatory columns first, then every numeric input column.
var ColumnCatalog = append([]string{ColDate, ColAircraftType}, InputColumns...)

// DBColumn maps a canonical column name to its database column. Only names
// present here may ever be interpolated into aggregation SQL.
var DBColumn = map[string]string{
	ColTotalTime:            "total_time",
	ColPIC:                  "pic",
	ColSIC:                  "sic",
	ColCrossCountry:         "cross_country",
	ColNight:                "night",
	ColInstrument:           "instrument",
	ColSimInstrument:        "sim_instrument",
	ColDualReceived:         "dual_received",
	ColDualGiven:            "dual_given",
	ColSorties:              "sorties",
	ColLandingsDay:          "landings_day",
	ColLandingsNight:        "landings_night",
	ColApproaches:           "approaches",
	ColHolds:                "holds",
	ColSingleEngine:         "single_engine",
	ColMultiEngine:          "multi_engine",
	ColFixedWing:            "fixed_wing",
	ColTurbine:              "turbine",
	ColFixedWingMultiEngine: "fixed_wing_multi_engine",
	ColFixedWingTurbine:     "fixed_wing_turbine",
	ColFixedWingPIC:         "fixed_wing_pic",
	ColFixedWingTurbinePIC:  "fixed_wing_turbine_pic",
	ColHelo:                 "helo",
	ColMilitary:             "military",
}
