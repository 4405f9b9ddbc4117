package gorm

import "time"

type FlightLogRow struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	UserID       string    `gorm:"column:user_id;index"`
	FlightDate   time.Time `gorm:"column:flight_date;index"`
	AircraftType string    `gorm:"column:aircraft_type;index"`

	TotalTime     float64 `gorm:"column:total_time;default:0"`
	PIC           float64 `gorm:"column:pic;default:0"`
	SIC           float64 `gorm:"column:sic;default:0"`
	CrossCountry  float64 `gorm:"column:cross_country;default:0"`
	Night         float64 `gorm:"column:night;default:0"`
	Instrument    float64 `gorm:"column:instrument;default:0"`
	SimInstrument float64 `gorm:"column:sim_instrument;default:0"`
	DualReceived  float64 `gorm:"column:dual_received;default:0"`
	DualGiven     float64 `gorm:"column:dual_given;default:0"`
	Sorties       float64 `gorm:"column:sorties;default:0"`
	LandingsDay   float64 `gorm:"column:landings_day;default:0"`
	LandingsNight float64 `gorm:"column:landings_night;default:0"`
	Approaches    float64 `gorm:"column:approaches;default:0"`
	Holds         float64 `gorm:"column:holds;default:0"`

	// Derived at save time from the resolved aircraft attributes
	SingleEngine         float64 `gorm:"column:single_engine;default:0"`
	MultiEngine          float64 `gorm:"column:multi_engine;default:0"`
	FixedWing            float64 `gorm:"column:fixed_wing;default:0"`
	Turbine              float64 `gorm:"column:turbine;default:0"`
	FixedWingMultiEngine float64 `gorm:"column:fixed_wing_multi_engine;default:0"`
	FixedWingTurbine     float64 `gorm:"column:fixed_wing_turbine;default:0"`
	FixedWingPIC         float64 `gorm:"column:fixed_wing_pic;default:0"`
	FixedWingTurbinePIC  float64 `gorm:"column:fixed_wing_turbine_pic;default:0"`
	Helo                 float64 `gorm:"column:helo;default:0"`
	Military             float64 `gorm:"column:military;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (FlightLogRow) TableName() string {
	return "flight_log_rows"
}

// NumericValue returns the value of a canonical numeric column.
func (r *FlightLogRow) NumericValue(col string) float64 {
	if v, ok := r.numericFields()[col]; ok {
		return *v
	}
	return 0
}

// SetNumericValue sets the value of a canonical numeric column. Unknown
// columns are ignored.
func (r *FlightLogRow) SetNumericValue(col string, val float64) {
	if v, ok := r.numericFields()[col]; ok {
		*v = val
	}
}

func (r *FlightLogRow) numericFields() map[string]*float64 {
	return map[string]*float64{
		"TOTAL_TIME":              &r.TotalTime,
		"PIC":                     &r.PIC,
		"SIC":                     &r.SIC,
		"CROSS_COUNTRY":           &r.CrossCountry,
		"NIGHT":                   &r.Night,
		"INSTRUMENT":              &r.Instrument,
		"SIM_INSTRUMENT":          &r.SimInstrument,
		"DUAL_RECEIVED":           &r.DualReceived,
		"DUAL_GIVEN":              &r.DualGiven,
		"SORTIES":                 &r.Sorties,
		"LANDINGS_DAY":            &r.LandingsDay,
		"LANDINGS_NIGHT":          &r.LandingsNight,
		"APPROACHES":              &r.Approaches,
		"HOLDS":                   &r.Holds,
		"SINGLE_ENGINE":           &r.SingleEngine,
		"MULTI_ENGINE":            &r.MultiEngine,
		"FIXED_WING":              &r.FixedWing,
		"TURBINE":                 &r.Turbine,
		"FIXED_WING_MULTI_ENGINE": &r.FixedWingMultiEngine,
		"FIXED_WING_TURBINE":      &r.FixedWingTurbine,
		"FIXED_WING_PIC":          &r.FixedWingPIC,
		"FIXED_WING_TURBINE_PIC":  &r.FixedWingTurbinePIC,
		"HELO":                    &r.Helo,
		"MILITARY":                &r.Military,
	}
}
