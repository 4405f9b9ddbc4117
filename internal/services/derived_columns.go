package services

import (
	gormModels "flightdeck/logbook/internal/models/gorm"
)

// ApplyDerivedColumns fills the attribute-gated duration columns of a row
// from its resolved aircraft info. Each predicate is evaluated
// independently, so one row can feed several related buckets.
//
// Multi-engine is defined as "not single-engine": an aircraft with unknown
// engine configuration counts as multi-engine.
func ApplyDerivedColumns(row *gormModels.FlightLogRow, info AircraftModelInfo) {
	total := row.TotalTime
	pic := row.PIC

	row.SingleEngine = gate(total, info.SingleEngine)
	row.MultiEngine = gate(total, !info.SingleEngine)
	row.FixedWing = gate(total, info.FixedWing)
	row.Turbine = gate(total, info.Turbine)
	row.FixedWingMultiEngine = gate(total, info.FixedWing && !info.SingleEngine)
	row.FixedWingTurbine = gate(total, info.FixedWing && info.Turbine)
	row.FixedWingPIC = gate(pic, info.FixedWing)
	row.FixedWingTurbinePIC = gate(pic, info.FixedWing && info.Turbine)
	row.Helo = gate(total, info.Helicopter)
	row.Military = gate(total, info.Military)
}

func gate(value float64, predicate bool) float64 {
	if predicate {
		return value
	}
	return 0
}
