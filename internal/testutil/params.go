package testutil

import (
	"time"

	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// ReferenceParams is the two-room scenario shared by package tests: a 35 m3
// bedroom with a 5.2 kW cooler and a 70 m3 living room next to it.
func ReferenceParams() thermal.Params {
	const (
		density      = 1.225
		specificHeat = 1005.0
	)
	return thermal.Params{
		DT:       time.Second,
		Duration: 90 * time.Minute,
		Ambient:  30.0,
		Initial:  28.0,
		Zone1:    thermal.Zone{Capacitance: thermal.AirCapacitance(density, 35, specificHeat)},
		Zone2:    thermal.Zone{Capacitance: thermal.AirCapacitance(density, 70, specificHeat)},
		Passive: thermal.CouplingNetwork{
			WallResistance1: 0.020,
			WallResistance2: 0.011,
			Conductance:     35.0,
		},
		Forced: thermal.CouplingNetwork{
			WallResistance1: 0.020,
			WallResistance2: 0.011,
			Conductance:     thermal.AirflowConductance(200, density, specificHeat),
			AuxiliaryHeat:   40.0,
		},
		Regulator: thermal.RegulatorParams{
			Setpoint:        16.0,
			MaxOutput:       5200.0,
			Gain:            2.0,
			MinActiveOutput: 800.0,
		},
	}
}

// ShortParams keeps the reference physics over ten minutes.
func ShortParams() thermal.Params {
	p := ReferenceParams()
	p.Duration = 10 * time.Minute
	return p
}
