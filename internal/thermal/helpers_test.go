package thermal

import (
	"errors"
	"math"
	"testing"
	"time"
)

const (
	airDensity      = 1.225
	airSpecificHeat = 1005.0
)

// newTestParams is the two-room reference scenario: a 35 m3 bedroom cooled
// by a 5.2 kW unit and a 70 m3 living room.
func newTestParams(opts ...func(*Params)) Params {
	p := Params{
		DT:       time.Second,
		Duration: 90 * time.Minute,
		Ambient:  30.0,
		Initial:  28.0,
		Zone1:    Zone{Capacitance: AirCapacitance(airDensity, 35, airSpecificHeat)},
		Zone2:    Zone{Capacitance: AirCapacitance(airDensity, 70, airSpecificHeat)},
		Passive: CouplingNetwork{
			WallResistance1: 0.020,
			WallResistance2: 0.011,
			Conductance:     35.0,
		},
		Forced: CouplingNetwork{
			WallResistance1: 0.020,
			WallResistance2: 0.011,
			Conductance:     AirflowConductance(200, airDensity, airSpecificHeat),
			AuxiliaryHeat:   40.0,
		},
		Regulator: RegulatorParams{
			Setpoint:        16.0,
			MaxOutput:       5200.0,
			Gain:            2.0,
			MinActiveOutput: 800.0,
		},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// wellInsulated lowers the wall losses so the regulator load sits below its
// floor and the device cycles on and off around setpoint.
func wellInsulated(p *Params) {
	p.Passive.WallResistance1 = 0.2
	p.Passive.WallResistance2 = 0.2
	p.Forced.WallResistance1 = 0.2
	p.Forced.WallResistance2 = 0.2
}

func mustSimulate(t *testing.T, p Params, c Case) *Run {
	t.Helper()
	run, err := Simulate(p, c)
	if err != nil {
		t.Fatalf("Simulate(%s) failed: %v", c, err)
	}
	return run
}

func assertErrorIs(t *testing.T, err error, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
