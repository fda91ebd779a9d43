package thermal

import (
	"math"
	"time"
)

// Zone is one well-mixed air volume.
type Zone struct {
	Capacitance float64 // J/K, constant for the run
}

func (z Zone) Validate(field string) error {
	if z.Capacitance <= 0 {
		return configErr(field, ErrNonPositiveCapacitance)
	}
	return nil
}

// Params is the immutable configuration of a two-zone study.
//
// DT is assumed small against the fastest time constant of the model
// (C_i*R_i, C_i/Conductance and C_1/(MaxOutput*Gain)). This is not checked
// up front; an unstable step shows up as a DivergenceError from Simulate.
type Params struct {
	DT       time.Duration
	Duration time.Duration

	Ambient float64
	Initial float64

	Zone1 Zone
	Zone2 Zone

	Passive CouplingNetwork
	Forced  CouplingNetwork

	Regulator RegulatorParams
}

func (p *Params) Validate() error {
	if p.DT <= 0 {
		return configErr("dt", ErrNonPositiveTimeStep)
	}
	if p.Steps() < 1 {
		return configErr("duration", ErrNoSteps)
	}
	if err := p.Zone1.Validate("zone1.capacitance"); err != nil {
		return err
	}
	if err := p.Zone2.Validate("zone2.capacitance"); err != nil {
		return err
	}
	if err := p.Passive.Validate(); err != nil {
		return err
	}
	if err := p.Forced.Validate(); err != nil {
		return err
	}
	return p.Regulator.Validate()
}

// Steps is the trajectory length, round(Duration / DT).
func (p *Params) Steps() int {
	if p.DT <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Duration) / float64(p.DT)))
}

// Profile returns the coupling network of case c.
func (p *Params) Profile(c Case) (CouplingNetwork, error) {
	switch c {
	case CasePassive:
		return p.Passive, nil
	case CaseForced:
		return p.Forced, nil
	default:
		return CouplingNetwork{}, ErrInvalidCase
	}
}

// AirCapacitance is density (kg/m3) * volume (m3) * specific heat (J/kg.K).
func AirCapacitance(density, volume, specificHeat float64) float64 {
	return density * volume * specificHeat
}

// AirflowConductance converts a forced airflow in m3/h into the W/K it
// carries between zones.
func AirflowConductance(flowCMH, density, specificHeat float64) float64 {
	massFlow := flowCMH / 3600.0 * density
	return massFlow * specificHeat
}
