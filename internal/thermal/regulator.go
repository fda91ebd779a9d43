package thermal

import "math"

type RegulatorParams struct {
	Setpoint        float64
	MaxOutput       float64 // rated cooling capacity, W
	Gain            float64 // fraction of MaxOutput per kelvin of error
	MinActiveOutput float64 // lowest output once running, W
}

func (params *RegulatorParams) Validate() error {
	if params.MaxOutput <= 0 {
		return configErr("regulator.max_output", ErrInvalidRegulatorOutput)
	}
	if params.Gain <= 0 {
		return configErr("regulator.gain", ErrInvalidRegulatorGain)
	}
	if params.MinActiveOutput <= 0 || params.MinActiveOutput >= params.MaxOutput {
		return configErr("regulator.min_active_output", ErrInvalidRegulatorFloor)
	}
	return nil
}

// Regulator is a stateless proportional cooler acting on zone 1.
type Regulator struct {
	params RegulatorParams
}

func NewRegulator(params RegulatorParams) (*Regulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Regulator{params: params}, nil
}

func (r *Regulator) Params() RegulatorParams {
	return r.params
}

// Output returns the cooling power for the regulated temperature t1.
// It is 0 at or below setpoint and jumps straight to at least
// MinActiveOutput above it.
func (r *Regulator) Output(t1 float64) float64 {
	p := r.params
	if t1 <= p.Setpoint {
		return 0
	}
	raw := math.Min(p.MaxOutput, p.MaxOutput*p.Gain*(t1-p.Setpoint))
	return math.Max(raw, p.MinActiveOutput)
}
