package thermal

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Run is the full trajectory of one case. It is written once by Simulate,
// optionally noised once by ApplyNoise, then treated as read-only.
type Run struct {
	ID      uuid.UUID
	Case    Case
	Ambient float64
	Initial float64
	DT      time.Duration

	Zone1 []float64 // regulated zone, always the clean control signal
	Zone2 []float64 // monitored zone, perturbed in place by ApplyNoise

	// Cooling[k] is the regulator output applied between steps k and k+1.
	Cooling []float64

	NoiseApplied bool
}

func (r *Run) Len() int {
	return len(r.Zone1)
}

// Times returns the elapsed seconds of every sample.
func (r *Run) Times() []float64 {
	dt := r.DT.Seconds()
	out := make([]float64, r.Len())
	for k := range out {
		out[k] = float64(k) * dt
	}
	return out
}

// Minutes returns the elapsed minutes of every sample, the plotting axis.
func (r *Run) Minutes() []float64 {
	out := r.Times()
	for k := range out {
		out[k] /= 60
	}
	return out
}

// Simulate integrates case c with explicit Euler at fixed step p.DT.
func Simulate(p Params, c Case) (*Run, error) {
	if !c.Valid() {
		return nil, ErrInvalidCase
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	network, err := p.Profile(c)
	if err != nil {
		return nil, err
	}
	reg, err := NewRegulator(p.Regulator)
	if err != nil {
		return nil, err
	}

	n := p.Steps()
	run := &Run{
		ID:      uuid.New(),
		Case:    c,
		Ambient: p.Ambient,
		Initial: p.Initial,
		DT:      p.DT,
		Zone1:   make([]float64, n),
		Zone2:   make([]float64, n),
		Cooling: make([]float64, max(n-1, 0)),
	}
	run.Zone1[0] = p.Initial
	run.Zone2[0] = p.Initial

	dt := p.DT.Seconds()
	c1 := p.Zone1.Capacitance
	c2 := p.Zone2.Capacitance

	for k := 0; k < n-1; k++ {
		t1 := run.Zone1[k]
		t2 := run.Zone2[k]

		q := network.Flows(p.Ambient, t1, t2)
		cool := reg.Output(t1)
		run.Cooling[k] = cool

		dT1 := (q.Wall1 + q.Cross + network.AuxiliaryHeat - cool) / c1 * dt
		dT2 := (q.Wall2 - q.Cross) / c2 * dt

		next1 := t1 + dT1
		next2 := t2 + dT2
		run.Zone1[k+1] = next1
		run.Zone2[k+1] = next2

		if !finite(next1) || !finite(next2) {
			return nil, &DivergenceError{Case: c, Step: k + 1, T1: next1, T2: next2}
		}
	}
	return run, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
