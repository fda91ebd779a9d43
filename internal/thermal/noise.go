package thermal

import "math/rand/v2"

// DefaultNoiseStdDev is the measurement noise of the monitored zone sensor.
const DefaultNoiseStdDev = 0.12

// NoiseInjector adds zero-mean Gaussian noise drawn from an explicit source.
type NoiseInjector struct {
	stddev float64
	rng    *rand.Rand
}

func NewNoiseInjector(stddev float64, src rand.Source) (*NoiseInjector, error) {
	if stddev < 0 {
		return nil, configErr("noise.stddev", ErrNegativeNoiseStdDev)
	}
	if src == nil {
		return nil, ErrNilRandomSource
	}
	return &NoiseInjector{stddev: stddev, rng: rand.New(src)}, nil
}

// NewSeededSource gives every case its own reproducible stream for a seed.
func NewSeededSource(seed uint64, c Case) rand.Source {
	return rand.NewPCG(seed, uint64(c))
}

func (n *NoiseInjector) StdDev() float64 {
	return n.stddev
}

// Apply returns a perturbed copy of series, one independent draw per sample.
func (n *NoiseInjector) Apply(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v + n.rng.NormFloat64()*n.stddev
	}
	return out
}

// ApplyNoise perturbs the monitored zone of r in place. Zone 1 is left clean.
func (r *Run) ApplyNoise(n *NoiseInjector) error {
	if r.NoiseApplied {
		return ErrNoiseAlreadyApplied
	}
	noisy := n.Apply(r.Zone2)
	copy(r.Zone2, noisy)
	r.NoiseApplied = true
	return nil
}
