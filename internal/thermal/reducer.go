package thermal

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the trailing sample count used for steady-state estimates.
const DefaultWindow = 500

func tail(series []float64, window int) ([]float64, error) {
	if window <= 0 || window > len(series) {
		return nil, configErr("reducer.window", ErrInvalidWindow)
	}
	return series[len(series)-window:], nil
}

// SteadyState is the mean of the last window samples.
func SteadyState(series []float64, window int) (float64, error) {
	w, err := tail(series, window)
	if err != nil {
		return 0, err
	}
	return stat.Mean(w, nil), nil
}

// Band is the peak-to-peak variation over the last window samples.
func Band(series []float64, window int) (float64, error) {
	w, err := tail(series, window)
	if err != nil {
		return 0, err
	}
	return floats.Max(w) - floats.Min(w), nil
}

// Summary holds the steady-state estimates of one run.
type Summary struct {
	RunID        uuid.UUID
	Case         Case
	Window       int
	Zone1        float64
	Zone2        float64
	Zone1Band    float64
	Zone2Band    float64
	NoiseApplied bool
}

func Summarize(r *Run, window int) (Summary, error) {
	s := Summary{RunID: r.ID, Case: r.Case, Window: window, NoiseApplied: r.NoiseApplied}
	var err error
	if s.Zone1, err = SteadyState(r.Zone1, window); err != nil {
		return Summary{}, err
	}
	if s.Zone2, err = SteadyState(r.Zone2, window); err != nil {
		return Summary{}, err
	}
	if s.Zone1Band, err = Band(r.Zone1, window); err != nil {
		return Summary{}, err
	}
	if s.Zone2Band, err = Band(r.Zone2, window); err != nil {
		return Summary{}, err
	}
	return s, nil
}
