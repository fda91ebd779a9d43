package thermal

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCase            = errors.New("invalid case")
	ErrNonPositiveCapacitance = errors.New("capacitance must be strictly positive")
	ErrNonPositiveResistance  = errors.New("wall resistance must be strictly positive")
	ErrNegativeConductance    = errors.New("coupling conductance must be greater or equal to zero")
	ErrNegativeAuxiliaryHeat  = errors.New("auxiliary heat input must be greater or equal to zero")
	ErrNonPositiveTimeStep    = errors.New("time step must be strictly positive")
	ErrNoSteps                = errors.New("duration is shorter than one time step")
	ErrInvalidRegulatorOutput = errors.New("regulator max output must be strictly positive")
	ErrInvalidRegulatorGain   = errors.New("regulator gain must be strictly positive")
	ErrInvalidRegulatorFloor  = errors.New("regulator floor must be strictly between 0 and max output")
	ErrNegativeNoiseStdDev    = errors.New("noise standard deviation must be greater or equal to zero")
	ErrNilRandomSource        = errors.New("noise injector needs a random source")
	ErrInvalidWindow          = errors.New("window must be in [1, trajectory length]")
	ErrNoiseAlreadyApplied    = errors.New("noise already applied to run")
	ErrDivergence             = errors.New("simulation diverged (non-finite temperature)")
)

// ConfigError is returned before any simulation step when a parameter is
// unusable.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(field string, err error) error {
	return &ConfigError{Field: field, Err: err}
}

// DivergenceError reports the first step whose state is NaN or Inf.
type DivergenceError struct {
	Case Case
	Step int
	T1   float64
	T2   float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%s case: %v at step %d (t1=%v, t2=%v)", e.Case, ErrDivergence, e.Step, e.T1, e.T2)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDivergence
}
