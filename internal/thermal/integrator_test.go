package thermal

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"
)

func TestSimulateRejectsInvalidInput(t *testing.T) {
	if _, err := Simulate(newTestParams(), CaseUnknown); !errors.Is(err, ErrInvalidCase) {
		t.Fatalf("expected ErrInvalidCase, got %v", err)
	}

	p := newTestParams(func(p *Params) { p.Zone1.Capacitance = 0 })
	_, err := Simulate(p, CasePassive)
	assertErrorIs(t, err, ErrNonPositiveCapacitance)
}

func TestSimulateShape(t *testing.T) {
	p := newTestParams()
	run := mustSimulate(t, p, CasePassive)

	if run.Len() != 5400 || len(run.Zone2) != 5400 {
		t.Fatalf("expected 5400 samples, got zone1=%d zone2=%d", len(run.Zone1), len(run.Zone2))
	}
	if len(run.Cooling) != 5399 {
		t.Fatalf("expected 5399 cooling samples, got %d", len(run.Cooling))
	}
	if run.Zone1[0] != p.Initial || run.Zone2[0] != p.Initial {
		t.Fatalf("expected both zones to start at %v, got %v/%v", p.Initial, run.Zone1[0], run.Zone2[0])
	}
	if run.Case != CasePassive || run.NoiseApplied {
		t.Fatalf("unexpected run metadata case=%v noise=%v", run.Case, run.NoiseApplied)
	}

	minutes := run.Minutes()
	if minutes[0] != 0 || !almostEqual(minutes[len(minutes)-1], 5399.0/60.0, 1e-9) {
		t.Fatalf("unexpected minute axis bounds %v..%v", minutes[0], minutes[len(minutes)-1])
	}
}

func TestSimulateSingleStep(t *testing.T) {
	p := newTestParams(func(p *Params) { p.Duration = p.DT })
	run := mustSimulate(t, p, CaseForced)
	if run.Len() != 1 || len(run.Cooling) != 0 {
		t.Fatalf("expected one sample and no update, got len=%d cooling=%d", run.Len(), len(run.Cooling))
	}
}

func TestSimulateFirstStepMatchesHandComputation(t *testing.T) {
	p := newTestParams()
	run := mustSimulate(t, p, CaseForced)

	// Both zones start equal, so only wall ingress, fan heat and the
	// saturated cooler act on the first step.
	wall1 := (30.0 - 28.0) / 0.020
	wall2 := (30.0 - 28.0) / 0.011
	want1 := 28.0 + (wall1+40.0-5200.0)/p.Zone1.Capacitance
	want2 := 28.0 + wall2/p.Zone2.Capacitance

	if run.Cooling[0] != 5200 {
		t.Fatalf("expected saturated cooling on the first step, got %v", run.Cooling[0])
	}
	if !almostEqual(run.Zone1[1], want1, 1e-12) || !almostEqual(run.Zone2[1], want2, 1e-12) {
		t.Fatalf("step 1 = (%v, %v), want (%v, %v)", run.Zone1[1], run.Zone2[1], want1, want2)
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	p := newTestParams()
	for _, c := range Cases() {
		a := mustSimulate(t, p, c)
		b := mustSimulate(t, p, c)
		if !slices.Equal(a.Zone1, b.Zone1) || !slices.Equal(a.Zone2, b.Zone2) || !slices.Equal(a.Cooling, b.Cooling) {
			t.Fatalf("%s case: two identical runs differ", c)
		}
		if a.ID == b.ID {
			t.Fatalf("%s case: expected distinct run ids", c)
		}
	}
}

func TestRegulatorInvariantsAlongTrajectory(t *testing.T) {
	scenarios := map[string]Params{
		"reference":      newTestParams(),
		"well insulated": newTestParams(wellInsulated),
	}

	for name, p := range scenarios {
		for _, c := range Cases() {
			t.Run(name+"/"+c.String(), func(t *testing.T) {
				run := mustSimulate(t, p, c)
				for k, cool := range run.Cooling {
					t1 := run.Zone1[k]
					if t1 <= p.Regulator.Setpoint {
						if cool != 0 {
							t.Fatalf("step %d: t1=%v at or below setpoint but cooling=%v", k, t1, cool)
						}
						continue
					}
					if cool < p.Regulator.MinActiveOutput || cool > p.Regulator.MaxOutput {
						t.Fatalf("step %d: t1=%v above setpoint but cooling=%v outside [%v, %v]",
							k, t1, cool, p.Regulator.MinActiveOutput, p.Regulator.MaxOutput)
					}
				}
			})
		}
	}
}

func TestWellInsulatedRunCyclesOnTheFloor(t *testing.T) {
	p := newTestParams(wellInsulated)
	run := mustSimulate(t, p, CasePassive)

	var idle, floor int
	for _, cool := range run.Cooling {
		switch cool {
		case 0:
			idle++
		case p.Regulator.MinActiveOutput:
			floor++
		}
	}
	if idle == 0 || floor == 0 {
		t.Fatalf("expected on/off cycling at the floor, got idle=%d floor=%d", idle, floor)
	}

	// The cycling stays a micro-oscillation around setpoint.
	for k := 1000; k < run.Len(); k++ {
		if math.Abs(run.Zone1[k]-p.Regulator.Setpoint) > 0.05 {
			t.Fatalf("step %d: zone 1 at %v strayed from setpoint", k, run.Zone1[k])
		}
	}
}

func TestTrajectoriesReachSteadyState(t *testing.T) {
	p := newTestParams()
	for _, c := range Cases() {
		run := mustSimulate(t, p, c)
		for zone, series := range map[string][]float64{"zone1": run.Zone1, "zone2": run.Zone2} {
			band, err := Band(series, DefaultWindow)
			if err != nil {
				t.Fatalf("Band: %v", err)
			}
			if band >= 0.05 {
				t.Errorf("%s case %s: trailing band %v, want < 0.05", c, zone, band)
			}
		}
	}
}

func TestForcedExchangeCoolsMonitoredZoneMore(t *testing.T) {
	p := newTestParams()
	passive := mustSimulate(t, p, CasePassive)
	forced := mustSimulate(t, p, CaseForced)

	passiveSS, _ := SteadyState(passive.Zone2, DefaultWindow)
	forcedSS, _ := SteadyState(forced.Zone2, DefaultWindow)

	if forcedSS > passiveSS {
		t.Fatalf("forced steady state %v above passive %v", forcedSS, passiveSS)
	}
	// Door-gap diffusion leaves the living room near 26 C while the duct fan
	// brings it into the 23-24 C comfort band.
	if !almostEqual(passiveSS, 26.14, 0.05) {
		t.Errorf("passive zone 2 steady state = %v, want ~26.14", passiveSS)
	}
	if !almostEqual(forcedSS, 24.04, 0.05) {
		t.Errorf("forced zone 2 steady state = %v, want ~24.04", forcedSS)
	}
}

func TestRegulatedZoneSettlesEarly(t *testing.T) {
	p := newTestParams()
	reg := p.Regulator

	for _, c := range Cases() {
		run := mustSimulate(t, p, c)

		settled := -1
		for k, v := range run.Zone1 {
			if math.Abs(v-reg.Setpoint) < 0.2 {
				settled = k
				break
			}
		}
		if settled < 0 || settled >= 1000 {
			t.Fatalf("%s case: zone 1 reached setpoint neighbourhood at step %d, want < 1000", c, settled)
		}

		// A proportional-only cooler holds zone 1 at load/(MaxOutput*Gain)
		// above setpoint; it stays there for the remainder of the run.
		tail := run.Zone1[1000:]
		lo, hi := slices.Min(tail), slices.Max(tail)
		if lo <= reg.Setpoint || hi > reg.Setpoint+0.15 {
			t.Fatalf("%s case: zone 1 after step 1000 spans [%v, %v], want within (16, 16.15]", c, lo, hi)
		}
		if hi-lo >= 0.01 {
			t.Fatalf("%s case: zone 1 after step 1000 varies by %v, want < 0.01", c, hi-lo)
		}
	}
}

func TestSimulateSurfacesDivergence(t *testing.T) {
	// One-joule zones with a one-second step are far outside the stable range.
	p := newTestParams(func(p *Params) {
		p.Zone1.Capacitance = 1
		p.Zone2.Capacitance = 1
		p.Duration = 1000 * time.Second
	})

	run, err := Simulate(p, CasePassive)
	if run != nil {
		t.Fatal("expected no run on divergence")
	}
	assertErrorIs(t, err, ErrDivergence)

	var divErr *DivergenceError
	if !errors.As(err, &divErr) {
		t.Fatalf("expected *DivergenceError, got %T", err)
	}
	if divErr.Case != CasePassive || divErr.Step <= 0 || divErr.Step >= 1000 {
		t.Fatalf("unexpected divergence report %+v", divErr)
	}
	if !math.IsNaN(divErr.T1) && !math.IsInf(divErr.T1, 0) && !math.IsNaN(divErr.T2) && !math.IsInf(divErr.T2, 0) {
		t.Fatalf("expected a non-finite temperature in %+v", divErr)
	}
}
