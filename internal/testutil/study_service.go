package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// FakeStudyService is a reusable fake implementing ports.StudyService.
// Put ONLY what multiple test packages need here.
type FakeStudyService struct {
	R *study.Report
	O study.Options
	P thermal.Params

	SetNoiseCalled bool
	SetNoiseArg    bool
	SetNoiseErr    error

	SetSeedCalled bool
	SetSeedArg    uint64
	SetSeedErr    error

	RerunCalled bool
	RerunErr    error
}

// NewFakeStudyService serves a small hand-made report whose numbers are easy
// to assert on: passive ends at 16.10/26.14, forced at 16.12/24.04.
func NewFakeStudyService() *FakeStudyService {
	p := ShortParams()
	o := study.DefaultOptions()
	o.Window = 2

	passive := fakeRun(thermal.CasePassive, []float64{28, 20, 16.10}, []float64{28, 27, 26.14})
	forced := fakeRun(thermal.CaseForced, []float64{28, 21, 16.12}, []float64{28, 25, 24.04})

	return &FakeStudyService{
		P: p,
		O: o,
		R: &study.Report{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Params:    p,
			Options:   o,
			Runs: map[thermal.Case]*thermal.Run{
				thermal.CasePassive: passive,
				thermal.CaseForced:  forced,
			},
			Summaries: map[thermal.Case]thermal.Summary{
				thermal.CasePassive: {RunID: passive.ID, Case: thermal.CasePassive, Window: 2, Zone1: 16.10, Zone2: 26.14},
				thermal.CaseForced:  {RunID: forced.ID, Case: thermal.CaseForced, Window: 2, Zone1: 16.12, Zone2: 24.04},
			},
		},
	}
}

func fakeRun(c thermal.Case, z1, z2 []float64) *thermal.Run {
	return &thermal.Run{
		ID:      uuid.New(),
		Case:    c,
		Ambient: 30,
		Initial: 28,
		DT:      time.Second,
		Zone1:   z1,
		Zone2:   z2,
		Cooling: []float64{5200, 5200},
	}
}

func (f *FakeStudyService) Report() *study.Report  { return f.R }
func (f *FakeStudyService) Options() study.Options { return f.O }
func (f *FakeStudyService) Params() thermal.Params { return f.P }

func (f *FakeStudyService) SetNoise(_ context.Context, on bool) error {
	f.SetNoiseCalled = true
	f.SetNoiseArg = on
	if f.SetNoiseErr != nil {
		return f.SetNoiseErr
	}
	f.O.Noise.Enabled = on
	f.bump()
	return nil
}

func (f *FakeStudyService) SetSeed(_ context.Context, seed uint64) error {
	f.SetSeedCalled = true
	f.SetSeedArg = seed
	if f.SetSeedErr != nil {
		return f.SetSeedErr
	}
	f.O.Noise.Seed = seed
	f.bump()
	return nil
}

func (f *FakeStudyService) Rerun(context.Context) error {
	f.RerunCalled = true
	if f.RerunErr != nil {
		return f.RerunErr
	}
	f.bump()
	return nil
}

// bump swaps in a copy of the report under a new id, as a real recompute would.
func (f *FakeStudyService) bump() {
	next := *f.R
	next.ID = uuid.New()
	next.Options = f.O
	f.R = &next
}
