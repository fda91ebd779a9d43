package study_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/testutil"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

func newTestService(t *testing.T) *study.Service {
	t.Helper()
	s, err := study.NewService(context.Background(), "test-id", testutil.ShortParams(), study.DefaultOptions(), nil)
	require.NoError(t, err)
	return s
}

func TestNewServiceComputesInitialReport(t *testing.T) {
	s := newTestService(t)
	assert.Equal(t, "test-id", s.ID)
	require.NotNil(t, s.Report())
	assert.Len(t, s.Report().Summaries, 2)
	assert.Equal(t, s.Options().Noise, s.Report().Options.Noise)

	_, err := study.NewService(context.Background(), "bad", testutil.ShortParams(), study.Options{}, nil)
	assert.ErrorIs(t, err, study.ErrNoCases)
}

func TestServiceSetNoise(t *testing.T) {
	s := newTestService(t)
	before := s.Report()

	require.NoError(t, s.SetNoise(context.Background(), false))
	after := s.Report()

	assert.False(t, s.Options().Noise.Enabled)
	assert.NotEqual(t, before.ID, after.ID)
	for _, c := range thermal.Cases() {
		assert.False(t, after.Runs[c].NoiseApplied)
	}
}

func TestServiceSetSeed(t *testing.T) {
	s := newTestService(t)
	before := s.Report().Runs[thermal.CasePassive].Zone2

	require.NoError(t, s.SetSeed(context.Background(), 12345))
	assert.Equal(t, uint64(12345), s.Options().Noise.Seed)
	assert.Equal(t, uint64(12345), s.Report().Options.Noise.Seed)
	assert.NotEqual(t, before, s.Report().Runs[thermal.CasePassive].Zone2)
}

func TestServiceRerunKeepsSeries(t *testing.T) {
	s := newTestService(t)
	before := s.Report()

	require.NoError(t, s.Rerun(context.Background()))
	after := s.Report()

	assert.NotEqual(t, before.ID, after.ID)
	assert.Equal(t, before.Runs[thermal.CaseForced].Zone2, after.Runs[thermal.CaseForced].Zone2)
}

func TestServiceKeepsReportOnFailure(t *testing.T) {
	s := newTestService(t)
	before := s.Report()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SetNoise(ctx, false), context.Canceled)

	assert.Same(t, before, s.Report())
	assert.True(t, s.Options().Noise.Enabled)
}

func TestServiceOptionsReturnsCopy(t *testing.T) {
	s := newTestService(t)
	o := s.Options()
	o.Cases[0] = thermal.CaseUnknown
	assert.True(t, s.Options().Cases[0].Valid())
}

func TestServiceConcurrentUpdates(t *testing.T) {
	s := newTestService(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SetSeed(context.Background(), uint64(i))
			_ = s.Report()
		}()
	}
	wg.Wait()

	assert.Equal(t, s.Options().Noise.Seed, s.Report().Options.Noise.Seed)
}
