package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteadyState(t *testing.T) {
	series := []float64{100, 100, 1, 2, 3, 4}

	tests := []struct {
		name    string
		window  int
		want    float64
		wantErr error
	}{
		{"Trailing two", 2, 3.5, nil},
		{"Trailing four", 4, 2.5, nil},
		{"Whole series", 6, 35, nil},
		{"Zero window", 0, 0, ErrInvalidWindow},
		{"Negative window", -3, 0, ErrInvalidWindow},
		{"Window longer than series", 7, 0, ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SteadyState(series, tt.window)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var cfgErr *ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestBand(t *testing.T) {
	got, err := Band([]float64{50, -50, 1.5, 1.25, 1.75}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	_, err = Band(nil, 1)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSummarize(t *testing.T) {
	run := mustSimulate(t, newTestParams(), CasePassive)

	s, err := Summarize(run, DefaultWindow)
	require.NoError(t, err)

	assert.Equal(t, run.ID, s.RunID)
	assert.Equal(t, CasePassive, s.Case)
	assert.Equal(t, DefaultWindow, s.Window)
	assert.InDelta(t, 16.10, s.Zone1, 0.01)
	assert.InDelta(t, 26.14, s.Zone2, 0.05)
	assert.Less(t, s.Zone1Band, 0.01)
	assert.Less(t, s.Zone2Band, 0.05)
	assert.False(t, s.NoiseApplied)

	_, err = Summarize(run, run.Len()+1)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
