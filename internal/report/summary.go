package report

import (
	"fmt"
	"io"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// WriteParams prints the parameter confirmation block.
func WriteParams(w io.Writer, p thermal.Params) error {
	reg := p.Regulator
	ratio := 0.0
	if p.Passive.Conductance > 0 {
		ratio = p.Forced.Conductance / p.Passive.Conductance
	}
	_, err := fmt.Fprintf(w,
		"--- Model Parameter Confirmation ---\n"+
			"Cooler capacity:  %.0f W\n"+
			"Cooler setpoint:  %.1f C\n"+
			"Fan heat:         %.0f W\n"+
			"Passive coupling: %.1f W/K\n"+
			"Forced coupling:  %.1f W/K (approx %.1fx)\n"+
			"------------------------------------\n",
		reg.MaxOutput, reg.Setpoint, p.Forced.AuxiliaryHeat,
		p.Passive.Conductance, p.Forced.Conductance, ratio,
	)
	return err
}

// WriteSummary prints the confirmation block followed by the steady states
// of every case in r.
func WriteSummary(w io.Writer, p thermal.Params, r *study.Report) error {
	if err := WriteParams(w, p); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "--- Steady State (last %d samples, report %s) ---\n", r.Options.Window, r.ID); err != nil {
		return err
	}
	for _, c := range thermal.Cases() {
		s, ok := r.Summaries[c]
		if !ok {
			continue
		}
		noise := ""
		if s.NoiseApplied {
			noise = " (noisy sensor)"
		}
		if _, err := fmt.Fprintf(w, "%-8s zone 2 equilibrium: %.2f C%s\n", c, s.Zone2, noise); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-8s zone 1 average:     %.2f C (band %.3f)\n", c, s.Zone1, s.Zone1Band); err != nil {
			return err
		}
	}
	if delta, ok := r.Improvement(); ok {
		if _, err := fmt.Fprintf(w, "Forced exchange lowers zone 2 by %.2f C\n", delta); err != nil {
			return err
		}
	}
	return nil
}
