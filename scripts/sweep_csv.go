package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/Agrid-Dev/twozone/cmd/app"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

type SweepPoint struct {
	Conductance float64
	Zone1       float64
	Zone2       float64
}

// SweepConductance runs the forced case once per conductance value and
// reduces each run to its steady state.
func SweepConductance(p thermal.Params, conductances []float64, window int) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(conductances))
	for _, g := range conductances {
		q := p
		q.Forced.Conductance = g
		run, err := thermal.Simulate(q, thermal.CaseForced)
		if err != nil {
			return nil, fmt.Errorf("conductance %.1f: %w", g, err)
		}
		s, err := thermal.Summarize(run, window)
		if err != nil {
			return nil, err
		}
		points = append(points, SweepPoint{Conductance: g, Zone1: s.Zone1, Zone2: s.Zone2})
	}
	return points, nil
}

func writeSweep(filename string, points []SweepPoint) error {
	// Create CSV file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write CSV header
	if err := writer.Write([]string{"Conductance", "Zone1Steady", "Zone2Steady"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, pt := range points {
		if err := writer.Write([]string{
			fmt.Sprintf("%.1f", pt.Conductance),
			fmt.Sprintf("%.3f", pt.Zone1),
			fmt.Sprintf("%.3f", pt.Zone2),
		}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

func main() {
	cfg := app.DefaultConfig()
	p, err := cfg.Params()
	if err != nil {
		log.Fatal(err)
	}

	// From door-gap diffusion up to a strong duct fan.
	var conductances []float64
	for g := 10.0; g <= 200.0; g += 10 {
		conductances = append(conductances, g)
	}

	points, err := SweepConductance(p, conductances, cfg.Reducer.Window)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeSweep("conductance_sweep.csv", points); err != nil {
		log.Fatal(err)
	}
	for _, pt := range points {
		if pt.Zone2 <= 24.0 {
			log.Printf("zone 2 reaches 24 C from %.0f W/K", pt.Conductance)
			break
		}
	}
}
