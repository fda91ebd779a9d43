package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

var csvHeader = []string{"step", "time_s", "zone1", "zone2", "cooling"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteCSV writes one row per sample. The cooling column is the output
// applied after that sample, so it is empty on the final row.
func WriteCSV(w io.Writer, run *thermal.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	times := run.Times()
	for k := range run.Len() {
		cooling := ""
		if k < len(run.Cooling) {
			cooling = formatFloat(run.Cooling[k])
		}
		if err := cw.Write([]string{
			strconv.Itoa(k),
			formatFloat(times[k]),
			formatFloat(run.Zone1[k]),
			formatFloat(run.Zone2[k]),
			cooling,
		}); err != nil {
			return fmt.Errorf("write csv record %d: %w", k, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVDir writes <dir>/<case>.csv for every run of r and returns the
// paths in case order.
func WriteCSVDir(dir string, r *study.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}
	var paths []string
	for _, c := range thermal.Cases() {
		run, ok := r.Runs[c]
		if !ok {
			continue
		}
		path := filepath.Join(dir, c.String()+".csv")
		if err := writeCSVFile(path, run); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, run *thermal.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, run); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
