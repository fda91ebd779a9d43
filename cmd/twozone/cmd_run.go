package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/twozone/internal/report"
	"github.com/Agrid-Dev/twozone/internal/study"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the selected cases once and print the steady states",
		Long: `Run both coupling cases (or the ones selected with --case), apply the
sensor noise model to the monitored zone and print the parameter block and
steady-state temperatures.

Examples:
  twozone run                         # both cases, summary on stdout
  twozone run --case forced --json    # one case, JSON report
  twozone run --csv-dir out --plot out/zone2.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			caseFlag, _ := cmd.Flags().GetString("case")
			csvDir, _ := cmd.Flags().GetString("csv-dir")
			plotPath, _ := cmd.Flags().GetString("plot")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			p, err := cfg.Params()
			if err != nil {
				return fmt.Errorf("invalid parameters: %w", err)
			}
			opts, err := cfg.Options()
			if err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			if caseFlag != "" {
				if opts.Cases, err = parseCases(caseFlag); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("noise") {
				opts.Noise.Enabled, _ = cmd.Flags().GetBool("noise")
			}
			if cmd.Flags().Changed("seed") {
				opts.Noise.Seed, _ = cmd.Flags().GetUint64("seed")
			}

			r, err := study.Compare(cmd.Context(), p, opts, log)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}

			if csvDir == "" {
				csvDir = cfg.Output.CSVDir
			}
			if csvDir != "" {
				paths, err := report.WriteCSVDir(csvDir, r)
				if err != nil {
					return err
				}
				log.Info("csv written", "files", paths)
			}
			if plotPath == "" {
				plotPath = cfg.Output.PlotPath
			}
			if plotPath != "" {
				if err := report.SavePlot(plotPath, r); err != nil {
					return err
				}
				log.Info("plot written", "path", plotPath)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report.NewReportDTO(cfg.DeviceID, r))
			}
			return report.WriteSummary(cmd.OutOrStdout(), p, r)
		},
	}

	cmd.Flags().String("case", "", "comma separated cases to run (passive, forced)")
	cmd.Flags().String("csv-dir", "", "write one CSV per case into this directory")
	cmd.Flags().String("plot", "", "write the zone 2 comparison chart to this PNG path")
	cmd.Flags().Bool("noise", true, "apply sensor noise to the monitored zone")
	cmd.Flags().Uint64("seed", 1, "noise seed")
	return cmd
}
