package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/line-sim/line-sim/sim/export"
	"github.com/line-sim/line-sim/sim/line"
	"github.com/line-sim/line-sim/sim/validate"
)

func newValidateCmd() *cobra.Command {
	var (
		lf       lineFlags
		realPath string
		realSeed int64
		jsonPath string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare a simulation against a real (or synthetic) production sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lf.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var real validate.Sample
			if realPath != "" {
				if real, err = loadSample(realPath); err != nil {
					return err
				}
			} else if real, err = validate.SyntheticRealSample(ctx, cfg, realSeed); err != nil {
				return err
			}

			res, err := line.RunSimulation(ctx, cfg, line.Options{})
			if err != nil {
				return err
			}
			v := validate.Validate(validate.SampleFromResult(res), real)

			w := cmd.OutOrStdout()
			if v.Status == validate.StatusInsufficientData {
				fmt.Fprintf(w, "Validation: insufficient data (%s)\n", v.Reason)
			} else {
				fmt.Fprintf(w, "Validation score: %.3f (KS %.3f)\n", v.Score, v.KS)
				for _, e := range v.Errors {
					fmt.Fprintf(w, "  %-20s real %8.2f  sim %8.2f  error %5.1f%%\n", e.Metric, e.Real, e.Sim, e.RelError*100)
				}
			}
			if jsonPath != "" {
				return export.WriteJSONFile(jsonPath, v)
			}
			return nil
		},
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&realPath, "real", "", "Real sample JSON {throughput_per_hour, lead_times}; synthetic when empty")
	cmd.Flags().Int64Var(&realSeed, "real-seed", 7, "Seed of the synthetic real sample")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Write the validation result as JSON to this file (- for stdout)")
	return cmd
}

func loadSample(path string) (validate.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return validate.Sample{}, fmt.Errorf("reading real sample: %w", err)
	}
	var s validate.Sample
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &s); err != nil {
		return validate.Sample{}, fmt.Errorf("parsing real sample: %w", err)
	}
	return s, nil
}
