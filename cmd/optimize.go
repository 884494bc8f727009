package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/line-sim/line-sim/sim/export"
	"github.com/line-sim/line-sim/sim/optimize"
)

func newOptimizeCmd() *cobra.Command {
	var (
		lf          lineFlags
		of          outputFlags
		axesPath    string
		opts        optimize.Options
		objective   string
		top         int
		metricsPath string
	)
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search capacities, processing times and arrival rates around the line",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := lf.load(cmd)
			if err != nil {
				return err
			}
			axes, err := optimize.LoadAxes(axesPath)
			if err != nil {
				return err
			}
			opts.BaseSeed = base.Seed
			opts.Objective = optimize.Objective(objective)
			reg := prometheus.NewRegistry()
			opts.Registerer = reg

			ctx := cmd.Context()
			start := time.Now()
			out, err := optimize.Optimize(ctx, base, axes, opts)
			if err != nil {
				return err
			}
			logrus.Infof("Optimization finished in %v", time.Since(start).Round(time.Millisecond))

			printOutcome(cmd.OutOrStdout(), out, top)
			if metricsPath != "" {
				if err := prometheus.WriteToTextfile(metricsPath, reg); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}
			return of.write(ctx, out, export.ScenarioTable(out))
		},
	}
	lf.register(cmd)
	of.register(cmd)
	cmd.Flags().StringVar(&axesPath, "axes", "", "Axes YAML listing candidate capacities, processing means and inter-arrival means")
	_ = cmd.MarkFlagRequired("axes")
	cmd.Flags().IntVar(&opts.Replications, "replications", optimize.DefaultReplications, "Replications per configuration")
	cmd.Flags().StringVar(&objective, "objective", string(optimize.ObjectiveThroughputPerCost), "Objective (throughput_per_cost, max_throughput, weighted)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent replications (0 = GOMAXPROCS)")
	cmd.Flags().DurationVar(&opts.ReplicationTimeout, "timeout", 0, "Wall-clock budget per replication (0 = none)")
	cmd.Flags().Float64Var(&opts.MaxCapitalCost, "max-capital", 0, "Capital cost above which a configuration is infeasible (0 = unlimited)")
	cmd.Flags().IntVar(&opts.MaxConfigurations, "max-configs", optimize.DefaultMaxConfigurations, "Refuse axes expanding to more configurations")
	cmd.Flags().Float64Var(&opts.CostScale, "cost-scale", optimize.DefaultCostScale, "Capital cost scale of the throughput_per_cost objective")
	cmd.Flags().Float64Var(&opts.Lambda, "lambda", optimize.DefaultLambda, "Capital cost weight of the weighted objective")
	cmd.Flags().IntVar(&top, "top", 10, "Ranked configurations to print")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Write optimizer Prometheus metrics in text format to this file")
	return cmd
}

func printOutcome(w io.Writer, out *optimize.Outcome, top int) {
	b := out.Baseline
	fmt.Fprintf(w, "=== Optimization (%s, %d replications) ===\n", out.Objective, len(out.Seeds))
	fmt.Fprintf(w, "Baseline: %.2f ± %.2f units/h, lead time %.2f min, bottleneck %s\n",
		b.Throughput.Mean, b.Throughput.StdDev, b.LeadTime.Mean, b.Bottleneck)
	fmt.Fprintf(w, "Evaluated %d configurations, %d failed\n", out.Evaluated, out.Failed)
	for i, r := range out.Ranked() {
		if i >= top || r.Rank == 0 {
			break
		}
		pareto := ""
		if r.Pareto {
			pareto = " *pareto"
		}
		fmt.Fprintf(w, "%3d. score %.3f  %.2f units/h (%+.1f%%)  capital %.0f  [%s]%s\n",
			r.Rank, r.Score, r.Throughput.Mean, r.ThroughputImprovementPct, r.CapitalCost, paramString(r.Params), pareto)
	}
	fmt.Fprintln(w, "Recommendations:")
	for _, rec := range out.Recommendations {
		fmt.Fprintf(w, "  [%s] %s: %s (%s)\n", rec.Priority, rec.Category, rec.Text, rec.Impact)
	}
}

func paramString(params []optimize.Param) string {
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%g", p.Name, p.Value)
	}
	return s
}
