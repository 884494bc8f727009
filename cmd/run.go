package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/line-sim/line-sim/sim/export"
	"github.com/line-sim/line-sim/sim/line"
	"github.com/line-sim/line-sim/sim/report"
	"github.com/line-sim/line-sim/sim/trace"
)

type outputFlags struct {
	jsonPath    string
	csvDir      string
	postgresDSN string
	tablePrefix string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.jsonPath, "json", "", "Write the full result as JSON to this file (- for stdout)")
	cmd.Flags().StringVar(&f.csvDir, "csv-dir", "", "Write result tables as CSV files into this directory")
	cmd.Flags().StringVar(&f.postgresDSN, "postgres", "", "Append result tables to this Postgres database (DSN)")
	cmd.Flags().StringVar(&f.tablePrefix, "table-prefix", "linesim_", "Postgres table name prefix")
}

func (f *outputFlags) write(ctx context.Context, doc any, tables ...export.Table) error {
	if f.jsonPath != "" {
		if err := export.WriteJSONFile(f.jsonPath, doc); err != nil {
			return err
		}
	}
	if f.csvDir != "" {
		if err := export.WriteCSVDir(f.csvDir, tables...); err != nil {
			return err
		}
		logrus.Infof("Wrote %d tables to %s", len(tables), f.csvDir)
	}
	if f.postgresDSN != "" {
		sink, err := export.OpenPostgres(ctx, f.postgresDSN, f.tablePrefix)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.Write(ctx, tables...); err != nil {
			return err
		}
	}
	return nil
}

func newRunCmd() *cobra.Command {
	var (
		lf         lineFlags
		of         outputFlags
		traceLevel string
		reportPath string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation of the line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := lf.load(cmd)
			if err != nil {
				return err
			}
			if !trace.IsValidTraceLevel(traceLevel) {
				return fmt.Errorf("unknown trace level %q", traceLevel)
			}
			ctx := cmd.Context()
			res, err := line.RunSimulation(ctx, cfg, line.Options{TraceLevel: trace.TraceLevel(traceLevel)})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			if res.Trace != nil {
				s := trace.Summarize(res.Trace)
				fmt.Fprintf(cmd.OutOrStdout(), "Trace: %d events, %d transitions\n", s.TotalEvents, s.TotalTransitions)
			}
			if reportPath != "" {
				if err := export.WriteJSONFile(reportPath, report.Build(res, report.Options{})); err != nil {
					return err
				}
			}
			return of.write(ctx, res, export.ResultTables(res)...)
		},
	}
	lf.register(cmd)
	of.register(cmd)
	cmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, transitions, events)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write chart-ready report data as JSON to this file")
	return cmd
}

func printResult(w io.Writer, res *line.Result) {
	fmt.Fprintf(w, "=== Simulation Metrics (run %s, seed %d) ===\n", res.RunID, res.Seed)
	if res.InsufficientData {
		fmt.Fprintf(w, "Insufficient data: %s\n", res.Reason)
	}
	lm := res.Line
	fmt.Fprintf(w, "Completed: %d of %d arrivals over %.1f min\n", lm.Completed, lm.Arrivals, lm.Window)
	fmt.Fprintf(w, "Throughput: %.2f units/h\n", lm.ThroughputPerHour)
	fmt.Fprintf(w, "Lead time: mean %.2f, p50 %.2f, p95 %.2f min\n", lm.LeadTime.Mean, lm.LeadTime.P50, lm.LeadTime.P95)
	fmt.Fprintf(w, "WIP: avg %.2f, max %d\n", lm.AvgWIP, lm.MaxWIP)
	fmt.Fprintf(w, "%-12s %6s %8s %8s %8s %8s\n", "Station", "Cap", "Util", "AvgQ", "AvgWait", "Down")
	for _, sm := range res.StationMetrics {
		fmt.Fprintf(w, "%-12s %6d %7.1f%% %8.2f %8.2f %8.1f\n", sm.Name, sm.Capacity, sm.Utilization*100, sm.AvgQueue, sm.AvgWait, sm.DownTime)
	}
	fmt.Fprintf(w, "Bottleneck ranking:")
	for _, b := range res.Bottlenecks {
		fmt.Fprintf(w, " %d.%s(%.3f)", b.Rank, b.Station, b.Score)
	}
	fmt.Fprintln(w)
	c := res.Cost
	fmt.Fprintf(w, "Cost: total %.2f (labor %.2f, energy %.2f, downtime %.2f, holding %.2f), %.2f per unit\n",
		c.Total, c.Labor, c.Energy, c.Downtime, c.Holding, c.PerUnit)
}
