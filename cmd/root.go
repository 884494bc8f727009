package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/line-sim/line-sim/sim"
)

// lineFlags are the configuration flags shared by every sub-command.
type lineFlags struct {
	configPath string
	seed       int64
	simTime    float64
	warmup     float64
}

func (f *lineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Line configuration YAML (default: the built-in four-station line)")
	cmd.Flags().Int64Var(&f.seed, "seed", 42, "Random seed (overrides SEED)")
	cmd.Flags().Float64Var(&f.simTime, "sim-time", 480, "Simulated minutes (overrides SIM_TIME)")
	cmd.Flags().Float64Var(&f.warmup, "warmup", 0, "Warm-up minutes excluded from statistics (overrides WARMUP_TIME)")
}

// load reads the configuration file and applies only the flags the user set,
// so file values survive flag defaults.
func (f *lineFlags) load(cmd *cobra.Command) (sim.LineConfig, error) {
	cfg := sim.DefaultLineConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = sim.LoadLineConfig(f.configPath); err != nil {
			return sim.LineConfig{}, err
		}
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = f.seed
	}
	if cmd.Flags().Changed("sim-time") {
		cfg.SimTime = f.simTime
	}
	if cmd.Flags().Changed("warmup") {
		cfg.WarmupTime = f.warmup
	}
	if err := cfg.Validate(); err != nil {
		return sim.LineConfig{}, err
	}
	return cfg, nil
}

// NewRootCmd builds the line-sim command tree.
func NewRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "line-sim",
		Short:         "Discrete-event simulator for manufacturing lines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %s", logLevel)
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	root.AddCommand(newRunCmd(), newOptimizeCmd(), newValidateCmd())
	return root
}

// Execute runs the CLI root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}
