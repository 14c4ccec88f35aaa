package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msxvi/strategy/app"
	"github.com/msxvi/strategy/config"
)

var simulateSpeed float64

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Score a constant-speed plan without optimizing",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateSpeed, "speed", 15, "constant speed in m/s")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// No broker or sinks needed for a local what-if run.
	cfg.Telemetry.Enabled = false
	cfg.Metrics.Sinks = nil

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	trace, score := svc.Simulate(simulateSpeed)
	cmd.Printf("objective=%s value=%.2f distance=%.1f m elapsed=%.1f s final_soc=%.4f feasible=%v\n",
		score.Objective, score.Value, score.DistanceM, score.ElapsedS, score.FinalSoC, score.Feasible)
	for _, v := range score.Violations {
		cmd.Printf("violation %s at segment %d (magnitude %.4f)\n", v.Constraint, v.SegmentIndex, v.Magnitude)
	}
	for _, p := range trace {
		cmd.Printf("segment %3d  v=%5.1f m/s  t=%8.1f s  d=%9.1f m  soc=%.4f  net=%8.1f W\n",
			p.SegmentIndex, p.SpeedMS, p.ElapsedS, p.DistanceM, p.SoC, p.Powers.NetW)
	}
	return nil
}
