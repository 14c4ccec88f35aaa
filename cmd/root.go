package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msxvi/strategy/app"
	"github.com/msxvi/strategy/config"
	coremon "github.com/msxvi/strategy/core/monitoring"
	inframon "github.com/msxvi/strategy/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Solar car race strategy optimizer",
	RunE:  run,
}

// optimizeCmd is the explicit spelling of the default action.
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run the optimizer and export the winning plan",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(optimizeCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	defer coremon.Flush(2 * time.Second)

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	return svc.Run(ctx)
}
