package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mirror/internal/app"
	"mirror/internal/config"
	"mirror/internal/feed"
	"mirror/internal/logger"
	"mirror/internal/model"
)

var version = "dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "mirror",
		Short:         "Insider trading mirror daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default $MIRROR_CONFIG or configs/config.yaml)")

	root.AddCommand(newRunCmd(&cfgPath))
	root.AddCommand(newCycleCmd(&cfgPath))
	root.AddCommand(newFetchCmd(&cfgPath))
	root.AddCommand(newVersionCmd())
	return root
}

func loadConfig(cfgPath string) (*config.Config, *os.File, error) {
	if cfgPath == "" {
		cfgPath = os.Getenv("MIRROR_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config failed: %w", err)
	}
	logFile, err := logger.SetupFile(cfg.App.LogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up log file failed: %w", err)
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("config loaded env=%s provider=%s", cfg.App.Env, cfg.Provider.Name)
	return cfg, logFile, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the mirror cycle loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logFile, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if logFile != nil {
				defer logFile.Close()
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return a.Run(ctx)
		},
	}
}

func newCycleCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run a single cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logFile, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if logFile != nil {
				defer logFile.Close()
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx, stop := signalContext()
			defer stop()
			res := a.Engine.RunCycle(ctx)
			printJSON(cmd, res)
			if res.Status == model.CycleError {
				return fmt.Errorf("cycle failed: %s", res.Error)
			}
			return nil
		},
	}
}

func newFetchCmd(cfgPath *string) *cobra.Command {
	var probe bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and validate one batch of provider records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logFile, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if logFile != nil {
				defer logFile.Close()
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx, stop := signalContext()
			defer stop()

			if probe {
				if prober, ok := a.Source.(feed.Prober); ok {
					printJSON(cmd, prober.Ping(ctx))
					return nil
				}
				return fmt.Errorf("provider does not support probing")
			}

			raw, err := a.Source.Fetch(ctx)
			if err != nil {
				return err
			}
			validator, err := feed.NewValidator()
			if err != nil {
				return err
			}
			valid, dropped := validator.Validate(raw)
			printJSON(cmd, map[string]any{
				"fetched": len(raw),
				"valid":   len(valid),
				"dropped": dropped,
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "only test provider connectivity")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Warnf("encoding output failed: %v", err)
	}
}
