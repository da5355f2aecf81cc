package main

import (
	"fmt"
	"os"

	"github.com/leandrodaf/homados/internal/config"
	"github.com/leandrodaf/homados/internal/logger"
	"github.com/leandrodaf/homados/sdk/contracts"
	"github.com/leandrodaf/homados/sdk/midi"
	"github.com/spf13/cobra"
)

var flags struct {
	config   string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "homados",
	Short: "Capture MIDI input into timed notes and play them back",
	Long: `homados listens to hardware MIDI inputs, records note-on/note-off
messages into timed notes per track and plays notes back as sine tones.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "",
		"YAML configuration file (empty uses built-in defaults)")
	rootCmd.PersistentFlags().StringVarP(&flags.logLevel, "log-level", "l", "",
		"Log level override: debug, info, warn, error")

	rootCmd.AddCommand(devicesCmd, monitorCmd, recordCmd, previewCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return cfg, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, cfg.Validate()
}

// newEngine builds an engine from the configuration.
func newEngine(cfg config.Config) (*midi.Engine, contracts.Logger, error) {
	log := logger.NewZapLogger()
	opts := append([]contracts.Option{contracts.WithLogger(log)}, cfg.Options()...)

	engine, err := midi.NewEngine(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing engine: %w", err)
	}
	return engine, log, nil
}
