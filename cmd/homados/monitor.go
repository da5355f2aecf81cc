package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var monitorFlags struct {
	device string
	track  string
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print note events received on an input",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, _, err := newEngine(cfg)
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := engine.Connect(monitorFlags.track, monitorFlags.device); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Monitoring %s... Press Ctrl+C to exit.\n", monitorFlags.device)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-engine.Events():
				if !ok {
					return nil
				}
				state := "off"
				if e.IsNoteOn {
					state = "on "
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s note=%3d velocity=%3d t=%.3fs\n",
					e.TrackID, state, e.Note, e.Velocity, e.Time)
			}
		}
	},
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorFlags.device, "device", "d", "input-0", "Input device id")
	monitorCmd.Flags().StringVarP(&monitorFlags.track, "track", "t", "monitor", "Track id")
}
