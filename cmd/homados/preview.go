package main

import (
	"github.com/spf13/cobra"
)

var previewFlags struct {
	note     uint8
	velocity uint8
	volume   float64
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Play a short tone for a MIDI note",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, _, err := newEngine(cfg)
		if err != nil {
			return err
		}

		engine.PreviewNote(previewFlags.note, previewFlags.velocity, previewFlags.volume)
		// Close waits for the tone to finish.
		return engine.Close()
	},
}

func init() {
	previewCmd.Flags().Uint8VarP(&previewFlags.note, "note", "n", 69, "MIDI note number")
	previewCmd.Flags().Uint8Var(&previewFlags.velocity, "velocity", 100, "Velocity (0-127)")
	previewCmd.Flags().Float64Var(&previewFlags.volume, "volume", 1, "Volume (0-1)")
}
