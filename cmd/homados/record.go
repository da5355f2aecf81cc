package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandrodaf/homados/sdk/contracts"
	"github.com/spf13/cobra"
)

var recordFlags struct {
	device   string
	track    string
	duration time.Duration
	replay   bool
	volume   float64
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record notes from an input and print them as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, log, err := newEngine(cfg)
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := engine.Connect(recordFlags.track, recordFlags.device); err != nil {
			return err
		}
		if err := engine.StartRecording(recordFlags.track); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Recording %s for %s... Press Ctrl+C to stop early.\n",
			recordFlags.device, recordFlags.duration)
		timer := time.NewTimer(recordFlags.duration)
		defer timer.Stop()
	wait:
		for {
			select {
			case <-ctx.Done():
				break wait
			case <-timer.C:
				break wait
			case e, ok := <-engine.Events():
				if !ok {
					break wait
				}
				log.Debug("MIDI event",
					log.Field().Uint8("note", e.Note),
					log.Field().Bool("noteOn", e.IsNoteOn),
					log.Field().Float64("time", e.Time))
			}
		}

		notes, err := engine.StopRecording(recordFlags.track)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(notes); err != nil {
			return err
		}

		if recordFlags.replay && len(notes) > 0 {
			engine.Play(notes, recordFlags.volume)
			time.Sleep(sequenceLength(notes))
		}
		return nil
	},
}

// sequenceLength returns the time until the last note ends.
func sequenceLength(notes []contracts.Note) time.Duration {
	end := 0.0
	for _, n := range notes {
		if n.StartTime+n.Duration > end {
			end = n.StartTime + n.Duration
		}
	}
	return time.Duration(end * float64(time.Second))
}

func init() {
	recordCmd.Flags().StringVarP(&recordFlags.device, "device", "d", "input-0", "Input device id")
	recordCmd.Flags().StringVarP(&recordFlags.track, "track", "t", "track-1", "Track id")
	recordCmd.Flags().DurationVar(&recordFlags.duration, "duration", 10*time.Second, "Recording length")
	recordCmd.Flags().BoolVar(&recordFlags.replay, "replay", false, "Play the recording back once stopped")
	recordCmd.Flags().Float64Var(&recordFlags.volume, "volume", 0.8, "Playback volume (0-1)")
}
