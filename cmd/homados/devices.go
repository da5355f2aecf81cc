package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI input and output ports",
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

		list := engine.ListDevices()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tNAME")
		for _, d := range append(list.Inputs, list.Outputs...) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Kind, d.Name)
		}
		return w.Flush()
	},
}
