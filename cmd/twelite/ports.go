package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.tigermatt.uk/twelite/serialport"
)

func portsCommand() *cobra.Command {
	var all bool

	cmd := cobra.Command{
		Use:   "ports",
		Short: "List serial ports with a TWELITE device attached",
		Args:  cobra.ExactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			ports, err := serialport.List(all)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PORT\tVID:PID\tSERIAL\tPRODUCT")
			for _, p := range ports {
				id := "-"
				if p.IsUSB {
					id = p.VID + ":" + p.PID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, id, p.SerialNumber, p.Product)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List ports of any manufacturer")

	return &cmd
}
