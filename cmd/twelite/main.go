// Command twelite talks to TWELITE radio modules over a serial port.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:          "twelite",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Configuration file (default ./twelite.yaml if present)")
	flags.String("port", "", "Serial port of the radio, e.g. /dev/ttyUSB0")
	flags.Int("baud", 115200, "Baud rate")
	flags.Bool("skip-checksum", false, "Accept status frames with a bad checksum")
	flags.String("log-level", "info", "Log level")
	flags.String("log-format", "console", "Log format (console or json)")
	flags.String("metrics-addr", "", "Serve prometheus metrics on this address")
	flags.String("broker", "", "MQTT broker URL, e.g. mqtt://localhost:1883/twelite/")

	cmd.AddCommand(portsCommand())
	cmd.AddCommand(listenCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "dump FILE",
		Short: "Decode a recording made with listen --record",
		Args:  cobra.ExactArgs(1),
		RunE:  dump,
	})
	cmd.AddCommand(encodeCommand())
	cmd.AddCommand(sendCommand())
	cmd.AddCommand(decodeCommand())
	cmd.AddCommand(cycleCommand())
	cmd.AddCommand(bridgeCommand())

	if err := cmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
