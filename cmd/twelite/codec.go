package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.tigermatt.uk/twelite"
)

type outputFlags struct {
	address string
	digital []float64
	analog  []float64
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.address, "address", "0x78", "Destination: 0x00 master, 0x01-0x64 slave id, 0x78 all slaves")
	cmd.Flags().Float64SliceVar(&f.digital, "digital", nil, "DO1-DO4: even drives Hi, odd drives Lo, -1 leaves the output alone")
	cmd.Flags().Float64SliceVar(&f.analog, "analog", nil, "PWM1-PWM4 duty in percent, outside 0-100 leaves the output alone")
}

func (f *outputFlags) command(cmd *cobra.Command) (twelite.ChangeOutput, error) {
	addr, err := parseAddress(f.address)
	if err != nil {
		return twelite.ChangeOutput{}, err
	}

	opts := []twelite.OutputOption{twelite.Address(addr)}
	if cmd.Flags().Changed("digital") {
		opts = append(opts, twelite.Digital(f.digital...))
	}
	if cmd.Flags().Changed("analog") {
		opts = append(opts, twelite.Analog(f.analog...))
	}

	return twelite.NewChangeOutput(opts...)
}

func parseAddress(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return byte(v), nil
}

func encodeCommand() *cobra.Command {
	var f outputFlags

	cmd := cobra.Command{
		Use:   "encode",
		Short: "Print a change-output frame without sending it",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := f.command(cmd)
			if err != nil {
				return err
			}
			fmt.Print(out.Frame())
			return nil
		},
	}
	f.register(&cmd)

	return &cmd
}

func sendCommand() *cobra.Command {
	var f outputFlags

	cmd := cobra.Command{
		Use:   "send",
		Short: "Set the digital and PWM outputs of a remote module",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := f.command(cmd)
			if err != nil {
				return err
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			port, err := a.openPort()
			if err != nil {
				return err
			}
			defer port.Close()

			if err := (meteredSender{port, a.metrics}).Send(cmd.Context(), out); err != nil {
				return err
			}
			a.log.Info("sent", zap.String("frame", strings.TrimSpace(out.Frame())))
			return nil
		},
	}
	f.register(&cmd)

	return &cmd
}

func decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [FRAME...]",
		Short: "Decode status frames given as arguments or read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			if len(args) > 0 {
				return decodeLines(os.Stdout, a.decoder(), strings.NewReader(strings.Join(args, "\n")))
			}
			return decodeLines(os.Stdout, a.decoder(), os.Stdin)
		},
	}
}

// decodeLines decodes every frame line of r and fails on the first bad one.
func decodeLines(w io.Writer, dec twelite.Decoder, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		s, err := dec.Decode(line)
		if err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
		if _, err := fmt.Fprintln(w, formatStatus(s)); err != nil {
			return err
		}
	}

	return sc.Err()
}
