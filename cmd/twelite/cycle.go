package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/twelite"
	"go.tigermatt.uk/twelite/serialport"
)

var (
	cycleInterval = time.Second
	cycleAddress  = "0x78"
)

func cycleCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "cycle",
		Short: "Walk a Lo output across DO1-DO4 and ramp PWM1-PWM4, printing replies",
		Args:  cobra.ExactArgs(0),
		RunE:  cycle,
	}
	cmd.Flags().DurationVar(&cycleInterval, "interval", cycleInterval, "Time between frames")
	cmd.Flags().StringVar(&cycleAddress, "address", cycleAddress, "Destination device id")

	return &cmd
}

// cyclePattern drives one digital output Lo per step and ramps the PWM
// channels in 10% steps, each a quarter turn apart.
func cyclePattern(step int) (digital, analog [twelite.Channels]float64) {
	for i := range digital {
		if step%twelite.Channels == i {
			digital[i] = 1
		}
		analog[i] = float64((step + i*3) % 11 * 10)
	}
	return digital, analog
}

func cycle(cmd *cobra.Command, _ []string) error {
	addr, err := parseAddress(cycleAddress)
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

	l := a.listener(port, func(s twelite.ReceivedStatus) {
		fmt.Println(formatStatus(s))
	})

	ctx, cancel := context.WithCancel(listenStop())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return runCycle(ctx, a.log, l, meteredSender{port, a.metrics}, addr, cycleInterval)
	})
	a.serveMetrics(ctx, g)

	return g.Wait()
}

type commandSender interface {
	Send(ctx context.Context, cmd twelite.Command) error
}

// runCycle sends the cycle pattern to addr every interval while l reads
// the replies. Both stop when ctx is done or l stops reading.
func runCycle(ctx context.Context, logger *zap.Logger, l *serialport.Listener, s commandSender, addr byte, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return l.Consume(ctx)
	})
	g.Go(func() error {
		t := time.NewTicker(interval)
		defer t.Stop()

		for step := 0; ; step++ {
			digital, analog := cyclePattern(step)
			out, err := twelite.NewChangeOutput(
				twelite.Address(addr), twelite.Digital(digital[:]...), twelite.Analog(analog[:]...))
			if err != nil {
				return err
			}

			logger.Debug("> OUTPUT", zap.String("frame", strings.TrimSpace(out.Frame())))
			if err := s.Send(ctx, out); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}

			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
			}
		}
	})

	return g.Wait()
}
