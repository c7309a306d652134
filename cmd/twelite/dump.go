package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/twelite"
	"go.tigermatt.uk/twelite/capture"
)

func dump(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	msgs := make(chan capture.Message, 100)

	var g errgroup.Group
	g.Go(func() error { return processMsgs(os.Stdout, a.decoder(), msgs) })
	g.Go(func() error { return capture.ReadIn(msgs, f) })

	return g.Wait()
}

func processMsgs(w io.Writer, dec twelite.Decoder, msgs <-chan capture.Message) error {
	for msg := range msgs {
		ts := msg.Timestamp.Format("15:04:05.000")

		s, err := dec.Decode(msg.Line)
		if err != nil {
			if _, err := fmt.Fprintf(w, "%s %s (%v)\n", ts, msg.Line, err); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "%s %s\n", ts, formatStatus(s)); err != nil {
			return err
		}
	}

	return nil
}
