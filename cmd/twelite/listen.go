package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/twelite"
	"go.tigermatt.uk/twelite/capture"
	"go.tigermatt.uk/twelite/serialport"
)

var (
	dumpAllLines = false
	recordFile   = ""
)

// autoRecordFile is the value of a bare --record.
const autoRecordFile = "<unix time>.dat"

func listenCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "listen",
		Short: "Print status notifications received by the radio",
		Args:  cobra.ExactArgs(0),
		RunE:  listen,
	}
	cmd.Flags().BoolVar(&dumpAllLines, "dump-lines", false, "Print every line received")
	cmd.Flags().StringVar(&recordFile, "record", "", "Record received lines to FILE for a later dump")
	cmd.Flags().Lookup("record").NoOptDefVal = autoRecordFile

	return &cmd
}

func outFilename() string {
	return fmt.Sprintf("%d.dat", time.Now().UTC().Unix())
}

// recordPath returns the recording file requested with --record, if any.
func recordPath(cmd *cobra.Command) (string, bool) {
	if !cmd.Flags().Changed("record") {
		return "", false
	}
	if recordFile == "" || recordFile == autoRecordFile {
		return outFilename(), true
	}
	return recordFile, true
}

func listen(cmd *cobra.Command, _ []string) error {
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

	var rec *capture.Recorder
	if path, ok := recordPath(cmd); ok {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating recording: %w", err)
		}
		defer f.Close()

		rec = &capture.Recorder{Dest: f}
		a.log.Info("recording", zap.String("file", path))
	}

	l := a.listener(port, func(s twelite.ReceivedStatus) {
		fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), formatStatus(s))
	})
	l.OnLine = func(line string) {
		if dumpAllLines {
			fmt.Printf("%s < %s\n", time.Now().Format("15:04:05.000"), line)
		}
		if rec != nil {
			if err := rec.Record(line); err != nil {
				a.log.Error("recording line", zap.Error(err))
			}
		}
	}

	ctx, cancel := context.WithCancel(listenStop())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return l.Consume(ctx)
	})
	a.serveMetrics(ctx, g)

	return g.Wait()
}

// listener decodes from port, counting every result and handing good
// statuses to onStatus.
func (a *app) listener(port *serialport.Port, onStatus func(twelite.ReceivedStatus)) *serialport.Listener {
	return &serialport.Listener{
		Port:    port,
		Decoder: a.decoder(),
		OnStatus: func(s twelite.ReceivedStatus) {
			a.metrics.ObserveStatus(s, time.Now())
			a.log.Debug("status",
				zap.Uint32("serial", s.SenderSerialNumber),
				zap.Uint8("sender", s.SenderAddressID),
				zap.Uint16("vcc", s.PowerSupplyVoltage))
			onStatus(s)
		},
		OnError: func(line string, err error) {
			a.metrics.ObserveDecodeError(err)
			a.log.Warn("undecodable line", zap.String("line", line), zap.Error(err))
		},
	}
}
