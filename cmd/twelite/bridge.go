package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/twelite"
	"go.tigermatt.uk/twelite/mqttbridge"
)

func bridgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bridge",
		Short: "Publish statuses to MQTT and apply output requests from it",
		Args:  cobra.ExactArgs(0),
		RunE:  bridge,
	}
}

func bridge(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if a.cfg.MQTT.Broker == "" {
		return errors.New("no MQTT broker configured, use --broker")
	}

	port, err := a.openPort()
	if err != nil {
		return err
	}
	defer port.Close()

	b, err := mqttbridge.New(a.cfg.MQTT.Broker, a.cfg.MQTT.ClientID, meteredSender{port, a.metrics}, a.log.Named("mqtt"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(listenStop())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, mqttbridge.DefaultTimeout)
	err = b.Connect(connectCtx)
	connectCancel()
	if err != nil {
		return err
	}
	defer b.Close()

	l := a.listener(port, func(s twelite.ReceivedStatus) {
		pubCtx, pubCancel := context.WithTimeout(ctx, mqttbridge.DefaultTimeout)
		defer pubCancel()

		if err := b.PublishStatus(pubCtx, s, time.Now()); err != nil {
			a.log.Warn("publishing status", zap.Uint32("serial", s.SenderSerialNumber), zap.Error(err))
		}
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return l.Consume(ctx)
	})
	a.serveMetrics(ctx, g)

	return g.Wait()
}
