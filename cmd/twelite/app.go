package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/twelite"
	"go.tigermatt.uk/twelite/internal/config"
	"go.tigermatt.uk/twelite/internal/logging"
	"go.tigermatt.uk/twelite/internal/metrics"
	"go.tigermatt.uk/twelite/serialport"
)

var configPath string

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	reg     *prometheus.Registry
	metrics *metrics.RadioMetrics
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}

	reg := metrics.NewRegistry()
	return &app{
		cfg:     cfg,
		log:     log,
		reg:     reg,
		metrics: metrics.NewRadioMetrics(reg),
	}, nil
}

func (a *app) decoder() twelite.Decoder {
	return twelite.Decoder{SkipChecksum: a.cfg.Decode.SkipChecksum}
}

func (a *app) openPort() (*serialport.Port, error) {
	if a.cfg.Serial.Name == "" {
		return nil, errors.New("no serial port configured, use --port or run `twelite ports`")
	}

	p, err := serialport.Open(serialport.Config{
		Name:          a.cfg.Serial.Name,
		BaudRate:      a.cfg.Serial.BaudRate,
		ReadTimeout:   a.cfg.Serial.ReadTimeout,
		WriteInterval: a.cfg.Serial.WriteInterval,
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("serial port open", zap.String("port", a.cfg.Serial.Name), zap.Int("baud", a.cfg.Serial.BaudRate))
	return p, nil
}

// serveMetrics runs the metrics endpoint in g until ctx is done.
func (a *app) serveMetrics(ctx context.Context, g *errgroup.Group) {
	if a.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, metrics.Handler(a.reg))
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		a.log.Info("serving metrics", zap.String("addr", a.cfg.Metrics.Addr), zap.String("path", a.cfg.Metrics.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
}

// meteredSender counts every frame written to the radio.
type meteredSender struct {
	port    *serialport.Port
	metrics *metrics.RadioMetrics
}

func (s meteredSender) Send(ctx context.Context, cmd twelite.Command) error {
	if err := s.port.Send(ctx, cmd); err != nil {
		return err
	}
	s.metrics.ObserveSent(cmd)
	return nil
}

func listenStop() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx
}

func formatStatus(s twelite.ReceivedStatus) string {
	lqi := "    ?"
	if dbm, ok := s.LQI(); ok {
		lqi = fmt.Sprintf("%5.1f", dbm)
	}

	return fmt.Sprintf("%08X %02X>%02X pkt=%02X relay=%d lqi=%s t=%.3fs vcc=%dmV di=%s ai=%s",
		s.SenderSerialNumber, s.SenderAddressID, s.AddressID, s.PacketID, s.RelayCount,
		lqi, s.TimestampSeconds, s.PowerSupplyVoltage, formatDigital(s.Digital), formatAnalog(s.Analog))
}

func formatDigital(vals [twelite.Channels]int) string {
	var sb strings.Builder
	for _, v := range vals {
		switch v {
		case twelite.Unset:
			sb.WriteByte('-')
		case 1:
			sb.WriteByte('1')
		default:
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func formatAnalog(vals [twelite.Channels]int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if v == twelite.Unset {
			parts[i] = "-"
		} else {
			parts[i] = fmt.Sprintf("%d", v)
		}
	}
	return strings.Join(parts, ",")
}
