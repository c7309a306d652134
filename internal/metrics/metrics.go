package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.tigermatt.uk/twelite"
)

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Frame decode results.
const (
	ResultOK        = "ok"
	ResultMalformed = "malformed"
	ResultChecksum  = "checksum"
	ResultOpcode    = "opcode"
	ResultError     = "error"
)

// RadioMetrics counts traffic with the module.
type RadioMetrics struct {
	FramesDecoded  *prometheus.CounterVec // labels: result
	FramesSent     *prometheus.CounterVec // labels: opcode
	SupplyVoltage  *prometheus.GaugeVec   // labels: serial
	LinkQuality    *prometheus.GaugeVec   // labels: serial
	LastStatusTime *prometheus.GaugeVec   // labels: serial
}

func NewRadioMetrics(reg prometheus.Registerer) *RadioMetrics {
	m := &RadioMetrics{
		FramesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twelite_frames_decoded_total",
			Help: "Status frames received, by decode result.",
		}, []string{"result"}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twelite_frames_sent_total",
			Help: "Frames written to the module, by opcode.",
		}, []string{"opcode"}),
		SupplyVoltage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twelite_supply_millivolts",
			Help: "Last reported supply voltage of a sender.",
		}, []string{"serial"}),
		LinkQuality: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twelite_link_quality_dbm",
			Help: "Last reported link quality of a sender.",
		}, []string{"serial"}),
		LastStatusTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twelite_last_status_timestamp_seconds",
			Help: "Unix time of the last status received from a sender.",
		}, []string{"serial"}),
	}
	reg.MustRegister(m.FramesDecoded, m.FramesSent, m.SupplyVoltage, m.LinkQuality, m.LastStatusTime)
	return m
}

// ObserveStatus records a successfully decoded status.
func (m *RadioMetrics) ObserveStatus(s twelite.ReceivedStatus, at time.Time) {
	m.FramesDecoded.WithLabelValues(ResultOK).Inc()

	serial := fmt.Sprintf("%08X", s.SenderSerialNumber)
	m.SupplyVoltage.WithLabelValues(serial).Set(float64(s.PowerSupplyVoltage))
	m.LastStatusTime.WithLabelValues(serial).Set(float64(at.Unix()))
	if dbm, ok := s.LQI(); ok {
		m.LinkQuality.WithLabelValues(serial).Set(dbm)
	}
}

// ObserveDecodeError records a frame that could not be decoded.
func (m *RadioMetrics) ObserveDecodeError(err error) {
	m.FramesDecoded.WithLabelValues(decodeResult(err)).Inc()
}

func decodeResult(err error) string {
	switch {
	case errors.Is(err, twelite.ErrMalformedFrame):
		return ResultMalformed
	case errors.Is(err, twelite.ErrChecksumMismatch):
		return ResultChecksum
	case errors.Is(err, twelite.ErrUnexpectedOpcode):
		return ResultOpcode
	default:
		return ResultError
	}
}

// ObserveSent records a frame written to the module.
func (m *RadioMetrics) ObserveSent(cmd twelite.Command) {
	m.FramesSent.WithLabelValues("0x" + strconv.FormatUint(uint64(cmd.Opcode()), 16)).Inc()
}
