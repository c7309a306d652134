package metrics

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"go.tigermatt.uk/twelite"
)

func TestRadioMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewRadioMetrics(reg)

	s, err := twelite.Decode(":7881150157810076ED780BE1000A942900013408190254DF\r\n")
	require.NoError(t, err)

	at := time.Unix(1700000000, 0)
	m.ObserveStatus(s, at)
	m.ObserveDecodeError(fmt.Errorf("wrapped: %w", twelite.ErrChecksumMismatch))
	m.ObserveDecodeError(twelite.ErrMalformedFrame)
	m.ObserveDecodeError(twelite.ErrMalformedFrame)

	cmd, err := twelite.NewChangeOutput()
	require.NoError(t, err)
	m.ObserveSent(cmd)

	require.Equal(t, 1.0, testutil.ToFloat64(m.FramesDecoded.WithLabelValues(ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FramesDecoded.WithLabelValues(ResultChecksum)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.FramesDecoded.WithLabelValues(ResultMalformed)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FramesSent.WithLabelValues("0x80")))
	require.Equal(t, 2708.0, testutil.ToFloat64(m.SupplyVoltage.WithLabelValues("810076ED")))
	require.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.LastStatusTime.WithLabelValues("810076ED")))
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m := NewRadioMetrics(reg)
	m.ObserveDecodeError(twelite.ErrUnexpectedOpcode)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `twelite_frames_decoded_total{result="opcode"} 1`)
}
