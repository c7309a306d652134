package serialport

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func TestIsMonoWireless(t *testing.T) {
	testCases := []struct {
		name   string
		port   *enumerator.PortDetails
		expect bool
	}{
		{"nil", nil, false},
		{"monostick", &enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "MONOSTICK"}, true},
		{"lower case", &enumerator.PortDetails{Name: "COM3", IsUSB: true, Product: "twelite r2"}, true},
		{"other usb", &enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, Product: "Arduino Uno"}, false},
		{"not usb", &enumerator.PortDetails{Name: "/dev/ttyS0", Product: "MONOSTICK"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, IsMonoWireless(tc.port))
		})
	}
}

func TestFilter(t *testing.T) {
	ports := []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true, Product: "MONOSTICK"},
		{Name: "/dev/ttyUSB1", IsUSB: true, Product: "FT232R USB UART"},
	}

	got := filter(ports)
	require.Len(t, got, 1)
	require.Equal(t, "/dev/ttyUSB0", got[0].Name)
}
