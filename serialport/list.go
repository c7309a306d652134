package serialport

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Product strings reported by MONOWIRELESS USB devices.
var monoWirelessProducts = []string{"MONOSTICK", "TWELITE", "TWE-LITE"}

// List returns the serial ports attached to MONOWIRELESS devices, or every
// port when anyManufacturer is set.
func List(anyManufacturer bool) ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}

	if anyManufacturer {
		return ports, nil
	}

	return filter(ports), nil
}

func filter(ports []*enumerator.PortDetails) []*enumerator.PortDetails {
	var out []*enumerator.PortDetails
	for _, p := range ports {
		if IsMonoWireless(p) {
			out = append(out, p)
		}
	}
	return out
}

// IsMonoWireless reports whether p belongs to a TWELITE USB device.
func IsMonoWireless(p *enumerator.PortDetails) bool {
	if p == nil || !p.IsUSB {
		return false
	}

	product := strings.ToUpper(p.Product)
	for _, name := range monoWirelessProducts {
		if strings.Contains(product, name) {
			return true
		}
	}

	return false
}
