//go:build tinygo

package spi

import "machine"

// BusSpeedHz matches the Linux build's spidev configuration.
const BusSpeedHz = 4_000_000

// Device wraps a machine.SPI peripheral as an sdep.Bus.
type Device struct {
	bus *machine.SPI
}

// Open configures bus for SPI mode 0, MSB-first, at BusSpeedHz, and
// returns a ready Device. Pin assignments are the board's default SPI
// pins; callers needing different wiring should configure bus
// themselves and call Wrap instead.
func Open(bus *machine.SPI) (*Device, error) {
	if err := bus.Configure(machine.SPIConfig{
		Frequency: BusSpeedHz,
		Mode:      0,
	}); err != nil {
		return nil, err
	}
	return &Device{bus: bus}, nil
}

// Wrap adapts an already-configured SPI peripheral.
func Wrap(bus *machine.SPI) *Device {
	return &Device{bus: bus}
}

// Transfer implements sdep.Bus.
func (d *Device) Transfer(tx byte) (byte, error) {
	return d.bus.Transfer(tx)
}
