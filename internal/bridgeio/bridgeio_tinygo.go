//go:build tinygo

package bridgeio

import (
	"machine"

	"ps2bridge.dev/config"
	"ps2bridge.dev/driver"
	"ps2bridge.dev/hostreport"
	"ps2bridge.dev/ps2"
	"ps2bridge.dev/sdep"
	"ps2bridge.dev/spi"
)

// Pin assignments for the reference RP2040 converter board. A
// different board only needs a different bridgeio_tinygo.go.
const (
	ps2ClockPin = machine.GPIO2
	ps2DataPin  = machine.GPIO3

	bleResetPin = machine.GPIO6
	bleCSPin    = machine.GPIO5
	bleIRQPin   = machine.GPIO7
)

// Open brings up the SPI bus, chip-select/IRQ/reset lines and PS/2
// interrupt source for the reference board wiring.
func Open(cfg config.Config) (*sdep.Framer, ps2.ByteSource, hostreport.Sink, func(), error) {
	bus, err := spi.Open(machine.SPI0)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cs := driver.OpenChipSelect(bleCSPin)
	irq := driver.OpenIRQ(bleIRQPin)
	reset := driver.OpenReset(bleResetPin)
	reset.Pulse()

	framer := &sdep.Framer{Bus: bus, CS: cs, IRQ: irq, Clock: driver.NewClock()}
	src := ps2.NewInterruptSource(ps2ClockPin, ps2DataPin)

	return framer, src, hostreport.NopSink{}, func() {}, nil
}
