//go:build linux && !tinygo

// Package bridgeio constructs the concrete SDEP transport and PS/2
// byte source for the running platform, shared by cmd/bridge and
// cmd/monitor so both drive identical hardware wiring.
package bridgeio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio/gpioreg"

	"ps2bridge.dev/config"
	"ps2bridge.dev/driver"
	"ps2bridge.dev/hostreport"
	"ps2bridge.dev/ps2"
	"ps2bridge.dev/sdep"
	"ps2bridge.dev/spi"
)

// ps2ClockPin and ps2DataPin are the BCM GPIO numbers wired to the
// keyboard's CLK and DATA lines on the reference Raspberry Pi debug
// build.
const (
	ps2ClockPin = 17
	ps2DataPin  = 27
)

// Open brings up the SPI bus, chip-select/IRQ/reset lines and PS/2
// line reader described by cfg, returning a ready Framer, ByteSource
// and host-report Sink plus a close function.
func Open(cfg config.Config) (*sdep.Framer, ps2.ByteSource, hostreport.Sink, func(), error) {
	if err := driver.Init(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("bridgeio: gpio init: %w", err)
	}

	bus, err := spi.Open(cfg.SPIDev)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("bridgeio: open %s: %w", cfg.SPIDev, err)
	}

	cs, err := driver.OpenChipSelect(cfg.CSPin)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	irq, err := driver.OpenIRQ(cfg.IRQPin)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	reset, err := driver.OpenReset(cfg.ResetPin)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	reset.Pulse()

	framer := &sdep.Framer{Bus: bus, CS: cs, IRQ: irq, Clock: driver.NewClock()}

	clk := gpioreg.ByName(fmt.Sprintf("GPIO%d", ps2ClockPin))
	dat := gpioreg.ByName(fmt.Sprintf("GPIO%d", ps2DataPin))
	if clk == nil || dat == nil {
		return nil, nil, nil, nil, fmt.Errorf("bridgeio: ps2 clock/data pins not found")
	}
	src, err := ps2.NewLineSource(clk, dat)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	closeHW := func() { bus.Close() }
	return framer, src, hostreport.NopSink{}, closeHW, nil
}
