//go:build linux && !tinygo

// Package driver wires the sdep.ChipSelect/sdep.IRQ lines and the
// co-processor's hardware reset pin to real GPIO. The PS/2 clock/data
// lines are looked up by internal/bridgeio and read by ps2's Linux
// LineSource, not by this package.
package driver

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Init brings up periph.io's host drivers. Call once before opening
// any pin.
func Init() error {
	_, err := host.Init()
	return err
}

func pinByNumber(n int) (gpio.PinIO, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if p == nil {
		return nil, fmt.Errorf("driver: no such GPIO pin %d", n)
	}
	return p, nil
}

// ChipSelect drives an active-low chip-select line manually, as the
// sdep.Framer needs to hold it for multi-byte transfers.
type ChipSelect struct {
	pin gpio.PinIO
}

// OpenChipSelect configures GPIO bcmPin as a high-idle output.
func OpenChipSelect(bcmPin int) (*ChipSelect, error) {
	pin, err := pinByNumber(bcmPin)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, err
	}
	return &ChipSelect{pin: pin}, nil
}

func (c *ChipSelect) Assert()   { c.pin.Out(gpio.Low) }
func (c *ChipSelect) Deassert() { c.pin.Out(gpio.High) }

// IRQ reads the co-processor's interrupt line.
type IRQ struct {
	pin gpio.PinIO
}

// OpenIRQ configures GPIO bcmPin as an input.
func OpenIRQ(bcmPin int) (*IRQ, error) {
	pin, err := pinByNumber(bcmPin)
	if err != nil {
		return nil, err
	}
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, err
	}
	return &IRQ{pin: pin}, nil
}

func (i *IRQ) Asserted() bool { return i.pin.Read() == gpio.High }

// Reset drives the co-processor's active-low hardware reset line.
type Reset struct {
	pin gpio.PinIO
}

// OpenReset configures GPIO bcmPin as a high-idle output.
func OpenReset(bcmPin int) (*Reset, error) {
	pin, err := pinByNumber(bcmPin)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, err
	}
	return &Reset{pin: pin}, nil
}

// Pulse resets the co-processor: drive the line low for 10ms, then
// release it and wait 1s for boot, matching the bring-up timing of
// the original AVR firmware's ble_init.
func (r *Reset) Pulse() {
	r.pin.Out(gpio.Low)
	time.Sleep(10 * time.Millisecond)
	r.pin.Out(gpio.High)
	time.Sleep(time.Second)
}

// Clock implements sdep.Clock with the real wall clock.
type Clock struct{ start time.Time }

// NewClock returns a Clock whose Now() is relative to the call time.
func NewClock() *Clock { return &Clock{start: time.Now()} }

func (c *Clock) Now() time.Duration    { return time.Since(c.start) }
func (c *Clock) Sleep(d time.Duration) { time.Sleep(d) }
