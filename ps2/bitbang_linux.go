//go:build linux && !tinygo

package ps2

import (
	"errors"

	"periph.io/x/conn/v3/gpio"
)

// LineSource decodes the PS/2 electrical protocol directly off two
// GPIO lines: an 11-bit frame (start, 8 data bits LSB-first, odd
// parity, stop) is clocked in on the falling edge of clk, with data
// sampled from dat. It implements ByteSource.
type LineSource struct {
	clk, dat gpio.PinIO

	bitPos  int
	frame   byte
	parity  byte
}

// NewLineSource configures clk and dat as pulled-up inputs and
// returns a ready LineSource. The host keeps the clock line low to
// inhibit transmission; that line's direction is controlled
// elsewhere, since Recv only ever reads it.
func NewLineSource(clk, dat gpio.PinIO) (*LineSource, error) {
	if err := clk.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, err
	}
	if err := dat.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, err
	}
	return &LineSource{clk: clk, dat: dat}, nil
}

// Recv blocks for one clock edge at a time, returning ErrNoData until
// a full 11-bit frame with valid parity and stop bit has been
// assembled, at which point it returns the decoded data byte.
func (s *LineSource) Recv() (byte, error) {
	if !s.clk.WaitForEdge(-1) {
		return 0, ErrNoData
	}
	bit := s.dat.Read() == gpio.High

	switch {
	case s.bitPos == 0: // start bit
		if bit {
			return 0, errFraming // start bit must be low
		}
	case s.bitPos >= 1 && s.bitPos <= 8:
		if bit {
			s.frame |= 1 << (s.bitPos - 1)
			s.parity ^= 1
		}
	case s.bitPos == 9: // parity
		want := s.parity ^ 1 // odd parity
		if bit != (want == 1) {
			s.reset()
			return 0, errFraming
		}
	case s.bitPos == 10: // stop bit
		defer s.reset()
		if !bit {
			return 0, errFraming
		}
		return s.frame, nil
	}
	s.bitPos++
	return 0, ErrNoData
}

func (s *LineSource) reset() {
	s.bitPos = 0
	s.frame = 0
	s.parity = 0
}

var errFraming = errors.New("ps2: framing or parity error")
