// Package ps2 implements the PS/2 Scan Code Set 2 decoder: a
// byte-driven state machine that turns a raw PS/2 byte stream into
// make/break calls against a matrix.Matrix.
package ps2

import (
	"errors"
	"fmt"

	"ps2bridge.dev/matrix"
)

// ErrNoData is returned by a ByteSource when there is nothing to read
// this tick. The decoder treats it as "do nothing this call".
var ErrNoData = errors.New("ps2: no data")

// ByteSource is the external PS/2 line collaborator: it supplies the
// next raw PS/2 byte, or ErrNoData, or a framing/parity error. On any
// other error the decoder discards the byte and leaves its state
// unchanged, per the "drop the byte, keep state" recovery rule.
type ByteSource interface {
	Recv() (byte, error)
}

// Host receives the side effects the decoder can't represent as
// matrix edits: clearing the downstream HID report, reloading LED
// state, and debug/anomaly logging.
type Host interface {
	ClearKeyboard()
	ReloadLEDs()
	Logf(format string, args ...any)
}

// NopHost implements Host as a set of no-ops, useful for tests and
// for running the decoder headless.
type NopHost struct{}

func (NopHost) ClearKeyboard()                {}
func (NopHost) ReloadLEDs()                   {}
func (NopHost) Logf(format string, args ...any) {}

type state int

const (
	stateInit state = iota
	stateF0
	stateE0
	stateE0F0
	stateE1
	stateE1_14
	stateE1_14_77
	stateE1_14_77_E1
	stateE1_14_77_E1_F0
	stateE1_14_77_E1_F0_14
	stateE1_14_77_E1_F0_14_F0
	stateE0_7E
	stateE0_7E_E0
	stateE0_7E_E0_F0
)

// Decoder is the Scan Code Set 2 state machine. Create one with New;
// it starts in the INIT state. The zero value has no matrix and is
// not usable.
type Decoder struct {
	state state
	m     *matrix.Matrix
	host  Host
}

// New returns a Decoder that edits m and reports anomalies to host.
// If host is nil, NopHost is used.
func New(m *matrix.Matrix, host Host) *Decoder {
	if host == nil {
		host = NopHost{}
	}
	return &Decoder{m: m, host: host}
}

// Matrix returns the matrix the decoder is editing.
func (d *Decoder) Matrix() *matrix.Matrix { return d.m }

// Scan performs exactly one of: consume one byte from src and
// possibly transition state, or do nothing (when src reports
// ErrNoData). It must be called once per scan tick; it first injects
// the Pause pseudo-break, since Pause never sends its own break code.
func (d *Decoder) Scan(src ByteSource) error {
	d.m.BeginScan()

	// Pseudo-break: Pause has no break code of its own. The first
	// scan() call after its make synthesizes the break, giving Pause
	// a one-tick duration.
	if d.m.IsOn(int(matrix.Pause>>3), int(matrix.Pause&7)) {
		d.m.Break(matrix.Pause)
	}

	code, err := src.Recv()
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil
		}
		// ps2 parity/framing error: drop the byte, keep state.
		return nil
	}

	d.consume(code)
	return nil
}

func (d *Decoder) consume(code byte) {
	switch d.state {
	case stateInit:
		d.atInit(code)
	case stateF0:
		d.atF0(code)
	case stateE0:
		d.atE0(code)
	case stateE0F0:
		d.atE0F0(code)
	case stateE1:
		d.state = next(code == 0x14, stateE1_14)
	case stateE1_14:
		d.state = next(code == 0x77, stateE1_14_77)
	case stateE1_14_77:
		d.state = next(code == 0xE1, stateE1_14_77_E1)
	case stateE1_14_77_E1:
		d.state = next(code == 0xF0, stateE1_14_77_E1_F0)
	case stateE1_14_77_E1_F0:
		d.state = next(code == 0x14, stateE1_14_77_E1_F0_14)
	case stateE1_14_77_E1_F0_14:
		d.state = next(code == 0xF0, stateE1_14_77_E1_F0_14_F0)
	case stateE1_14_77_E1_F0_14_F0:
		if code == 0x77 {
			d.m.Make(matrix.Pause)
		}
		d.state = stateInit
	case stateE0_7E:
		d.state = next(code == 0xE0, stateE0_7E_E0)
	case stateE0_7E_E0:
		d.state = next(code == 0xF0, stateE0_7E_E0_F0)
	case stateE0_7E_E0_F0:
		if code == 0x7E {
			d.m.Make(matrix.Pause)
		}
		d.state = stateInit
	default:
		d.state = stateInit
	}
}

// next returns to into the following state iff cond holds, else
// silently returns to INIT: every Pause-chain deviation discards the
// partial sequence.
func next(cond bool, into state) state {
	if cond {
		return into
	}
	return stateInit
}

func (d *Decoder) atInit(code byte) {
	switch code {
	case 0xE0:
		d.state = stateE0
	case 0xF0:
		d.state = stateF0
	case 0xE1:
		d.state = stateE1
	case 0x83: // F7: normal code beyond 0x7F.
		d.m.Make(matrix.KCF7)
		d.state = stateInit
	case 0x84: // Alt'd PrintScreen.
		d.m.Make(matrix.PrintScreen)
		d.state = stateInit
	case 0x00: // Overrun.
		d.m.Clear()
		d.host.ClearKeyboard()
		d.host.Logf("ps2: overrun")
		d.state = stateInit
	case 0xAA, 0xFC: // Self-test passed / failed.
		d.host.ReloadLEDs()
		d.state = stateInit
	default:
		if code < 0x80 {
			d.m.Make(matrix.Position(code))
		} else {
			d.desync(fmt.Sprintf("unexpected scan code at INIT: %02X", code))
		}
		d.state = stateInit
	}
}

func (d *Decoder) atF0(code byte) {
	switch code {
	case 0x83:
		d.m.Break(matrix.KCF7)
		d.state = stateInit
	case 0x84:
		d.m.Break(matrix.PrintScreen)
		d.state = stateInit
	case 0xF0:
		d.desync("unexpected scan code at F0: F0 (clear and continue)")
		d.state = stateF0
	default:
		if code < 0x80 {
			d.m.Break(matrix.Position(code))
		} else {
			d.desync(fmt.Sprintf("unexpected scan code at F0: %02X", code))
		}
		d.state = stateInit
	}
}

func (d *Decoder) atE0(code byte) {
	switch code {
	case 0x12, 0x59: // Shift-synthesised escape, absorbed.
		d.state = stateInit
	case 0x7E: // Ctrl'd Pause.
		d.state = stateE0_7E
	case 0xF0:
		d.state = stateE0F0
	default:
		if code < 0x80 {
			d.m.Make(matrix.Position(code | 0x80))
		} else {
			d.desync(fmt.Sprintf("unexpected scan code at E0: %02X", code))
		}
		d.state = stateInit
	}
}

func (d *Decoder) atE0F0(code byte) {
	switch code {
	case 0x12, 0x59:
		d.state = stateInit
	default:
		if code < 0x80 {
			d.m.Break(matrix.Position(code | 0x80))
		} else {
			d.desync(fmt.Sprintf("unexpected scan code at E0_F0: %02X", code))
		}
		d.state = stateInit
	}
}

// desync is the fail-safe recovery of spec.md §7(a): wipe the matrix
// and host report, log, and the caller resets to INIT.
func (d *Decoder) desync(msg string) {
	d.m.Clear()
	d.host.ClearKeyboard()
	d.host.Logf("ps2: %s", msg)
}
