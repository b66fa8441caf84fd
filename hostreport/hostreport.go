// Package hostreport defines the Sink the decoded matrix is fed into
// when the bridge runs in its USB-HID role: an 8-byte keyboard report
// (modifier + 6 keycodes) and a 1-byte LED state, handed to whatever
// local HID gadget or pass-through device the platform build wires
// up.
package hostreport

import (
	"fmt"
	"os"
)

// Sink is the external USB-HID collaborator: it accepts an 8-byte HID
// boot keyboard report and the host's LED state.
type Sink interface {
	SetReport(report [8]byte) error
	SetLEDs(leds byte) error
}

// LED bits of the USB HID boot-protocol LED report.
const (
	LEDNumLock = 1 << iota
	LEDCapsLock
	LEDScrollLock
	LEDCompose
	LEDKana
)

// NopSink discards every report; useful when only the BLE path is
// active.
type NopSink struct{}

func (NopSink) SetReport([8]byte) error { return nil }
func (NopSink) SetLEDs(byte) error      { return nil }

// FileSink appends every report and LED update as a line of text to a
// file, for bench-testing the decoder/keymap path without a real
// USB-HID gadget attached.
type FileSink struct {
	f *os.File
}

// OpenFileSink creates or truncates path and returns a Sink backed by
// it. The caller is responsible for calling Close.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) SetReport(report [8]byte) error {
	_, err := fmt.Fprintf(s.f, "report % 02x\n", report)
	return err
}

func (s *FileSink) SetLEDs(leds byte) error {
	_, err := fmt.Fprintf(s.f, "leds %#02x\n", leds)
	return err
}

func (s *FileSink) Close() error { return s.f.Close() }
