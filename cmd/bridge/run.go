package main

import (
	"log"

	"ps2bridge.dev/ble"
	"ps2bridge.dev/config"
	"ps2bridge.dev/hostreport"
	"ps2bridge.dev/internal/bridgeio"
	"ps2bridge.dev/keymap"
	"ps2bridge.dev/matrix"
	"ps2bridge.dev/ps2"
	"ps2bridge.dev/sdep"
)

// loopLogger adapts the standard logger to ps2.Host and ble.Logger.
type loopLogger struct{ verbose bool }

func (l loopLogger) Logf(format string, args ...any) {
	if l.verbose {
		log.Printf(format, args...)
	}
}

func (l loopLogger) ClearKeyboard() { log.Print("bridge: keyboard cleared (overrun or desync)") }
func (l loopLogger) ReloadLEDs()    {}

// run wires the decoder, transport and keymap together and drives the
// scan loop forever. It never returns except on an unrecoverable
// setup error.
func run(cfg config.Config, host string) error {
	framer, src, platformSink, closeHW, err := bridgeio.Open(cfg)
	if err != nil {
		return err
	}
	defer closeHW()

	sink, closeSink, err := openHostSink(host, platformSink)
	if err != nil {
		return err
	}
	defer closeSink()

	logger := loopLogger{verbose: cfg.Verbose}
	var m matrix.Matrix
	decoder := ps2.New(&m, logger)
	transport := ble.NewTransport(framer, clockOf(framer), cfg.Product, cfg.Description, logger)
	transport.SampleBattery = cfg.SampleBattery
	var layout keymap.Provider = keymap.Identity{}
	_ = sink // not written: keymap.Identity produces no HID reports

	var prev matrix.Matrix
	for {
		if err := decoder.Scan(src); err != nil {
			return err
		}
		if err := transport.Task(); err != nil {
			return err
		}
		if m.Modified() {
			reportTransitions(&prev, &m, layout)
			prev = m
		}
	}
}

func clockOf(f *sdep.Framer) sdep.Clock { return f.Clock }

// openHostSink resolves the --host flag into a hostreport.Sink. "none"
// keeps the platform's own sink (real USB-HID gadget, or a no-op on
// platforms without one); any other value is a file path capturing
// reports for bench testing.
func openHostSink(host string, platformSink hostreport.Sink) (hostreport.Sink, func(), error) {
	if host == "" || host == "none" {
		return platformSink, func() {}, nil
	}
	f, err := hostreport.OpenFileSink(host)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func reportTransitions(prev, cur *matrix.Matrix, layout keymap.Provider) {
	var events []keymap.Event
	for row := 0; row < matrix.Rows; row++ {
		before, after := prev.Row(row), cur.Row(row)
		if before == after {
			continue
		}
		for col := 0; col < matrix.Cols; col++ {
			bit := byte(1) << uint(col)
			if before&bit == after&bit {
				continue
			}
			pos := matrix.Position(row<<3 | col)
			events = append(events, keymap.Event{Pos: pos, Pressed: after&bit != 0})
		}
	}
	if len(events) > 0 {
		layout.Scan(events)
	}
}
