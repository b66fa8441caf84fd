// command monitor is a debug dashboard: it shows the live PS/2 matrix
// state and the BLE transport's connection/battery/queue status side
// by side. It is a read-only diagnostic tool, not a pairing UI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"ps2bridge.dev/ble"
	"ps2bridge.dev/config"
	"ps2bridge.dev/internal/bridgeio"
	"ps2bridge.dev/matrix"
	"ps2bridge.dev/ps2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	framer, src, _, closeHW, err := bridgeio.Open(cfg)
	if err != nil {
		return err
	}
	defer closeHW()

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	s.SetStyle(tcell.StyleDefault)

	var m matrix.Matrix
	logger := nopLogger{}
	decoder := ps2.New(&m, logger)
	transport := ble.NewTransport(framer, framer.Clock, cfg.Product, cfg.Description, logger)
	transport.SampleBattery = cfg.SampleBattery

	events := make(chan tcell.Event, 4)
	go s.ChannelEvents(events, nil)

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlQ:
					return nil
				}
			case *tcell.EventResize:
				s.Sync()
			}
		case <-ticker.C:
			if err := decoder.Scan(src); err != nil {
				return err
			}
			if err := transport.Task(); err != nil {
				return err
			}
			draw(s, &m, transport)
		}
	}
}

func draw(s tcell.Screen, m *matrix.Matrix, t *ble.Transport) {
	s.Clear()
	style := tcell.StyleDefault
	putStr(s, 1, 0, "ps2bridge monitor — press ESC to quit", style.Bold(true))

	putStr(s, 1, 2, "matrix:", style)
	for row := 0; row < matrix.Rows; row++ {
		bits := m.Row(row)
		if bits == 0 {
			continue
		}
		putStr(s, 3, 3+row, fmt.Sprintf("row %2d: %08b", row, bits), style)
	}

	status := 24
	putStr(s, 1, status, "transport:", style)
	putStr(s, 3, status+1, fmt.Sprintf("connected:  %v", t.Connected()), style)
	putStr(s, 3, status+2, fmt.Sprintf("battery:    %dmV", t.BatteryMillivolts()), style)
	putStr(s, 3, status+3, fmt.Sprintf("queue:      %d", t.QueueDepth()), style)

	s.Show()
}

func putStr(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for i, r := range str {
		s.SetContent(x+i, y, r, nil, style)
	}
}

type nopLogger struct{}

func (nopLogger) Logf(format string, args ...any) {}
func (nopLogger) ClearKeyboard()                  {}
func (nopLogger) ReloadLEDs()                     {}
