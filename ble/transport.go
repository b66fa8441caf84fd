// Package ble implements the BLE-HID transport: a bounded
// request/response queue that serializes keyboard, consumer-control
// and mouse events into AT commands and drives the bring-up and
// connection-tracking state machine described by the BLE
// co-processor's command set.
package ble

import (
	"fmt"
	"time"

	"ps2bridge.dev/atcmd"
	"ps2bridge.dev/sdep"
)

// Logger receives transport diagnostics; it mirrors ps2.Host's
// Logf shape so both layers can share one sink.
type Logger interface {
	Logf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Logf(format string, args ...any) {}

const (
	sdepTimeout      = 150 * time.Millisecond
	sdepShortTimeout = 10 * time.Millisecond

	connectionUpdateInterval = time.Second
	batteryUpdateInterval    = 10 * time.Second
)

const (
	eventsProbed = 1 << iota
	eventsInUse
)

// State is the transport's externally-observable condition, the Go
// analogue of adafruit_ble.cpp's anonymous `state` struct.
type State struct {
	Initialized bool
	Configured  bool
	Connected   bool

	eventFlags int

	lastConnectionUpdate time.Duration
	lastBatteryUpdate    time.Duration
	BatteryMillivolts    uint32
}

// Transport owns the send/response queues and the AT-command bring-up
// sequence for a single BLE co-processor reachable over f.
type Transport struct {
	Framer      *sdep.Framer
	Clock       sdep.Clock
	Logger      Logger
	Product     string
	Description string

	// SampleBattery gates the periodic AT+HWVBAT poll in Task. It
	// defaults to true in NewTransport, matching the original
	// firmware's SAMPLE_BATTERY default.
	SampleBattery bool

	State State

	sendBuf *SendBuffer
	respBuf *RespBuffer
}

// NewTransport returns a Transport ready to have its Task method
// driven from a scan loop. product and description populate the
// advertised GAP device name.
func NewTransport(f *sdep.Framer, clock sdep.Clock, product, description string, logger Logger) *Transport {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Transport{
		Framer:        f,
		Clock:         clock,
		Logger:        logger,
		Product:       product,
		Description:   description,
		SampleBattery: true,
		sendBuf:       newSendBuffer(),
		respBuf:       newRespBuffer(),
	}
}

// command runs an AT command over t's framer via atcmd.Command.
func (t *Transport) command(cmd string, resp []byte, timeout time.Duration) (int, bool, error) {
	return atcmd.Command(t.Framer, cmd, resp, timeout)
}

// configure runs the one-time bring-up sequence: disable echo,
// shorten connection intervals, set the advertised name, enable HID,
// turn the radio power down, and reset the co-processor to apply it.
func (t *Transport) configure() bool {
	t.State.Configured = false

	commands := []string{
		"ATE=0",
		"AT+GAPINTERVALS=10,30,,",
		fmt.Sprintf("AT+GAPDEVNAME=%s %s", t.Product, t.Description),
		"AT+BLEHIDEN=1",
		"AT+BLEPOWERLEVEL=-12",
		"ATZ",
	}
	resp := make([]byte, 128)
	for _, cmd := range commands {
		_, ok, err := t.command(cmd, resp, sdepTimeout)
		if err != nil || !ok {
			t.Logger.Logf("ble: bring-up command failed: %s: %v", cmd, err)
			return false
		}
	}

	t.State.Configured = true
	t.State.lastConnectionUpdate = t.Clock.Now()
	return true
}

func (t *Transport) setConnected(connected bool) {
	if connected == t.State.Connected {
		return
	}
	if connected {
		t.Logger.Logf("ble: connected")
	} else {
		t.Logger.Logf("ble: disconnected")
	}
	t.State.Connected = connected
}

// Task advances the transport by one scheduling step: it runs the
// bring-up sequence if needed, drains one queued response and sends
// one queued item, and on a slower cadence polls connection and
// battery status. It must be called repeatedly from the scan loop; it
// never blocks longer than the timeouts it's given.
func (t *Transport) Task() error {
	if !t.State.Configured && !t.configure() {
		return nil
	}

	t.respBufReadOne(true)
	t.sendBufSendOne(sdepShortTimeout)

	if t.State.eventFlags&eventsInUse != 0 && t.respBuf.Empty() &&
		t.Framer.IRQ != nil && t.Framer.IRQ.Asserted() {
		t.pollEventStatus()
	}

	if t.Clock.Now()-t.State.lastConnectionUpdate > connectionUpdateInterval {
		t.pollConnection()
	}

	if t.SampleBattery && t.Clock.Now()-t.State.lastBatteryUpdate > batteryUpdateInterval && t.respBuf.Empty() {
		t.pollBattery()
	}

	return nil
}

// pollConnection runs every connectionUpdateInterval. It probes for
// event support exactly once; once events are in use, connection
// state comes from pollEventStatus instead and this only refreshes
// the timer. Until events are probed and working, it falls back to
// polling AT+GAPGETCONN directly.
func (t *Transport) pollConnection() {
	t.State.lastConnectionUpdate = t.Clock.Now()

	if t.State.eventFlags&eventsProbed == 0 {
		t.probeEvents()
	}
	if t.State.eventFlags&eventsInUse != 0 {
		return
	}

	resp := make([]byte, 16)
	n, ok, err := t.command("AT+GAPGETCONN", resp, sdepTimeout)
	if err != nil || !ok {
		return
	}
	t.setConnected(string(resp[:n]) == "1")
}

// probeEvents asks the co-processor to enable events once
// (AT+EVENTENABLE=0x1 then 0x2); success switches the transport onto
// the AT+EVENTSTATUS path for the rest of its lifetime.
func (t *Transport) probeEvents() {
	t.State.eventFlags |= eventsProbed

	resp := make([]byte, 16)
	if _, ok, err := t.command("AT+EVENTENABLE=0x1", resp, sdepTimeout); err != nil || !ok {
		return
	}
	if _, ok, err := t.command("AT+EVENTENABLE=0x2", resp, sdepTimeout); err != nil || !ok {
		return
	}
	t.State.eventFlags |= eventsInUse
}

// pollEventStatus reads AT+EVENTSTATUS and updates connection state
// from bit 0 (Connected) / bit 1 (Disconnected) of its hex result.
func (t *Transport) pollEventStatus() {
	resp := make([]byte, 16)
	n, ok, err := t.command("AT+EVENTSTATUS", resp, sdepTimeout)
	if err != nil || !ok {
		return
	}
	var bits uint
	fmt.Sscanf(string(resp[:n]), "%x", &bits)
	switch {
	case bits&0x1 != 0:
		t.setConnected(true)
	case bits&0x2 != 0:
		t.setConnected(false)
	}
}

func (t *Transport) pollBattery() {
	t.State.lastBatteryUpdate = t.Clock.Now()
	resp := make([]byte, 16)
	n, ok, err := t.command("AT+HWVBAT", resp, sdepTimeout)
	if err != nil || !ok {
		return
	}
	var mv uint32
	fmt.Sscanf(string(resp[:n]), "%d", &mv)
	t.State.BatteryMillivolts = mv
}

// respBufReadOne consumes the oldest pending response if one has
// arrived, or drops it once it has been outstanding too long. When
// greedy is set it keeps draining while IRQ remains asserted.
func (t *Transport) respBufReadOne(greedy bool) {
	sent, ok := t.respBuf.Peek()
	if !ok {
		return
	}
	if t.Framer.IRQ != nil && t.Framer.IRQ.Asserted() {
		var msg sdep.Packet
		got, err := t.Framer.RecvPacket(&msg, sdepShortTimeout)
		if err != nil {
			t.Logger.Logf("ble: recv error: %v", err)
			return
		}
		if got {
			t.respBuf.Dequeue()
			t.Logger.Logf("ble: recv latency %v", t.Clock.Now()-sent)
			if greedy && !t.respBuf.Empty() && t.Framer.IRQ.Asserted() {
				t.respBufReadOne(true)
			}
		}
		return
	}
	if t.Clock.Now()-sent > 2*sdepTimeout {
		t.Logger.Logf("ble: response timed out, dropping")
		t.respBuf.Dequeue()
	}
}

// sendBufSendOne sends the oldest queued item, provided no response
// is already outstanding.
func (t *Transport) sendBufSendOne(timeout time.Duration) {
	if !t.respBuf.Empty() {
		return
	}
	item, ok := t.sendBuf.Peek()
	if !ok {
		return
	}
	if t.processItem(item, timeout) {
		t.sendBuf.Dequeue()
		return
	}
	t.Logger.Logf("ble: send failed, will retry")
	t.respBufReadOne(true)
}

func (t *Transport) processItem(item Item, timeout time.Duration) bool {
	if lat := t.Clock.Now() - item.Added; lat > 0 {
		t.Logger.Logf("ble: send latency %v", lat)
	}

	switch item.Kind {
	case KeyReport:
		cmd := fmt.Sprintf("AT+BLEKEYBOARDCODE=%02x-00-%02x-%02x-%02x-%02x-%02x-%02x",
			item.Modifier, item.Keys[0], item.Keys[1], item.Keys[2], item.Keys[3], item.Keys[4], item.Keys[5])
		return t.sendNoWait(cmd, timeout)
	case Consumer:
		cmd := fmt.Sprintf("AT+BLEHIDCONTROLKEY=0x%04x", item.Consumer)
		return t.sendNoWait(cmd, timeout)
	case MouseMove:
		move := fmt.Sprintf("AT+BLEHIDMOUSEMOVE=%d,%d,%d,%d", item.X, item.Y, item.Scroll, item.Pan)
		if !t.sendNoWait(move, timeout) {
			return false
		}
		return t.sendNoWait("AT+BLEHIDMOUSEBUTTON="+mouseButtonString(item.Buttons), timeout)
	default:
		return true
	}
}

const (
	MouseButtonLeft = 1 << iota
	MouseButtonRight
	MouseButtonMiddle
)

func mouseButtonString(buttons byte) string {
	if buttons == 0 {
		return "0"
	}
	s := ""
	if buttons&MouseButtonLeft != 0 {
		s += "L"
	}
	if buttons&MouseButtonRight != 0 {
		s += "R"
	}
	if buttons&MouseButtonMiddle != 0 {
		s += "M"
	}
	return s
}

// sendNoWait transmits cmd and enqueues its response slot without
// blocking for the reply, draining the oldest outstanding response
// first if the buffer is full.
func (t *Transport) sendNoWait(cmd string, timeout time.Duration) bool {
	if err := atcmd.Send(t.Framer, cmd, timeout); err != nil {
		return false
	}
	now := t.Clock.Now()
	for !t.respBuf.Enqueue(now) {
		t.respBufReadOne(false)
	}
	return true
}
