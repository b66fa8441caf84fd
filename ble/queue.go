package ble

import (
	"time"

	"ps2bridge.dev/internal/ring"
)

// Kind distinguishes the three shapes of queued HID event.
type Kind int

const (
	KeyReport Kind = iota
	Consumer
	MouseMove
)

// Item is the tagged union queued between the matrix scan loop and
// the AT command layer: a keyboard report, a consumer-control
// keycode, or a mouse move/button state.
type Item struct {
	Kind  Kind
	Added time.Duration // Clock.Now() at enqueue time, for latency logging

	Modifier byte
	Keys     [6]byte

	Consumer uint16

	X, Y, Scroll, Pan int8
	Buttons           byte
}

// sendBufCap mirrors the queue depth of the originating firmware:
// enough to absorb a fast typist's key-up/key-down bursts while a
// single slow AT round trip is in flight.
const sendBufCap = 40

// respBufCap enforces the one/two-outstanding-request discipline:
// room for the in-flight request plus one more queued behind it.
const respBufCap = 2

// SendBuffer queues outgoing Items.
type SendBuffer = ring.Buffer[Item]

// RespBuffer tracks the send time of requests awaiting a response.
type RespBuffer = ring.Buffer[time.Duration]

func newSendBuffer() *SendBuffer { return ring.NewBuffer[Item](sendBufCap) }
func newRespBuffer() *RespBuffer { return ring.NewBuffer[time.Duration](respBufCap) }
