// Package atcmd implements the AT-style command layer that rides on
// top of sdep: fragmenting a text command into BleAtWrapper packets
// and reassembling a response, stripping its trailing OK/ERROR line.
package atcmd

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"ps2bridge.dev/sdep"
)

// Timeout is the default deadline for a single command/response
// round trip.
const Timeout = 150 * time.Millisecond

// Send fragments cmd into sdep packets of at most sdep.MaxPayload
// bytes each, writing all but the last with More set, and transmits
// them over f. It does not wait for a response.
func Send(f *sdep.Framer, cmd string, timeout time.Duration) error {
	data := []byte(cmd)
	for len(data) > sdep.MaxPayload {
		pkt := buildPacket(data[:sdep.MaxPayload], true)
		ok, err := f.SendPacket(&pkt, timeout)
		if err != nil {
			return err
		}
		if !ok {
			return sdep.ErrTimeout
		}
		data = data[sdep.MaxPayload:]
	}
	pkt := buildPacket(data, false)
	ok, err := f.SendPacket(&pkt, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return sdep.ErrTimeout
	}
	return nil
}

func buildPacket(data []byte, more bool) sdep.Packet {
	pkt := sdep.Packet{
		Type:    sdep.Command,
		Command: sdep.BleAtWrapper,
		Len:     uint8(len(data)),
		More:    more,
	}
	copy(pkt.Payload[:], data)
	return pkt
}

// ReadResponse collects one or more Response packets from f until one
// arrives with More unset, trims the trailing CR/LF and OK/ERROR
// status line, and reports whether the command succeeded.
func ReadResponse(f *sdep.Framer, timeout time.Duration) (text string, ok bool, err error) {
	var buf bytes.Buffer
	for {
		var msg sdep.Packet
		got, err := f.RecvPacket(&msg, 2*timeout)
		if err != nil {
			return "", false, err
		}
		if !got {
			return "", false, sdep.ErrTimeout
		}
		if msg.Type != sdep.Response {
			return "", false, fmt.Errorf("atcmd: unexpected packet type %#x", byte(msg.Type))
		}
		buf.Write(msg.Payload[:msg.Len])
		if !msg.More {
			break
		}
	}

	text = strings.TrimRight(buf.String(), "\r\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	last := lines[len(lines)-1]
	body := strings.Join(lines[:len(lines)-1], "\n")
	return body, last == "OK", nil
}

// Command sends cmd and, if resp is non-nil, waits for and decodes
// the response into resp, returning the number of bytes written and
// whether the device reported success. If resp is nil, Command
// returns as soon as the request has been transmitted, without
// waiting for a reply.
func Command(f *sdep.Framer, cmd string, resp []byte, timeout time.Duration) (n int, ok bool, err error) {
	if err := Send(f, cmd, timeout); err != nil {
		return 0, false, err
	}
	if resp == nil {
		return 0, true, nil
	}
	text, ok, err := ReadResponse(f, timeout)
	if err != nil {
		return 0, false, err
	}
	n = copy(resp, text)
	return n, ok, nil
}
