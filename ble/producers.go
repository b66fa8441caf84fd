package ble

import "fmt"

// Connected reports the transport's last known BLE connection state.
func (t *Transport) Connected() bool { return t.State.Connected }

// BatteryMillivolts reports the last sampled battery voltage.
func (t *Transport) BatteryMillivolts() uint32 { return t.State.BatteryMillivolts }

// QueueDepth reports how many items are waiting to be sent, for
// diagnostics and the debug monitor.
func (t *Transport) QueueDepth() int { return t.sendBuf.Len() }

// SendKeys enqueues a full HID keyboard report (modifier byte plus up
// to six simultaneously-held keycodes), splitting more than six keys
// across successive six-key reports. It blocks, draining the send
// queue itself, only when the queue is already full.
func (t *Transport) SendKeys(modifier byte, keys []byte) bool {
	added := t.Clock.Now()
	for {
		var chunk [6]byte
		copy(chunk[:], keys)
		item := Item{Kind: KeyReport, Added: added, Modifier: modifier, Keys: chunk}
		if !t.sendBuf.Enqueue(item) {
			t.sendBufSendOne(sdepTimeout)
			continue
		}
		if len(keys) <= 6 {
			return true
		}
		keys = keys[6:]
	}
}

// SendConsumerKey enqueues a single consumer-control usage code.
func (t *Transport) SendConsumerKey(keycode uint16) bool {
	item := Item{Kind: Consumer, Added: t.Clock.Now(), Consumer: keycode}
	for !t.sendBuf.Enqueue(item) {
		t.sendBufSendOne(sdepTimeout)
	}
	return true
}

// SendMouseMove enqueues a relative mouse movement/scroll/button
// report.
func (t *Transport) SendMouseMove(x, y, scroll, pan int8, buttons byte) bool {
	item := Item{Kind: MouseMove, Added: t.Clock.Now(), X: x, Y: y, Scroll: scroll, Pan: pan, Buttons: buttons}
	for !t.sendBuf.Enqueue(item) {
		t.sendBufSendOne(sdepTimeout)
	}
	return true
}

// SetModeLEDs switches the co-processor's mode (red) LED with
// AT+HWMODELED and the blue connection LED with AT+HWGPIO=19. The
// blue LED is lit only when on is true and the transport is
// connected; otherwise it is switched off. It returns false without
// sending anything when the transport is not configured.
func (t *Transport) SetModeLEDs(on bool) bool {
	if !t.State.Configured {
		return false
	}
	if on {
		t.command("AT+HWMODELED=1", nil, sdepTimeout)
	} else {
		t.command("AT+HWMODELED=0", nil, sdepTimeout)
	}
	if on && t.State.Connected {
		t.command("AT+HWGPIO=19,1", nil, sdepTimeout)
	} else {
		t.command("AT+HWGPIO=19,0", nil, sdepTimeout)
	}
	return true
}

// SetPowerLevel adjusts the radio's transmit power level in dBm.
func (t *Transport) SetPowerLevel(level int8) bool {
	if !t.State.Configured {
		return false
	}
	_, ok, err := t.command(fmt.Sprintf("AT+BLEPOWERLEVEL=%d", level), nil, sdepTimeout)
	return err == nil && ok
}
