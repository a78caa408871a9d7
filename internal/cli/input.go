package cli

import (
	"github.com/bastiangx/predict/pkg/session"
)

const (
	keyCodeControlC = 0x03
	keyCodeControlD = 0x04
	keyCodeEscape   = 0x1b
	keyCodeDelete   = 0x7f
)

// keyEvent is a decoded terminal key.
type keyEvent struct {
	keyval uint32
	mods   session.Modifier
	quit   bool
}

// decodeKeys turns raw terminal bytes into keysym events. Escape sequences
// other than the arrow and page keys are dropped, as are non-ASCII bytes.
func decodeKeys(buf []byte) []keyEvent {
	var events []keyEvent
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch {
		case b == keyCodeControlC || b == keyCodeControlD:
			events = append(events, keyEvent{quit: true})
		case b == '\r' || b == '\n':
			events = append(events, keyEvent{keyval: session.KeyReturn})
		case b == keyCodeDelete || b == 0x08:
			events = append(events, keyEvent{keyval: session.KeyBackSpace})
		case b == keyCodeEscape:
			ev, n := decodeEscape(buf[i+1:])
			i += n
			if ev != nil {
				events = append(events, *ev)
			}
		case b >= 0x01 && b <= 0x1a:
			events = append(events, keyEvent{keyval: uint32('a' + b - 1), mods: session.ControlMask})
		case b >= 0x20 && b <= 0x7e:
			events = append(events, keyEvent{keyval: uint32(b)})
		}
	}
	return events
}

// decodeEscape reads what follows an ESC byte and returns the event and the
// number of bytes consumed. A lone ESC is the Escape key.
func decodeEscape(rest []byte) (*keyEvent, int) {
	if len(rest) == 0 || (rest[0] != '[' && rest[0] != 'O') {
		return &keyEvent{keyval: session.KeyEscape}, 0
	}
	// CSI and SS3: parameters then a final byte in 0x40..0x7e
	end := 1
	for end < len(rest) && (rest[end] < 0x40 || rest[end] > 0x7e) {
		end++
	}
	if end == len(rest) {
		return nil, len(rest)
	}
	seq := string(rest[1 : end+1])
	consumed := end + 1

	switch seq {
	case "A":
		return &keyEvent{keyval: session.KeyUp}, consumed
	case "B":
		return &keyEvent{keyval: session.KeyDown}, consumed
	case "5~":
		return &keyEvent{keyval: session.KeyPageUp}, consumed
	case "6~":
		return &keyEvent{keyval: session.KeyPageDown}, consumed
	}
	return nil, consumed
}
