package proto

import "encoding/binary"

// PointerAction is the phase of a pointer gesture.
type PointerAction uint8

const (
	PointerDown PointerAction = iota + 1
	PointerDrag
	PointerUp
	PointerMove
	PointerLeave
)

func (a PointerAction) String() string {
	switch a {
	case PointerDown:
		return "down"
	case PointerDrag:
		return "drag"
	case PointerUp:
		return "up"
	case PointerMove:
		return "move"
	case PointerLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// PointerPayload encodes a MsgPointer payload.
//
// Layout (little-endian):
//   - u8: action
//   - i16: x (pixels)
//   - i16: y (pixels)
func PointerPayload(action PointerAction, x, y int16) []byte {
	buf := make([]byte, 5)
	buf[0] = byte(action)
	binary.LittleEndian.PutUint16(buf[1:3], uint16(x))
	binary.LittleEndian.PutUint16(buf[3:5], uint16(y))
	return buf
}

func DecodePointerPayload(b []byte) (action PointerAction, x, y int16, ok bool) {
	if len(b) != 5 {
		return 0, 0, 0, false
	}
	action = PointerAction(b[0])
	if action < PointerDown || action > PointerLeave {
		return 0, 0, 0, false
	}
	x = int16(binary.LittleEndian.Uint16(b[1:3]))
	y = int16(binary.LittleEndian.Uint16(b[3:5]))
	return action, x, y, true
}

// KeyPayload encodes a MsgKey payload.
//
// Layout (little-endian):
//   - u16: key code (hal.KeyCode)
//   - u8: 1 on press, 0 on release
//   - u32: rune (0 for non-text keys)
func KeyPayload(code uint16, press bool, r rune) []byte {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], code)
	if press {
		buf[2] = 1
	}
	binary.LittleEndian.PutUint32(buf[3:7], uint32(r))
	return buf
}

func DecodeKeyPayload(b []byte) (code uint16, press bool, r rune, ok bool) {
	if len(b) != 7 {
		return 0, false, 0, false
	}
	code = binary.LittleEndian.Uint16(b[0:2])
	press = b[2] != 0
	r = rune(binary.LittleEndian.Uint32(b[3:7]))
	return code, press, r, true
}
