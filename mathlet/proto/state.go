package proto

import (
	"encoding/binary"
	"math"
)

// StatePayload encodes the matrix entries carried by MsgStateSet,
// MsgStateResp and MsgStateChanged.
//
// Layout (little-endian):
//   - u32: request ID (0 for unsolicited notifications)
//   - f64: a
//   - f64: b
//   - f64: c
//   - f64: d
func StatePayload(requestID uint32, a, b, c, d float64) []byte {
	buf := make([]byte, 4+4*8)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	for i, v := range [4]float64{a, b, c, d} {
		off := 4 + i*8
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
	}
	return buf
}

func DecodeStatePayload(payload []byte) (requestID uint32, a, b, c, d float64, ok bool) {
	if len(payload) != 4+4*8 {
		return 0, 0, 0, 0, 0, false
	}
	requestID = binary.LittleEndian.Uint32(payload[0:4])
	var v [4]float64
	for i := range v {
		off := 4 + i*8
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off : off+8]))
	}
	return requestID, v[0], v[1], v[2], v[3], true
}

// RequestPayload encodes a bare request ID (MsgStateGet, MsgGradeGet).
func RequestPayload(requestID uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, requestID)
	return buf
}

func DecodeRequestPayload(payload []byte) (requestID uint32, ok bool) {
	if len(payload) != 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(payload), true
}
