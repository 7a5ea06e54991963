package proto

import "encoding/binary"

// ErrorPayload encodes a MsgError response.
//
// Layout (little-endian):
//   - u16: code
//   - u16: ref kind (the request kind that failed)
//   - u32: request ID (0 when the request carried none)
//   - bytes: optional UTF-8 detail, truncated to fit a message
func ErrorPayload(code ErrCode, ref Kind, requestID uint32, detail string) []byte {
	d := []byte(detail)
	if len(d) > maxErrorDetail {
		d = d[:maxErrorDetail]
	}
	buf := make([]byte, 8+len(d))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(code))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(ref))
	binary.LittleEndian.PutUint32(buf[4:8], requestID)
	copy(buf[8:], d)
	return buf
}

const maxErrorDetail = 120

// DecodeErrorPayload decodes an ErrorPayload.
func DecodeErrorPayload(payload []byte) (code ErrCode, ref Kind, requestID uint32, detail string, ok bool) {
	if len(payload) < 8 {
		return 0, 0, 0, "", false
	}
	code = ErrCode(binary.LittleEndian.Uint16(payload[0:2]))
	ref = Kind(binary.LittleEndian.Uint16(payload[2:4]))
	requestID = binary.LittleEndian.Uint32(payload[4:8])
	return code, ref, requestID, string(payload[8:]), true
}
