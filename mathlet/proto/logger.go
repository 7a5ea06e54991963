package proto

// LogLinePayload encodes a MsgLogLine payload.
//
// Convention:
// - Payload is UTF-8 bytes without a trailing newline, cut at max bytes.
// - Delivery is best-effort; callers may drop on overflow.
func LogLinePayload(line string, max int) []byte {
	b := []byte(line)
	if max > 0 && len(b) > max {
		b = b[:max]
	}
	return b
}
