package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgError
	MsgPointer
	MsgKey
	MsgClear
	MsgStateGet
	MsgStateSet
	MsgGradeGet
	MsgStateResp
	MsgStateChanged
	MsgAppShutdown
)

// ErrCode is a generic error category for MsgError responses.
type ErrCode uint16

const (
	ErrUnknown ErrCode = iota
	ErrBadMessage
	ErrUnauthorized
	ErrNotFound
	ErrBusy
	ErrOverflow
	ErrTooLarge
	ErrInternal
	ErrBadState
)

func (c ErrCode) String() string {
	switch c {
	case ErrUnknown:
		return "unknown"
	case ErrBadMessage:
		return "bad_message"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrNotFound:
		return "not_found"
	case ErrBusy:
		return "busy"
	case ErrOverflow:
		return "overflow"
	case ErrTooLarge:
		return "too_large"
	case ErrInternal:
		return "internal"
	case ErrBadState:
		return "bad_state"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgError:
		return "error"
	case MsgPointer:
		return "pointer"
	case MsgKey:
		return "key"
	case MsgClear:
		return "clear"
	case MsgStateGet:
		return "state_get"
	case MsgStateSet:
		return "state_set"
	case MsgGradeGet:
		return "grade_get"
	case MsgStateResp:
		return "state_resp"
	case MsgStateChanged:
		return "state_changed"
	case MsgAppShutdown:
		return "app_shutdown"
	default:
		return "unknown"
	}
}
