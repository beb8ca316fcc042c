package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Registry/definition consistency.
	ErrUnknownMachine   = "E_UNKNOWN_MACHINE"
	ErrNoUILayout       = "E_NO_UI_LAYOUT"
	ErrNoHandlerChannel = "E_NO_HANDLER_CHANNEL"

	// Pass-time validation.
	ErrUnknownStorageType = "E_UNKNOWN_STORAGE_TYPE"
	ErrProgressRange      = "E_PROGRESS_RANGE"

	// Messaging channel.
	ErrUnknownChannel = "E_UNKNOWN_CHANNEL"
	ErrHandlerFailed  = "E_HANDLER_FAILED"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:    {},
	ErrUnknownMachine:     {},
	ErrNoUILayout:         {},
	ErrNoHandlerChannel:   {},
	ErrUnknownStorageType: {},
	ErrProgressRange:      {},
	ErrUnknownChannel:     {},
	ErrHandlerFailed:      {},
	ErrInternal:           {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
