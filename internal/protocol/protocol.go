package protocol

import "encoding/json"

const Version = "1.0"

const (
	// Handler socket (update-handler process -> server).
	TypeHandlerHello = "HANDLER_HELLO"
	TypeHandlerReady = "HANDLER_READY"
	TypeUpdateReq    = "UPDATE_REQ"
	TypeUpdateResp   = "UPDATE_RESP"

	// Event socket (host game -> server).
	TypeEvent    = "EVENT"
	TypeEventAck = "EVENT_ACK"
)

const (
	EventInteract  = "INTERACT"
	EventItemSpawn = "ITEM_SPAWN"
)

type BaseMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

func DecodeBase(b []byte) (BaseMsg, error) {
	var m BaseMsg
	err := json.Unmarshal(b, &m)
	return m, err
}
