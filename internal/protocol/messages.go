package protocol

// BlockPos is the ledger/registry lookup key: the block-aligned coordinate
// of a machine entity plus its dimension.
type BlockPos struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Z         int    `json:"z"`
	Dimension string `json:"dimension"`
}

// HANDLER_HELLO (handler -> server): announces the update channels this
// connection serves.
type HandlerHelloMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Name            string   `json:"name,omitempty"`
	Channels        []string `json:"channels"`
}

// HANDLER_READY (server -> handler)
type HandlerReadyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// UPDATE_REQ (server -> handler): one per reconciliation pass.
type UpdateRequest struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	ID              string   `json:"id"`
	Channel         string   `json:"channel"`
	Pos             BlockPos `json:"pos"`
}

// UPDATE_RESP (handler -> server).
//
// Progress values are declared as numbers on the wire; integrality is
// enforced by the progress renderer, not the schema, so a fractional value
// aborts the pass with E_PROGRESS_RANGE instead of being dropped silently.
type UpdateResponse struct {
	Type            string                `json:"type,omitempty"`
	ProtocolVersion string                `json:"protocol_version,omitempty"`
	ID              string                `json:"id,omitempty"`
	StorageBars     []StorageBarDirective `json:"storage_bars,omitempty"`
	Progress        map[string]float64    `json:"progress,omitempty"`
	Code            string                `json:"code,omitempty"`
	Message         string                `json:"message,omitempty"`
}

// StorageBarDirective activates one storage-bar element. Multiple directives
// for the same element in one response are merged by summing Change.
type StorageBarDirective struct {
	Element     string  `json:"element"`
	StorageType string  `json:"type"`
	Change      float64 `json:"change"`
}

// WireStack is an item stack as carried by world events.
type WireStack struct {
	Item    string `json:"item"`
	Count   int    `json:"count"`
	Display string `json:"display,omitempty"`
	Variant int    `json:"variant,omitempty"`
	UITag   bool   `json:"ui_tag,omitempty"`
}

// EVENT (host game -> server): world events the reconciler subscribes to.
type EventMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Event           string     `json:"event"`
	EntityID        string     `json:"entity_id"`
	PlayerID        string     `json:"player_id,omitempty"`
	Stack           *WireStack `json:"stack,omitempty"`
}

// EVENT_ACK (server -> host game)
type EventAckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}
