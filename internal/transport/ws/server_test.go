package ws

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"machinecraft.ai/internal/bus"
	"machinecraft.ai/internal/ledger"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
	"machinecraft.ai/internal/sim/world"
)

func newTestServer(t *testing.T) (*Server, *bus.Bus, *world.World, *httptest.Server) {
	t.Helper()
	led := ledger.NewMemory(nil)
	w := world.New(world.WorldConfig{ID: "test"}, &catalogs.Catalogs{}, led, bus.New())
	b := bus.New()
	s := NewServer(w, b, log.New(os.Stderr, "ws: ", 0), true)
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	return s, b, w, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg[T any](t *testing.T, conn *websocket.Conn) T {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		t.Fatalf("unmarshal %q: %v", msg, err)
	}
	return v
}

func TestHandlerHandshakeAndRoundTrip(t *testing.T) {
	_, b, _, ts := newTestServer(t)
	conn := dial(t, ts, "/handler")

	if err := conn.WriteJSON(protocol.HandlerHelloMsg{
		Type:            protocol.TypeHandlerHello,
		ProtocolVersion: protocol.Version,
		Name:            "generator-logic",
		Channels:        []string{"machine.generator.update"},
	}); err != nil {
		t.Fatal(err)
	}
	ready := readMsg[protocol.HandlerReadyMsg](t, conn)
	if !ready.Accepted {
		t.Fatalf("handshake rejected: %+v", ready)
	}
	// Registration takes effect before HANDLER_READY is written.
	if !b.Has("machine.generator.update") {
		t.Fatal("channel not registered")
	}

	// Server-side invoke travels as UPDATE_REQ; the handler answers.
	reply := make(chan bus.Result, 1)
	b.Invoke("machine.generator.update", "pass-1", protocol.UpdateRequest{
		Type:            protocol.TypeUpdateReq,
		ProtocolVersion: protocol.Version,
		ID:              "pass-1",
		Channel:         "machine.generator.update",
		Pos:             protocol.BlockPos{X: 1, Y: 64, Z: -1, Dimension: "overworld"},
	}, reply)

	req := readMsg[protocol.UpdateRequest](t, conn)
	if req.Type != protocol.TypeUpdateReq || req.ID != "pass-1" || req.Pos.X != 1 {
		t.Fatalf("req = %+v", req)
	}
	if err := conn.WriteJSON(protocol.UpdateResponse{
		Type:            protocol.TypeUpdateResp,
		ProtocolVersion: protocol.Version,
		ID:              "pass-1",
		StorageBars: []protocol.StorageBarDirective{
			{Element: "energy", StorageType: "energy", Change: 2.5},
		},
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-reply:
		if r.Err != nil {
			t.Fatalf("result err: %v", r.Err)
		}
		if r.Token != "pass-1" || len(r.Resp.StorageBars) != 1 || r.Resp.StorageBars[0].Change != 2.5 {
			t.Fatalf("result = %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no result")
	}
}

func TestHandlerHandshakeRejectsBadHello(t *testing.T) {
	_, b, _, ts := newTestServer(t)

	// Missing channels fails schema validation.
	conn := dial(t, ts, "/handler")
	if err := conn.WriteJSON(map[string]any{
		"type":             protocol.TypeHandlerHello,
		"protocol_version": protocol.Version,
	}); err != nil {
		t.Fatal(err)
	}
	ready := readMsg[protocol.HandlerReadyMsg](t, conn)
	if ready.Accepted || ready.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("ready = %+v", ready)
	}

	// Wrong version.
	conn2 := dial(t, ts, "/handler")
	if err := conn2.WriteJSON(protocol.HandlerHelloMsg{
		Type:            protocol.TypeHandlerHello,
		ProtocolVersion: "0.9",
		Channels:        []string{"machine.generator.update"},
	}); err != nil {
		t.Fatal(err)
	}
	ready2 := readMsg[protocol.HandlerReadyMsg](t, conn2)
	if ready2.Accepted {
		t.Fatalf("ready = %+v", ready2)
	}
	if b.Has("machine.generator.update") {
		t.Fatal("rejected hello registered a channel")
	}
}

func TestEventsEndpoint(t *testing.T) {
	_, _, w, ts := newTestServer(t)
	conn := dial(t, ts, "/events")

	if err := conn.WriteJSON(protocol.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: protocol.Version,
		Event:           protocol.EventItemSpawn,
		EntityID:        "I1",
		Stack:           &protocol.WireStack{Item: "COAL", Count: 3},
	}); err != nil {
		t.Fatal(err)
	}
	ack := readMsg[protocol.EventAckMsg](t, conn)
	if !ack.Accepted {
		t.Fatalf("ack = %+v", ack)
	}
	w.StepOnce()
	drops := w.DebugItemEntities()
	if len(drops) != 1 || drops[0].Stack.Item != "COAL" {
		t.Fatalf("drops = %+v", drops)
	}

	// Unknown event kinds are refused.
	if err := conn.WriteJSON(protocol.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: protocol.Version,
		Event:           "EXPLODE",
		EntityID:        "E1",
	}); err != nil {
		t.Fatal(err)
	}
	ack2 := readMsg[protocol.EventAckMsg](t, conn)
	if ack2.Accepted || ack2.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("ack = %+v", ack2)
	}
}
