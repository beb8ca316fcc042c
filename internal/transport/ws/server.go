// Package ws is the WebSocket transport: update-handler processes connect
// on /handler and serve named channels; the host game connects on /events
// and feeds world events.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"machinecraft.ai/internal/bus"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/world"
)

// handlerCallTimeout bounds one UPDATE_REQ round trip; a handler that never
// answers fails the pass instead of wedging the entity's single-flight slot.
const handlerCallTimeout = 10 * time.Second

type Server struct {
	world *world.World
	bus   *bus.Bus
	log   *log.Logger

	// Validate UPDATE_RESP payloads against the JSON schema before
	// dispatch. Costs a decode per response; tuning-controlled.
	validateResponses bool

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, b *bus.Bus, logger *log.Logger, validateResponses bool) *Server {
	return &Server{
		world:             w,
		bus:               b,
		log:               logger,
		validateResponses: validateResponses,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Mux returns the server's routes.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/handler", s.HandlerEndpoint())
	mux.HandleFunc("/events", s.EventsEndpoint())
	return mux
}

// handlerConn is one update-handler connection: a writer goroutine draining
// out, and pending UPDATE_REQ correlation state keyed by request id.
type handlerConn struct {
	out chan []byte

	mu      sync.Mutex
	pending map[string]chan handlerReply
	closed  bool
}

type handlerReply struct {
	resp protocol.UpdateResponse
	err  error
}

// call forwards one update request and blocks for its response.
func (hc *handlerConn) call(req protocol.UpdateRequest) (protocol.UpdateResponse, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return protocol.UpdateResponse{}, err
	}

	ch := make(chan handlerReply, 1)
	hc.mu.Lock()
	if hc.closed {
		hc.mu.Unlock()
		return protocol.UpdateResponse{}, fmt.Errorf("%s: handler disconnected", protocol.ErrHandlerFailed)
	}
	hc.pending[req.ID] = ch
	hc.mu.Unlock()

	defer func() {
		hc.mu.Lock()
		delete(hc.pending, req.ID)
		hc.mu.Unlock()
	}()

	select {
	case hc.out <- b:
	case <-time.After(handlerCallTimeout):
		return protocol.UpdateResponse{}, fmt.Errorf("%s: handler send queue full", protocol.ErrHandlerFailed)
	}

	select {
	case r := <-ch:
		return r.resp, r.err
	case <-time.After(handlerCallTimeout):
		return protocol.UpdateResponse{}, fmt.Errorf("%s: handler timed out", protocol.ErrHandlerFailed)
	}
}

func (hc *handlerConn) resolve(id string, r handlerReply) {
	hc.mu.Lock()
	ch := hc.pending[id]
	hc.mu.Unlock()
	if ch != nil {
		ch <- r
	}
}

// close fails every pending call.
func (hc *handlerConn) close() {
	hc.mu.Lock()
	hc.closed = true
	chans := make([]chan handlerReply, 0, len(hc.pending))
	for _, ch := range hc.pending {
		chans = append(chans, ch)
	}
	hc.pending = map[string]chan handlerReply{}
	hc.mu.Unlock()
	for _, ch := range chans {
		ch <- handlerReply{err: fmt.Errorf("%s: handler disconnected", protocol.ErrHandlerFailed)}
	}
}

// HandlerEndpoint serves update-handler connections. The first frame must be
// a HANDLER_HELLO naming the channels this connection serves; each channel
// is registered on the bus for the life of the connection.
func (s *Server) HandlerEndpoint() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, ok := s.handlerHandshake(conn)
		if !ok {
			return
		}

		hc := &handlerConn{
			out:     make(chan []byte, 64),
			pending: map[string]chan handlerReply{},
		}

		registered := make([]string, 0, len(hello.Channels))
		for _, ch := range hello.Channels {
			if err := s.bus.Register(ch, hc.call); err != nil {
				for _, prev := range registered {
					s.bus.Unregister(prev)
				}
				writeReady(conn, false, protocol.ErrProtoBadRequest, err.Error())
				return
			}
			registered = append(registered, ch)
		}
		writeReady(conn, true, "", "")
		s.log.Printf("handler %q connected, channels=%v", hello.Name, hello.Channels)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-hc.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: UPDATE_RESP frames resolve pending calls.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeUpdateResp {
				continue
			}
			if s.validateResponses {
				if err := protocol.ValidateUpdateResponse(msg); err != nil {
					s.log.Printf("handler %q: invalid UPDATE_RESP: %v", hello.Name, err)
					var id struct {
						ID string `json:"id"`
					}
					if json.Unmarshal(msg, &id) == nil && id.ID != "" {
						hc.resolve(id.ID, handlerReply{err: err})
					}
					continue
				}
			}
			var resp protocol.UpdateResponse
			if err := json.Unmarshal(msg, &resp); err != nil {
				continue
			}
			if resp.Code != "" {
				hc.resolve(resp.ID, handlerReply{err: fmt.Errorf("%s: %s", resp.Code, resp.Message)})
				continue
			}
			hc.resolve(resp.ID, handlerReply{resp: resp})
		}

		// Cleanup.
		for _, ch := range registered {
			s.bus.Unregister(ch)
		}
		hc.close()
		s.log.Printf("handler %q disconnected", hello.Name)
	}
}

func (s *Server) handlerHandshake(conn *websocket.Conn) (protocol.HandlerHelloMsg, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return protocol.HandlerHelloMsg{}, false
	}

	if err := protocol.ValidateHandlerHello(msg); err != nil {
		writeReady(conn, false, protocol.ErrProtoBadRequest, err.Error())
		return protocol.HandlerHelloMsg{}, false
	}
	var hello protocol.HandlerHelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return protocol.HandlerHelloMsg{}, false
	}
	if hello.ProtocolVersion != protocol.Version {
		writeReady(conn, false, protocol.ErrProtoBadRequest, "unsupported protocol_version")
		return protocol.HandlerHelloMsg{}, false
	}
	if len(hello.Channels) == 0 {
		writeReady(conn, false, protocol.ErrProtoBadRequest, "no channels")
		return protocol.HandlerHelloMsg{}, false
	}
	if hello.Name == "" {
		hello.Name = "handler"
	}
	return hello, true
}

// EventsEndpoint serves the host-game event feed. Each EVENT frame is
// validated, forwarded to the world, and acked.
func (s *Server) EventsEndpoint() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := protocol.ValidateEvent(msg); err != nil {
				writeAck(conn, false, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			var ev protocol.EventMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				writeAck(conn, false, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			if ev.ProtocolVersion != protocol.Version {
				writeAck(conn, false, protocol.ErrProtoBadRequest, "unsupported protocol_version")
				continue
			}
			switch ev.Event {
			case protocol.EventInteract, protocol.EventItemSpawn:
			default:
				writeAck(conn, false, protocol.ErrProtoBadRequest, "unknown event "+ev.Event)
				continue
			}

			s.world.Events() <- world.WorldEvent{
				Kind:     ev.Event,
				EntityID: ev.EntityID,
				PlayerID: ev.PlayerID,
				Stack:    stackFromWire(ev.Stack),
			}
			writeAck(conn, true, "", "")
		}
	}
}

func stackFromWire(ws *protocol.WireStack) *world.ItemStack {
	if ws == nil {
		return nil
	}
	return &world.ItemStack{
		Item:    ws.Item,
		Count:   ws.Count,
		Display: ws.Display,
		Variant: ws.Variant,
		UITag:   ws.UITag,
	}
}

func writeReady(conn *websocket.Conn, accepted bool, code, message string) {
	writeJSON(conn, protocol.HandlerReadyMsg{
		Type:            protocol.TypeHandlerReady,
		ProtocolVersion: protocol.Version,
		Accepted:        accepted,
		Code:            code,
		Message:         message,
	})
}

func writeAck(conn *websocket.Conn, accepted bool, code, message string) {
	writeJSON(conn, protocol.EventAckMsg{
		Type:            protocol.TypeEventAck,
		ProtocolVersion: protocol.Version,
		Accepted:        accepted,
		Code:            code,
		Message:         message,
	})
}

func writeJSON(conn *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}
