// Package bus is the inter-component messaging channel: named update
// channels with asynchronous invocation. Handlers run off the caller's
// goroutine; results land on a caller-owned reply channel, which is how the
// world loop gets its single suspension point per reconciliation pass.
package bus

import (
	"fmt"
	"sync"

	"machinecraft.ai/internal/protocol"
)

type Handler func(protocol.UpdateRequest) (protocol.UpdateResponse, error)

// Result is delivered to the reply channel passed to Invoke. Token echoes
// the caller's correlation token.
type Result struct {
	Token string
	Resp  protocol.UpdateResponse
	Err   error
}

// ErrNoHandler is the error delivered when a channel has no handler.
func ErrNoHandler(channel string) error {
	return fmt.Errorf("%s: no handler for %q", protocol.ErrUnknownChannel, channel)
}

type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func New() *Bus {
	return &Bus{handlers: map[string]Handler{}}
}

func (b *Bus) Register(channel string, h Handler) error {
	if channel == "" || h == nil {
		return fmt.Errorf("bus: empty channel or nil handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[channel]; ok {
		return fmt.Errorf("bus: channel %q already registered", channel)
	}
	b.handlers[channel] = h
	return nil
}

func (b *Bus) Unregister(channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, channel)
}

func (b *Bus) Has(channel string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.handlers[channel]
	return ok
}

// Invoke dispatches req to the channel's handler on a fresh goroutine and
// sends exactly one Result to reply. An unknown channel still produces a
// Result so the caller's pass can fail instead of hanging.
func (b *Bus) Invoke(channel, token string, req protocol.UpdateRequest, reply chan<- Result) {
	b.mu.RLock()
	h := b.handlers[channel]
	b.mu.RUnlock()

	if h == nil {
		go func() {
			reply <- Result{Token: token, Err: ErrNoHandler(channel)}
		}()
		return
	}
	go func() {
		resp, err := h(req)
		reply <- Result{Token: token, Resp: resp, Err: err}
	}()
}
