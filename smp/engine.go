// Package smp implements the responder side of LE Secure Connections
// pairing with the numeric comparison association model [Vol 3, Part H,
// 2.3.5.6]. The engine is passive: it reacts to SM PDUs delivered by the
// caller, writes its replies to a Sink, and on completion exposes the
// derived long term key.
package smp

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/blekit/ble"
)

// Engine drives one pairing session at a time. It is not safe for
// concurrent dispatch on the same instance; the caller serializes PDUs
// per connection.
type Engine struct {
	ble.Logger

	config  Config
	sink    Sink
	session *session
}

func NewEngine(config Config, sink Sink) *Engine {
	return &Engine{
		Logger:  ble.GetLogger().ChildLogger(map[string]interface{}{"task": "smp"}),
		config:  config,
		sink:    sink,
		session: &session{},
	}
}

// SetAddresses supplies the 6-octet little-endian connection addresses.
// They must be set before the pairing-random exchange; key derivation
// binds both of them.
func (e *Engine) SetAddresses(local, remote []byte) error {
	if len(local) != 6 || len(remote) != 6 {
		return fmt.Errorf("addresses must be 6 octets, got %v and %v", len(local), len(remote))
	}

	e.session.localAddr = append([]byte(nil), local...)
	e.session.remoteAddr = append([]byte(nil), remote...)
	return nil
}

// Dispatch routes one inbound SM PDU (command code followed by its body)
// to its handler and returns after every reply the handler produced has
// been handed to the sink.
//
// An unrecognized command is reported through the returned error only:
// no Pairing Failed PDU is sent and the session is left untouched.
func (e *Engine) Dispatch(ctx context.Context, handle uint16, payload []byte) error {
	if len(payload) == 0 {
		return errors.New("empty smp pdu")
	}

	code := payload[0]
	v, ok := dispatcher[code]
	if !ok || v.handler == nil {
		e.Errorf("unhandled smp code 0x%02x", code)
		return fmt.Errorf("unhandled smp code 0x%02x", code)
	}

	e.Debugf("rx %v [%X]", v.desc, payload)

	if err := v.handler(ctx, e, handle, pdu(payload[1:])); err != nil {
		return errors.Wrap(err, v.desc)
	}
	return nil
}

// LongTermKey returns a copy of the derived LTK, or nil while
// authentication stage 2 has not completed.
func (e *Engine) LongTermKey() []byte {
	if e.session.derived == nil {
		return nil
	}
	return append([]byte(nil), e.session.derived.longTermKey...)
}

// DisplayCode returns the 6-digit numeric comparison value once the
// nonce exchange has produced it.
func (e *Engine) DisplayCode() (uint32, bool) {
	if e.session.derived == nil {
		return 0, false
	}
	return e.session.derived.displayCode, true
}

// Done reports whether the DHKey check exchange finished and the long
// term key is ready for use.
func (e *Engine) Done() bool {
	return e.session.phase == phaseDone
}

// Reset clears all session state so the engine can serve a new pairing
// attempt on the same connection. Addresses are kept.
func (e *Engine) Reset() {
	e.session.reset()
}
