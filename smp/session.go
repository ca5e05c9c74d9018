package smp

import "crypto"

// A session walks through three one-way transitions. Each transition
// installs one immutable group of fields; handlers gate on the phase, so
// reading a value before the step that produces it is a checked error
// rather than a nil dereference.
type phase int

const (
	phaseIdle phase = iota
	phaseKeysExchanged
	phaseKeyDerived
	phaseDone
)

// keyMaterial is installed in one step by the public-key handler.
type keyMaterial struct {
	localKeys    *ECDHKeys
	remotePubKey crypto.PublicKey
	dhKey        []byte
	confirm      []byte
	localNonce   []byte
}

// derivedKeys is installed by the pairing-random handler once
// authentication stage 2 completes.
type derivedKeys struct {
	macKey      []byte
	longTermKey []byte
	localCheck  []byte
	displayCode uint32
}

type session struct {
	phase phase

	// 6-octet little-endian connection addresses, supplied by the
	// caller before the random exchange.
	localAddr  []byte
	remoteAddr []byte

	keys        *keyMaterial
	derived     *derivedKeys
	remoteCheck []byte
}

func (s *session) reset() {
	s.phase = phaseIdle
	s.keys = nil
	s.derived = nil
	s.remoteCheck = nil
}

// addr7 builds the 7-octet address parameter of f5/f6: the little-endian
// address followed by its type octet.
func addr7(addr []byte, typ byte) []byte {
	out := make([]byte, 0, 7)
	out = append(out, addr...)
	out = append(out, typ)
	return out
}
