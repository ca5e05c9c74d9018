package smp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

func onPairingRequest(ctx context.Context, e *Engine, handle uint16, in pdu) error {
	if len(in) < 6 {
		return fmt.Errorf("%v, invalid length %v", hex.EncodeToString(in), len(in))
	}

	rx := Config{
		IoCap:       in[0],
		OobFlag:     in[1],
		AuthReq:     in[2],
		MaxKeySize:  in[3],
		InitKeyDist: in[4],
		RespKeyDist: in[5],
	}
	e.Infof("pairing request: %+v", rx)

	return e.send(ctx, handle, buildPairingRsp(e.config))
}

func onPairingPublicKey(ctx context.Context, e *Engine, handle uint16, in pdu) error {
	if len(in) != 64 {
		return fmt.Errorf("invalid length %v", len(in))
	}

	s := e.session
	if s.phase != phaseIdle {
		return fmt.Errorf("public key already exchanged")
	}

	keys, err := GenerateKeys()
	if err != nil {
		return errors.Wrap(err, "generate keys")
	}

	// Send our key before touching the peer's: the initiator can start
	// its DHKey computation early and the value sent depends on nothing
	// unverified.
	k := MarshalPublicKeyXY(keys.public)
	if err := e.send(ctx, handle, append(pdu{pairingPublicKey}, k...)); err != nil {
		return err
	}

	remote, ok := UnmarshalPublicKey(in)
	if !ok {
		return fmt.Errorf("invalid remote public key")
	}

	dhKey, err := GenerateSecret(keys.private, remote)
	if err != nil {
		return errors.Wrap(err, "dhkey")
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "nonce")
	}

	// Cb = f4(PKbx, PKax, Nb, 0). The confirm must go out before the
	// nonces are exchanged [Vol 3, Part H, 2.3.5.6.2].
	confirm, err := smpF4(MarshalPublicKeyX(keys.public), MarshalPublicKeyX(remote), nonce, 0)
	if err != nil {
		return errors.Wrap(err, "f4")
	}

	if err := e.send(ctx, handle, append(pdu{pairingConfirm}, confirm...)); err != nil {
		return err
	}

	s.keys = &keyMaterial{
		localKeys:    keys,
		remotePubKey: remote,
		dhKey:        dhKey,
		confirm:      confirm,
		localNonce:   nonce,
	}
	s.phase = phaseKeysExchanged
	return nil
}

func onPairingRandom(ctx context.Context, e *Engine, handle uint16, in pdu) error {
	if len(in) != 16 {
		return fmt.Errorf("invalid length %v", len(in))
	}

	s := e.session
	if s.phase != phaseKeysExchanged {
		return fmt.Errorf("no key material")
	}
	if len(s.localAddr) != 6 || len(s.remoteAddr) != 6 {
		return fmt.Errorf("connection addresses not set")
	}
	k := s.keys

	if err := e.send(ctx, handle, append(pdu{pairingRandom}, k.localNonce...)); err != nil {
		return err
	}

	remoteNonce := append([]byte(nil), in...)

	// Va = g2(PKax, PKbx, Na, Nb); shown to the user for confirmation.
	// Acceptance is assumed here, the initiator side cancels on mismatch.
	code, err := smpG2(MarshalPublicKeyX(k.remotePubKey), MarshalPublicKeyX(k.localKeys.public),
		remoteNonce, k.localNonce)
	if err != nil {
		return errors.Wrap(err, "g2")
	}
	e.Infof("numeric comparison value: %06d", code)

	// Authentication stage 2 [Vol 3, Part H, 2.3.5.6.5]:
	// MacKey || LTK = f5(DHKey, Na, Nb, A, B)
	a := addr7(s.remoteAddr, 0)
	b := addr7(s.localAddr, 0)

	macKey, ltk, err := smpF5(k.dhKey, remoteNonce, k.localNonce, a, b)
	if err != nil {
		return errors.Wrap(err, "f5")
	}

	// Eb = f6(MacKey, Nb, Na, ra, IOcapB, B, A) with ra = 0 for numeric
	// comparison. Sent later, on receipt of the initiator's check.
	ra := make([]byte, 16)
	check, err := smpF6(macKey, k.localNonce, remoteNonce, ra, e.config.ioCapBytes(), b, a)
	if err != nil {
		return errors.Wrap(err, "f6")
	}

	s.derived = &derivedKeys{
		macKey:      macKey,
		longTermKey: ltk,
		localCheck:  check,
		displayCode: code,
	}
	s.phase = phaseKeyDerived
	return nil
}

func onDHKeyCheck(ctx context.Context, e *Engine, handle uint16, in pdu) error {
	if len(in) != 16 {
		return fmt.Errorf("invalid length %v", len(in))
	}

	s := e.session
	if s.phase != phaseKeyDerived {
		return fmt.Errorf("no derived keys")
	}

	// The initiator's Ea is stored but not recomputed and compared, so
	// the peer is not authenticated by this engine yet.
	s.remoteCheck = append([]byte(nil), in...)
	e.Warnf("peer dhkey check accepted without verification")

	if err := e.send(ctx, handle, append(pdu{pairingDHKeyCheck}, s.derived.localCheck...)); err != nil {
		return err
	}

	s.phase = phaseDone
	e.Infof("pairing complete")
	return nil
}

func onPairingFailed(ctx context.Context, e *Engine, handle uint16, in pdu) error {
	reason := "unknown"
	if len(in) > 0 && int(in[0]) < len(pairingFailedReason) {
		reason = pairingFailedReason[in[0]]
	}

	e.session.reset()
	return fmt.Errorf("peer reported: %s", reason)
}
