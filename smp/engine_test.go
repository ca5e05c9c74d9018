package smp

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"
)

// TestFullHandshake drives the engine through a complete numeric
// comparison pairing, playing the initiator with the same toolbox, and
// checks every outbound PDU against an independent computation.
func TestFullHandshake(t *testing.T) {
	e, sink := newTestEngine(t)
	ctx := context.Background()

	localAddr := e.session.localAddr
	remoteAddr := e.session.remoteAddr

	// capability exchange
	if err := e.Dispatch(ctx, 0x40, append([]byte{pairingRequest}, 0x04, 0x00, 0x2d, 0x10, 0x00, 0x00)); err != nil {
		t.Fatal(err)
	}

	// public key exchange
	initiator, err := GenerateKeys()
	if err != nil {
		t.Fatal(err)
	}
	pka := MarshalPublicKeyXY(initiator.public)
	if err := e.Dispatch(ctx, 0x40, append([]byte{pairingPublicKey}, pka...)); err != nil {
		t.Fatal(err)
	}

	if len(sink.frames) != 3 {
		t.Fatal("expected 3 outbound pdus, got", len(sink.frames))
	}

	pkbWire := smpPayload(t, sink.frames[1])[1:]
	pkb, ok := UnmarshalPublicKey(pkbWire)
	if !ok {
		t.Fatal("engine sent an invalid public key")
	}
	cb := smpPayload(t, sink.frames[2])[1:]

	// nonce exchange
	na := make([]byte, 16)
	if _, err := rand.Read(na); err != nil {
		t.Fatal(err)
	}
	if err := e.Dispatch(ctx, 0x40, append([]byte{pairingRandom}, na...)); err != nil {
		t.Fatal(err)
	}

	if len(sink.frames) != 4 {
		t.Fatal("expected the local nonce pdu")
	}
	nbPdu := smpPayload(t, sink.frames[3])
	if nbPdu[0] != pairingRandom || len(nbPdu) != 17 {
		t.Fatal("malformed pairing random pdu")
	}
	nb := nbPdu[1:]

	// the commitment must verify now that Nb is known
	expCb, err := smpF4(pkbWire[:32], pka[:32], nb, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(cb, expCb) {
		t.Fatal("commitment does not verify")
	}

	// both displays must show the same comparison value
	code, ok := e.DisplayCode()
	if !ok {
		t.Fatal("no display code after nonce exchange")
	}
	expCode, err := smpG2(pka[:32], pkbWire[:32], na, nb)
	if err != nil {
		t.Fatal(err)
	}
	if code != expCode {
		t.Fatalf("display code mismatch: %06d vs %06d", code, expCode)
	}

	// initiator-side stage 2
	dhKey, err := GenerateSecret(initiator.private, pkb)
	if err != nil {
		t.Fatal(err)
	}
	a := addr7(remoteAddr, 0)
	b := addr7(localAddr, 0)
	macKey, ltk, err := smpF5(dhKey, na, nb, a, b)
	if err != nil {
		t.Fatal(err)
	}

	if got := e.LongTermKey(); !bytes.Equal(got, ltk) {
		t.Fatal("long term keys disagree")
	}
	if e.Done() {
		t.Fatal("session done before dhkey check")
	}

	// dhkey check: engine replies with Eb
	ra := make([]byte, 16)
	ea, err := smpF6(macKey, na, nb, ra, []byte{0x04, 0x00, 0x2d}, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Dispatch(ctx, 0x40, append([]byte{pairingDHKeyCheck}, ea...)); err != nil {
		t.Fatal(err)
	}

	ebPdu := smpPayload(t, sink.frames[4])
	if ebPdu[0] != pairingDHKeyCheck {
		t.Fatal("expected a dhkey check pdu")
	}

	iob := DefaultConfig().ioCapBytes()
	expEb, err := smpF6(macKey, nb, na, ra, iob, b, a)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ebPdu[1:], expEb) {
		t.Fatal("dhkey check value does not verify")
	}

	if !e.Done() {
		t.Fatal("session not done after dhkey check")
	}
	if !bytes.Equal(e.session.remoteCheck, ea) {
		t.Fatal("peer check value not retained")
	}
}

func TestResetAllowsNewSession(t *testing.T) {
	e, sink := newTestEngine(t)
	ctx := context.Background()

	initiator, err := GenerateKeys()
	if err != nil {
		t.Fatal(err)
	}
	in := append([]byte{pairingPublicKey}, MarshalPublicKeyXY(initiator.public)...)

	if err := e.Dispatch(ctx, 0, in); err != nil {
		t.Fatal(err)
	}

	e.Reset()
	if e.session.keys != nil || e.session.phase != phaseIdle {
		t.Fatal("reset left state behind")
	}
	if len(e.session.localAddr) != 6 {
		t.Fatal("reset dropped the addresses")
	}

	if err := e.Dispatch(ctx, 0, in); err != nil {
		t.Fatal("fresh session rejected after reset:", err)
	}
	if len(sink.frames) != 4 {
		t.Fatal("expected two pdus per session")
	}
}

func TestLongTermKeyNilUntilDerived(t *testing.T) {
	e, _ := newTestEngine(t)

	if e.LongTermKey() != nil {
		t.Fatal("ltk available before derivation")
	}
	if _, ok := e.DisplayCode(); ok {
		t.Fatal("display code available before derivation")
	}
	if e.Done() {
		t.Fatal("fresh engine reports done")
	}
}

func TestSetAddressesValidation(t *testing.T) {
	e := NewEngine(DefaultConfig(), &recordSink{})

	if err := e.SetAddresses([]byte{1, 2, 3}, make([]byte, 6)); err == nil {
		t.Fatal("short local address accepted")
	}
	if err := e.SetAddresses(make([]byte, 6), make([]byte, 7)); err == nil {
		t.Fatal("long remote address accepted")
	}
}

func TestDispatchEmptyPDU(t *testing.T) {
	e, sink := newTestEngine(t)

	if err := e.Dispatch(context.Background(), 0, nil); err == nil {
		t.Fatal("empty pdu accepted")
	}
	if len(sink.frames) != 0 {
		t.Fatal("empty pdu produced output")
	}
}
