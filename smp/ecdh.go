package smp

import (
	"crypto"
	"crypto/elliptic"
	"crypto/rand"

	"github.com/wsddn/go-ecdh"

	"github.com/blekit/ble/sliceops"
)

// ECDHKeys is one side's P-256 keypair for a single pairing session.
// Keys are generated fresh per session and never reused.
type ECDHKeys struct {
	public  crypto.PublicKey
	private crypto.PrivateKey
}

func GenerateKeys() (*ECDHKeys, error) {
	var err error
	kp := ECDHKeys{}
	e := ecdh.NewEllipticECDH(elliptic.P256())

	kp.private, kp.public, err = e.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &kp, nil
}

// UnmarshalPublicKey parses the 64-byte wire form of a public key: the
// X then Y coordinate, each with its bytes reversed from the canonical
// big-endian representation. ok is false if the point is not on the
// curve.
func UnmarshalPublicKey(b []byte) (crypto.PublicKey, bool) {
	if len(b) != 64 {
		return nil, false
	}

	e := ecdh.NewEllipticECDH(elliptic.P256())
	xs := sliceops.SwapBuf(b[:32])
	ys := sliceops.SwapBuf(b[32:])

	// uncompressed point header
	r := append([]byte{0x04}, xs...)
	r = append(r, ys...)

	pk, ok := e.Unmarshal(r)

	return pk, ok
}

// MarshalPublicKeyXY produces the 64-byte wire form, the inverse of
// UnmarshalPublicKey.
func MarshalPublicKeyXY(k crypto.PublicKey) []byte {
	e := ecdh.NewEllipticECDH(elliptic.P256())

	ba := e.Marshal(k)
	ba = ba[1:] // strip the uncompressed point header
	x := sliceops.SwapBuf(ba[:32])
	y := sliceops.SwapBuf(ba[32:])

	out := append(x, y...)

	return out
}

// MarshalPublicKeyX returns only the X coordinate in wire order, the
// form the confirm and comparison functions consume.
func MarshalPublicKeyX(k crypto.PublicKey) []byte {
	e := ecdh.NewEllipticECDH(elliptic.P256())

	ba := e.Marshal(k)
	ba = ba[1:]
	x := sliceops.SwapBuf(ba[:32])

	return x
}

// GenerateSecret computes the DHKey in wire order from a local secret
// key and the peer's public key. The shared x coordinate comes back as
// a big integer that drops leading zero octets, roughly one exchange in
// 256; the key derivation functions take a full 32-octet DHKey, so pad
// before swapping into wire order.
func GenerateSecret(prv crypto.PrivateKey, pub crypto.PublicKey) ([]byte, error) {
	e := ecdh.NewEllipticECDH(elliptic.P256())
	b, err := e.GenerateSharedSecret(prv, pub)
	if err != nil {
		return nil, err
	}
	if len(b) < 32 {
		b = append(make([]byte, 32-len(b)), b...)
	}
	return sliceops.SwapBuf(b), nil
}
