// Package sliceops provides the byte-order helpers used when moving
// values between their canonical big-endian form and the little-endian
// order the Bluetooth wire format requires.
package sliceops

// SwapBuf returns a reversed copy of in. The input is never modified.
func SwapBuf(in []byte) []byte {
	a := make([]byte, 0, len(in))
	a = append(a, in...)
	for i := len(a)/2 - 1; i >= 0; i-- {
		opp := len(a) - 1 - i
		a[i], a[opp] = a[opp], a[i]
	}

	return a
}
