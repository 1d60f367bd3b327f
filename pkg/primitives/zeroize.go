package primitives

// Zero overwrites b with zero bytes in place. Call it from a Close/drop
// path on any buffer that held private-key or shared-secret material.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// There is no ZeroString: Go strings are immutable and the
// runtime may have copied the backing bytes during conversions. Secret
// material that must be zeroized should be kept in a []byte for its whole
// lifetime and only converted to string (e.g. via hex.EncodeToString) at
// the point of use.
