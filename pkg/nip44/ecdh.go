package nip44

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"cosanostra/pkg/cerr"
	"cosanostra/pkg/primitives"
)

// sharedX computes the NIP-44 ECDH shared secret: the 32-byte x-coordinate
// of privKeyHex · pubKeyHex on secp256k1 (spec §4.4). Nostr public keys are
// x-only, so the even-y point is tried first and, if that fails to parse,
// the odd-y point is tried. Scalar multiplication by either choice yields
// the same x-coordinate: negating a point's y before multiplying by a
// scalar only negates the y of the product, leaving x unchanged. Grounded
// on decred/dcrd/dcrec/secp256k1's Jacobian point API,
// the same module the teacher already depends on for chainhash/schnorr
// support.
func sharedX(privKeyHex, pubKeyHex string) ([]byte, error) {
	privBytes, err := primitives.DecodeHex(privKeyHex, primitives.KeyHexLen)
	if err != nil {
		return nil, cerr.Wrap(cerr.NIP44, "decode private key", err)
	}
	defer primitives.Zero(privBytes)

	xOnly, err := primitives.DecodeHex(pubKeyHex, primitives.KeyHexLen)
	if err != nil {
		return nil, cerr.Wrap(cerr.NIP44, "decode peer public key", err)
	}

	point, err := parseXOnlyPoint(xOnly)
	if err != nil {
		return nil, err
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(privBytes)
	if overflow {
		return nil, cerr.New(cerr.NIP44, "private key out of range")
	}

	var product secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&scalar, point, &product)
	product.ToAffine()

	xBytes := product.X.Bytes()
	out := make([]byte, 32)
	copy(out, xBytes[:])
	return out, nil
}

// parseXOnlyPoint decompresses a 32-byte x-only coordinate into a
// Jacobian point, trying the even-y encoding (0x02 prefix) first and
// falling back to odd-y (0x03) if the first parse fails (e.g. x has no
// even-y square root in some malformed-input edge case).
func parseXOnlyPoint(xOnly []byte) (*secp256k1.JacobianPoint, error) {
	for _, prefix := range []byte{0x02, 0x03} {
		compressed := make([]byte, 33)
		compressed[0] = prefix
		copy(compressed[1:], xOnly)

		pubKey, err := secp256k1.ParsePubKey(compressed)
		if err != nil {
			continue
		}
		var point secp256k1.JacobianPoint
		pubKey.AsJacobian(&point)
		return &point, nil
	}
	return nil, cerr.New(cerr.NIP44, "peer public key is not a valid curve point")
}
