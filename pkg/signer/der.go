package signer

import (
	"errors"
	"fmt"
)

// MaxDERSigLen bounds a DER encoded secp256k1 signature.
const MaxDERSigLen = 72

var ErrDERFormat = errors.New("signer: malformed DER signature")

// SplitDER extracts r and s from a DER signature
// (0x30 len 0x02 rlen r 0x02 slen s). A 33 byte integer must carry a 0x00
// padding byte, which is dropped; shorter integers are left padded.
func SplitDER(der []byte) (r, s [32]byte, err error) {
	if len(der) < 8 || len(der) > MaxDERSigLen || der[0] != 0x30 || int(der[1]) != len(der)-2 {
		return r, s, fmt.Errorf("%w: bad sequence header", ErrDERFormat)
	}
	off := 2
	rb, off, err := readDERInt(der, off)
	if err != nil {
		return r, s, err
	}
	sb, off, err := readDERInt(der, off)
	if err != nil {
		return r, s, err
	}
	if off != len(der) {
		return r, s, fmt.Errorf("%w: trailing bytes", ErrDERFormat)
	}
	copy(r[32-len(rb):], rb)
	copy(s[32-len(sb):], sb)
	return r, s, nil
}

func readDERInt(der []byte, off int) ([]byte, int, error) {
	if off+2 > len(der) || der[off] != 0x02 {
		return nil, off, fmt.Errorf("%w: expected integer at %d", ErrDERFormat, off)
	}
	n := int(der[off+1])
	off += 2
	if n == 0 || off+n > len(der) {
		return nil, off, fmt.Errorf("%w: integer length %d", ErrDERFormat, n)
	}
	b := der[off : off+n]
	off += n
	if n == 33 {
		if b[0] != 0x00 {
			return nil, off, fmt.Errorf("%w: 33 byte integer without padding", ErrDERFormat)
		}
		b = b[1:]
	}
	if len(b) > 32 {
		return nil, off, fmt.Errorf("%w: integer too long", ErrDERFormat)
	}
	return b, off, nil
}
