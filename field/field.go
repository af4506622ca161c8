// Package field provides helpers around the bn254 scalar field used for all
// polynomial arithmetic in the protocol.
package field

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/frida-dev/frida-go/frida"
)

const (
	// ElementBytes is the serialized size of a field element.
	ElementBytes = fr.Bytes

	// PayloadBytes is the number of data bytes a single field element can
	// carry without risking an out-of-field value. One byte of the
	// big-endian encoding stays zero.
	PayloadBytes = fr.Bytes - 1
)

// FromRandomBytes maps a hash digest to a field element. Only the first 31
// bytes of the digest are consumed, so the result is always canonical and no
// rejection sampling is needed.
func FromRandomBytes(digest []byte) (fr.Element, error) {
	var e fr.Element
	if len(digest) < PayloadBytes {
		return e, frida.ErrDraw
	}
	e.SetBytes(digest[:PayloadBytes])
	return e, nil
}

// ToBytes returns the canonical big-endian encoding of e.
func ToBytes(e *fr.Element) [ElementBytes]byte {
	return e.Bytes()
}

// FromBytes decodes a canonical big-endian encoding.
func FromBytes(buf []byte) (fr.Element, error) {
	var e fr.Element
	if len(buf) < ElementBytes {
		return e, frida.ErrDataTooShort
	}
	e.SetBytes(buf[:ElementBytes])
	return e, nil
}

// SliceToBytes concatenates the canonical encodings of elems.
func SliceToBytes(elems []fr.Element) []byte {
	out := make([]byte, 0, len(elems)*ElementBytes)
	for i := range elems {
		b := elems[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// SliceFromBytes decodes a concatenation of canonical encodings.
func SliceFromBytes(buf []byte) ([]fr.Element, error) {
	if len(buf)%ElementBytes != 0 {
		return nil, frida.ErrDataTooShort
	}
	out := make([]fr.Element, len(buf)/ElementBytes)
	for i := range out {
		out[i].SetBytes(buf[i*ElementBytes : (i+1)*ElementBytes])
	}
	return out, nil
}
