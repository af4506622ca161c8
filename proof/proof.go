// Package proof defines the wire format of FRI proofs and commitments. All
// integers are big-endian; layer payloads are opaque byte strings parsed
// against the parameters the commitment was built under.
package proof

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/frida-dev/frida-go/field"
	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/merkle"
)

// Layer carries the rows opened at one committed layer together with the
// Merkle nodes authenticating them.
type Layer struct {
	Values []byte
	Paths  []byte
}

// NewLayer serializes opened rows and their batch proof into a layer.
func NewLayer(rows [][]fr.Element, batchProof *merkle.BatchProof) Layer {
	var values []byte
	for _, row := range rows {
		values = append(values, field.SliceToBytes(row)...)
	}
	return Layer{Values: values, Paths: batchProof.MarshalBinary()}
}

// ParseRows splits the layer values into rows of rowLen elements.
func (l *Layer) ParseRows(rowLen int) ([][]fr.Element, error) {
	elems, err := field.SliceFromBytes(l.Values)
	if err != nil {
		return nil, err
	}
	if rowLen <= 0 || len(elems)%rowLen != 0 {
		return nil, frida.ErrDataTooShort
	}
	rows := make([][]fr.Element, len(elems)/rowLen)
	for i := range rows {
		rows[i] = elems[i*rowLen : (i+1)*rowLen]
	}
	return rows, nil
}

// ParseProof rebuilds the layer's Merkle batch proof for a tree of the given
// depth.
func (l *Layer) ParseProof(digestSize, depth int) (*merkle.BatchProof, error) {
	return merkle.UnmarshalProof(l.Paths, digestSize, depth)
}

// Proof is a complete FRI opening: one optional batch layer, the folded
// layers, and the remainder polynomial in coefficient form.
type Proof struct {
	// BatchLayer is present when the commitment covers more than one
	// polynomial; its rows interleave all of them.
	BatchLayer *Layer
	Layers     []Layer
	Remainder  []byte
	// NumPartitionsLog2 records how the first layer was split across
	// provers. Single-prover commitments use zero.
	NumPartitionsLog2 uint8
}

// SetRemainder stores the remainder polynomial coefficients.
func (p *Proof) SetRemainder(coeffs []fr.Element) {
	p.Remainder = field.SliceToBytes(coeffs)
}

// ParseRemainder decodes the remainder polynomial coefficients.
func (p *Proof) ParseRemainder() ([]fr.Element, error) {
	return field.SliceFromBytes(p.Remainder)
}

// MarshalBinary serializes the proof.
func (p *Proof) MarshalBinary() []byte {
	var out []byte
	if p.BatchLayer != nil {
		out = append(out, 1)
		out = appendLayer(out, *p.BatchLayer)
	} else {
		out = append(out, 0)
	}
	out = append(out, uint8(len(p.Layers)))
	for _, l := range p.Layers {
		out = appendLayer(out, l)
	}
	out = binary.BigEndian.AppendUint16(out, uint16(len(p.Remainder)))
	out = append(out, p.Remainder...)
	out = append(out, p.NumPartitionsLog2)
	return out
}

// UnmarshalProof deserializes a proof and returns the number of bytes read.
func UnmarshalProof(buf []byte) (*Proof, int, error) {
	r := reader{buf: buf}
	p := &Proof{}
	hasBatch, err := r.u8()
	if err != nil {
		return nil, 0, err
	}
	if hasBatch != 0 {
		l, err := r.layer()
		if err != nil {
			return nil, 0, err
		}
		p.BatchLayer = &l
	}
	numLayers, err := r.u8()
	if err != nil {
		return nil, 0, err
	}
	p.Layers = make([]Layer, numLayers)
	for i := range p.Layers {
		if p.Layers[i], err = r.layer(); err != nil {
			return nil, 0, err
		}
	}
	remLen, err := r.u16()
	if err != nil {
		return nil, 0, err
	}
	if p.Remainder, err = r.bytes(int(remLen)); err != nil {
		return nil, 0, err
	}
	if p.NumPartitionsLog2, err = r.u8(); err != nil {
		return nil, 0, err
	}
	return p, r.off, nil
}

func appendLayer(out []byte, l Layer) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(l.Values)))
	out = append(out, l.Values...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(l.Paths)))
	out = append(out, l.Paths...)
	return out
}

// reader is a bounds-checked cursor over a serialized proof.
type reader struct {
	buf []byte
	off int
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, frida.ErrDataTooShort
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) layer() (Layer, error) {
	vLen, err := r.u32()
	if err != nil {
		return Layer{}, err
	}
	values, err := r.bytes(int(vLen))
	if err != nil {
		return Layer{}, err
	}
	pLen, err := r.u32()
	if err != nil {
		return Layer{}, err
	}
	paths, err := r.bytes(int(pLen))
	if err != nil {
		return Layer{}, err
	}
	return Layer{Values: values, Paths: paths}, nil
}
