// Package data turns byte blobs into Reed-Solomon encoded field element
// evaluations and back. A blob is length-prefixed, packed into field
// elements at 31 bytes apiece, low-degree extended by the blowup factor and
// later recoverable from any sufficiently large subset of evaluations.
package data

import (
	"encoding/binary"
	"math/big"
	"math/bits"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/frida-dev/frida-go/field"
	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/polynom"
)

const lengthPrefixBytes = 8

// EncodedElementCount returns how many field elements a blob of dataSize
// bytes occupies after the length prefix is added.
func EncodedElementCount(dataSize int) int {
	return (lengthPrefixBytes + dataSize + field.PayloadBytes - 1) / field.PayloadBytes
}

// DomainSizeForData returns the smallest valid evaluation domain that fits a
// blob of dataSize bytes at the given blowup factor.
func DomainSizeForData(dataSize, blowupFactor int) (int, error) {
	n := nextPowerOfTwo(EncodedElementCount(dataSize)) * blowupFactor
	if n < frida.MinDomainSize {
		n = frida.MinDomainSize
	}
	if n > frida.MaxDomainSize {
		return 0, frida.ErrDomainTooLarge
	}
	return n, nil
}

// BuildEvaluations encodes a blob into its domainSize Reed-Solomon
// evaluations. The first domainSize/blowupFactor evaluations carry the
// encoded blob; the rest is parity.
func BuildEvaluations(blob []byte, domainSize, blowupFactor int) ([]fr.Element, error) {
	messageLen := domainSize / blowupFactor
	count := EncodedElementCount(len(blob))
	if count > messageLen {
		return nil, frida.ErrDataTooLarge
	}

	encoded := make([]byte, count*field.ElementBytes)
	binary.BigEndian.PutUint64(encoded[1:1+lengthPrefixBytes], uint64(len(blob)))
	// Pack the blob 31 bytes per element, leaving the high byte of every
	// big-endian chunk zero so the value stays below the field modulus.
	index := 1 + lengthPrefixBytes
	for _, b := range blob {
		if index%field.ElementBytes == 0 {
			index++
		}
		encoded[index] = b
		index++
	}

	symbols := make([]fr.Element, messageLen)
	for i := 0; i < count; i++ {
		symbols[i].SetBytes(encoded[i*field.ElementBytes : (i+1)*field.ElementBytes])
	}
	return reedSolomonEncode(symbols, domainSize), nil
}

// reedSolomonEncode extends messageLen evaluations over the small domain to
// evaluations of the same polynomial over the full domain.
func reedSolomonEncode(symbols []fr.Element, domainSize int) []fr.Element {
	small := fft.NewDomain(uint64(len(symbols)))
	small.FFTInverse(symbols, fft.DIF)
	fft.BitReverse(symbols)

	extended := make([]fr.Element, domainSize)
	copy(extended, symbols)
	large := fft.NewDomain(uint64(domainSize))
	large.FFT(extended, fft.DIF)
	fft.BitReverse(extended)
	return extended
}

// Recover decodes a blob from evaluations. When all domainSize evaluations
// are present they are used directly; otherwise the polynomial is
// interpolated from the sampled positions first.
func Recover(evaluations []fr.Element, positions []uint64, domainSize, blowupFactor int) ([]byte, error) {
	if len(evaluations) == domainSize {
		return extractAndDecode(evaluations, domainSize, blowupFactor)
	}
	full, err := reconstructEvaluations(evaluations, positions, domainSize, blowupFactor)
	if err != nil {
		return nil, err
	}
	return extractAndDecode(full, domainSize, blowupFactor)
}

// reconstructEvaluations rebuilds all domainSize evaluations from a sampled
// subset. Duplicate positions are collapsed before interpolation.
func reconstructEvaluations(evaluations []fr.Element, positions []uint64, domainSize, blowupFactor int) ([]fr.Element, error) {
	if len(evaluations) != len(positions) {
		return nil, frida.ErrNumPositionEvaluationMismatch
	}

	type sample struct {
		pos uint64
		val fr.Element
	}
	samples := make([]sample, len(positions))
	for i := range positions {
		if positions[i] >= uint64(domainSize) {
			return nil, frida.ErrPositionOutOfRange
		}
		samples[i] = sample{pos: positions[i], val: evaluations[i]}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].pos < samples[j].pos })
	unique := samples[:0]
	for _, s := range samples {
		if len(unique) == 0 || unique[len(unique)-1].pos != s.pos {
			unique = append(unique, s)
		}
	}
	if len(unique) < domainSize/blowupFactor {
		return nil, frida.ErrInsufficientSamples
	}

	gen := fft.NewDomain(uint64(domainSize), fft.WithoutPrecompute()).Generator
	xs := make([]fr.Element, len(unique))
	ys := make([]fr.Element, len(unique))
	for i, s := range unique {
		xs[i].Exp(gen, new(big.Int).SetUint64(s.pos))
		ys[i] = s.val
	}

	coeffs, err := polynom.Interpolate(xs, ys)
	if err != nil {
		return nil, err
	}
	full := make([]fr.Element, domainSize)
	copy(full, coeffs)
	large := fft.NewDomain(uint64(domainSize))
	large.FFT(full, fft.DIF)
	fft.BitReverse(full)
	return full, nil
}

// extractAndDecode unpacks the blob bytes from a full evaluation vector.
func extractAndDecode(evaluations []fr.Element, domainSize, blowupFactor int) ([]byte, error) {
	if len(evaluations) != domainSize {
		return nil, frida.ErrNumPositionEvaluationMismatch
	}
	head := evaluations[0].Bytes()
	dataLen := int(binary.BigEndian.Uint64(head[1 : 1+lengthPrefixBytes]))
	count := EncodedElementCount(dataLen)
	if count > domainSize/blowupFactor {
		return nil, frida.ErrInvalidLengthPrefix
	}

	decoded := make([]byte, 0, count*field.PayloadBytes)
	for i := 0; i < count; i++ {
		b := evaluations[i*blowupFactor].Bytes()
		decoded = append(decoded, b[1:]...)
	}
	return decoded[lengthPrefixBytes : lengthPrefixBytes+dataLen], nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
