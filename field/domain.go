package field

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// RootOfUnity returns the generator of the evaluation domain of size n. n
// must be a power of two supported by the field's two-adicity.
func RootOfUnity(n int) fr.Element {
	return fft.NewDomain(uint64(n), fft.WithoutPrecompute()).Generator
}

// CosetShift returns the multiplicative offset every folded layer domain is
// shifted by. It matches the shift the coset FFT uses, so remainder
// interpolation and folding agree on the same coset.
func CosetShift() fr.Element {
	return fft.NewDomain(2, fft.WithoutPrecompute()).FrMultiplicativeGen
}
