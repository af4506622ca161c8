package prover

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/frida-dev/frida-go/field"
	"github.com/frida-dev/frida-go/polynom"
)

// A polynomial of degree below the folding factor projects to the same value
// Q(alpha) in every row, whatever coset the row covers.
func TestApplyDrpProjectsLowDegreeToConstant(t *testing.T) {
	const domainSize = 32
	gen := field.RootOfUnity(domainSize)
	offset := field.CosetShift()

	for _, foldingFactor := range []int{2, 4} {
		coeffs := make([]fr.Element, foldingFactor)
		for i := range coeffs {
			coeffs[i].SetUint64(uint64(3*i + 7))
		}

		evals := make([]fr.Element, domainSize)
		for k := range evals {
			var x fr.Element
			x.Exp(gen, big.NewInt(int64(k)))
			x.Mul(&x, &offset)
			evals[k] = polynom.Eval(coeffs, &x)
		}

		var alpha fr.Element
		alpha.SetUint64(987654321)
		want := polynom.Eval(coeffs, &alpha)

		folded, err := applyDrp(transpose(evals, foldingFactor), domainSize, alpha)
		require.NoError(t, err)
		require.Len(t, folded, domainSize/foldingFactor)
		for i := range folded {
			require.True(t, folded[i].Equal(&want), "folding factor %d row %d", foldingFactor, i)
		}
	}
}

// xi-combining a batch of constant polynomials folds to the xi-weighted sum.
func TestApplyDrpBatched(t *testing.T) {
	const (
		domainSize    = 16
		polyCount     = 3
		foldingFactor = 2
	)

	constants := []uint64{5, 11, 23}
	bucketCount := domainSize / foldingFactor
	bucketSize := polyCount * foldingFactor

	interleaved := make([]fr.Element, polyCount*domainSize)
	for i := 0; i < polyCount; i++ {
		for j := 0; j < domainSize; j++ {
			bucket := j % bucketCount
			position := i + polyCount*(j/bucketCount)
			interleaved[bucket*bucketSize+position].SetUint64(constants[i])
		}
	}

	xi := make([]fr.Element, polyCount)
	for i := range xi {
		xi[i].SetUint64(uint64(i + 2))
	}
	var alpha fr.Element
	alpha.SetUint64(42)

	var want, term fr.Element
	for i := range constants {
		var c fr.Element
		c.SetUint64(constants[i])
		term.Mul(&c, &xi[i])
		want.Add(&want, &term)
	}

	folded, err := applyDrpBatched(interleaved, polyCount, foldingFactor, xi, alpha)
	require.NoError(t, err)
	require.Len(t, folded, bucketCount)
	for i := range folded {
		require.True(t, folded[i].Equal(&want), "row %d", i)
	}
}
