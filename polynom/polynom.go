// Package polynom provides the dense polynomial arithmetic both protocol
// sides share: Horner evaluation and interpolation from arbitrary points.
// Keeping a single implementation guarantees the verifier replays exactly
// the projection the prover committed to.
package polynom

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrPointCountMismatch is returned when interpolation is given a different
// number of abscissas and ordinates.
var ErrPointCountMismatch = errors.New("polynom: point and value counts differ")

// Eval evaluates the polynomial with the given coefficients (lowest degree
// first) at x using Horner's rule.
func Eval(coeffs []fr.Element, x *fr.Element) fr.Element {
	var acc fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(&acc, x)
		acc.Add(&acc, &coeffs[i])
	}
	return acc
}

// Interpolate returns the coefficients (lowest degree first) of the unique
// polynomial of degree < len(xs) passing through the points (xs[i], ys[i]).
// The abscissas must be pairwise distinct.
func Interpolate(xs, ys []fr.Element) ([]fr.Element, error) {
	if len(xs) != len(ys) {
		return nil, ErrPointCountMismatch
	}
	n := len(xs)
	if n == 0 {
		return nil, nil
	}

	// Newton divided differences; denominators per column are inverted in
	// one batch.
	dd := make([]fr.Element, n)
	copy(dd, ys)
	dens := make([]fr.Element, n)
	for j := 1; j < n; j++ {
		dens = dens[:n-j]
		for i := j; i < n; i++ {
			dens[i-j].Sub(&xs[i], &xs[i-j])
		}
		dens = fr.BatchInvert(dens)
		for i := n - 1; i >= j; i-- {
			var num fr.Element
			num.Sub(&dd[i], &dd[i-1])
			dd[i].Mul(&num, &dens[i-j])
		}
	}

	// Expand the Newton form into monomial coefficients:
	// coeffs <- coeffs*(x - xs[k]) + dd[k], folded from the top down.
	coeffs := make([]fr.Element, 1, n)
	coeffs[0] = dd[n-1]
	for k := n - 2; k >= 0; k-- {
		next := make([]fr.Element, len(coeffs)+1)
		for i := range coeffs {
			next[i+1] = coeffs[i]
			var t fr.Element
			t.Mul(&coeffs[i], &xs[k])
			next[i].Sub(&next[i], &t)
		}
		next[0].Add(&next[0], &dd[k])
		coeffs = next
	}
	out := make([]fr.Element, n)
	copy(out, coeffs)
	return out, nil
}

// InterpolateEval interpolates the points and evaluates the result at x. It
// is the degree-respecting projection primitive applied to one row.
func InterpolateEval(xs, ys []fr.Element, x *fr.Element) (fr.Element, error) {
	coeffs, err := Interpolate(xs, ys)
	if err != nil {
		return fr.Element{}, err
	}
	return Eval(coeffs, x), nil
}
