package prover

import (
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/frida-dev/frida-go/field"
	"github.com/frida-dev/frida-go/hashing"
	"github.com/frida-dev/frida-go/polynom"
)

// transpose reshapes a flat evaluation vector into rows of rowLen values.
// Row i collects the evaluations at positions i, i+rowCount, i+2*rowCount
// and so on, so one Merkle leaf covers a whole folding coset.
func transpose(evaluations []fr.Element, rowLen int) [][]fr.Element {
	rowCount := len(evaluations) / rowLen
	rows := make([][]fr.Element, rowCount)
	for i := range rows {
		row := make([]fr.Element, rowLen)
		for j := 0; j < rowLen; j++ {
			row[j] = evaluations[i+j*rowCount]
		}
		rows[i] = row
	}
	return rows
}

// hashRows digests every row in parallel.
func hashRows(hasher hashing.Hasher, rows [][]fr.Element) [][]byte {
	hashes := make([][]byte, len(rows))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	const chunk = 1024
	for start := 0; start < len(rows); start += chunk {
		start := start
		end := min(start+chunk, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				hashes[i] = hashing.HashElements(hasher, rows[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return hashes
}

// applyDrp performs the degree-respecting projection: each row is
// interpolated over its folding coset and evaluated at alpha, producing the
// evaluations of the folded polynomial over the next domain.
func applyDrp(rows [][]fr.Element, sourceDomainSize int, alpha fr.Element) ([]fr.Element, error) {
	rowCount := len(rows)
	rowLen := len(rows[0])
	gen := field.RootOfUnity(sourceDomainSize)
	offset := field.CosetShift()

	// w generates the folding coset inside the domain.
	var w fr.Element
	w.Exp(gen, big.NewInt(int64(rowCount)))

	folded := make([]fr.Element, rowCount)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	const chunk = 1024
	for start := 0; start < rowCount; start += chunk {
		start := start
		end := min(start+chunk, rowCount)
		g.Go(func() error {
			var x fr.Element
			x.Exp(gen, big.NewInt(int64(start)))
			x.Mul(&x, &offset)
			xs := make([]fr.Element, rowLen)
			for i := start; i < end; i++ {
				xs[0] = x
				for j := 1; j < rowLen; j++ {
					xs[j].Mul(&xs[j-1], &w)
				}
				v, err := polynom.InterpolateEval(xs, rows[i], &alpha)
				if err != nil {
					return err
				}
				folded[i] = v
				x.Mul(&x, &gen)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return folded, nil
}

// applyDrpBatched combines the interleaved evaluations of polyCount
// polynomials with the xi challenges and folds the result like a plain
// layer.
func applyDrpBatched(evaluations []fr.Element, polyCount, foldingFactor int, xi []fr.Element, alpha fr.Element) ([]fr.Element, error) {
	domainSize := len(evaluations) / polyCount
	bucketCount := domainSize / foldingFactor
	bucketSize := polyCount * foldingFactor

	rows := make([][]fr.Element, bucketCount)
	for i := range rows {
		row := make([]fr.Element, foldingFactor)
		for j := 0; j < foldingFactor; j++ {
			start := i*bucketSize + polyCount*j
			var acc, t fr.Element
			for k := 0; k < polyCount; k++ {
				t.Mul(&evaluations[start+k], &xi[k])
				acc.Add(&acc, &t)
			}
			row[j] = acc
		}
		rows[i] = row
	}
	return applyDrp(rows, domainSize, alpha)
}
