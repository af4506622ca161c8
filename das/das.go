// Package das provides the data-availability-sampling layer on top of the
// FRI commitments: sizing the query count for a security target and
// splitting the query positions across a validator set so that any h honest
// validators jointly hold enough samples to reconstruct the data.
package das

import (
	"math"

	"github.com/frida-dev/frida-go/data"
	"github.com/frida-dev/frida-go/frida"
)

// CalculateNumQueries returns the number of FRI queries needed to reach
// lambdaSecurity bits of soundness for a blob of dataSize bytes, accounting
// for the security loss of folding factors above two and for batching. The
// result is capped at one below the domain size.
func CalculateNumQueries(dataSize int, opts frida.Options, batchSize, lambdaSecurity int) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	domainSize, err := data.DomainSizeForData(dataSize, opts.BlowupFactor)
	if err != nil {
		return 0, err
	}

	degree := domainSize/opts.BlowupFactor - 1
	loss := securityLossDueToFolding(degree, opts.FoldingFactor, opts.RemainderMaxDegree)

	log2Blowup := math.Log2(float64(opts.BlowupFactor))
	log2Batch := 0.0
	if batchSize > 0 {
		log2Batch = math.Log2(float64(batchSize))
	}

	queries := int(math.Ceil(float64(lambdaSecurity)/log2Blowup + loss + log2Batch))
	if max := domainSize - 1; queries > max {
		queries = max
	}
	return queries, nil
}

// securityLossDueToFolding quantifies the soundness lost by folding more
// than two evaluations per layer.
func securityLossDueToFolding(degree, foldingFactor, remainderMaxDegree int) float64 {
	if foldingFactor <= 2 {
		return 0
	}
	polyCoeffs := float64(degree + 1)
	remainderCoeffs := float64(remainderMaxDegree + 1)
	if polyCoeffs <= remainderCoeffs {
		return 0
	}
	log2Phi := math.Log2(float64(foldingFactor))
	return log2Phi * math.Ceil(math.Log2(polyCoeffs/remainderCoeffs)/log2Phi)
}

// ComputePositionAssignments splits the base query positions across
// nValidators so that any h of them cover all positions. With at most as
// many validators as positions each validator receives a cyclic window of
// the positions; larger sets replicate the windows, and validators beyond
// the largest full replication round receive nothing.
func ComputePositionAssignments(nValidators int, queryPositions []uint64, h int) [][]uint64 {
	s := len(queryPositions)
	n := nValidators
	if n == 0 {
		return nil
	}
	if n <= s {
		spanLength := s - h + 1
		if spanLength < 1 {
			spanLength = 1
		}
		assignments := make([][]uint64, n)
		for i := 1; i <= n; i++ {
			offset := (i - 1) % s
			span := make([]uint64, spanLength)
			for j := 0; j < spanLength; j++ {
				span[j] = queryPositions[(offset+j)%s]
			}
			assignments[i-1] = span
		}
		return assignments
	}

	nPrime := (n / s) * s
	if nPrime == 0 {
		return make([][]uint64, n)
	}
	replicationFactor := nPrime / s
	hEffective := h - (n - nPrime)
	if hEffective < 0 {
		hEffective = 0
	}
	hPrime := (hEffective + replicationFactor - 1) / replicationFactor
	base := ComputePositionAssignments(s, queryPositions, hPrime)

	assignments := make([][]uint64, n)
	for i := 1; i <= n; i++ {
		if i <= nPrime {
			assignments[i-1] = append([]uint64(nil), base[(i-1)%s]...)
		}
	}
	return assignments
}
