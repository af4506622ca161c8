package frida

// FoldPositions maps query positions in a domain of sourceDomainSize onto
// the folded domain one layer down. The result keeps first-occurrence order
// and contains no duplicates; prover and verifier must walk positions the
// same way for opened rows to line up.
func FoldPositions(positions []uint64, sourceDomainSize, foldingFactor int) []uint64 {
	target := uint64(sourceDomainSize / foldingFactor)
	result := make([]uint64, 0, len(positions))
	for _, p := range positions {
		p %= target
		if !containsPosition(result, p) {
			result = append(result, p)
		}
	}
	return result
}

func containsPosition(positions []uint64, p uint64) bool {
	for _, v := range positions {
		if v == p {
			return true
		}
	}
	return false
}
