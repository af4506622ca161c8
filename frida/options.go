package frida

import "math/bits"

// Options fixes the FRI parameters a commitment is built and verified under.
// Prover and verifier must use identical options for the same commitment.
type Options struct {
	// BlowupFactor is the Reed-Solomon expansion rate. Must be a power of
	// two greater than one.
	BlowupFactor int

	// FoldingFactor is the arity of the degree-respecting projection
	// applied between FRI layers. One of 2, 4, 8, 16.
	FoldingFactor int

	// RemainderMaxDegree is the largest degree the protocol allows for
	// the final remainder polynomial. Folding stops once the working
	// polynomial fits under this bound.
	RemainderMaxDegree int
}

// DefaultOptions returns the parameter set used by the command line tools.
func DefaultOptions() Options {
	return Options{
		BlowupFactor:       4,
		FoldingFactor:      4,
		RemainderMaxDegree: 15,
	}
}

// Validate checks that the options describe a parameter set the protocol
// supports.
func (o Options) Validate() error {
	if o.BlowupFactor < 2 || bits.OnesCount(uint(o.BlowupFactor)) != 1 {
		return ErrInvalidBlowupFactor
	}
	switch o.FoldingFactor {
	case 2, 4, 8, 16:
	default:
		return ErrUnsupportedFoldingFactor
	}
	return nil
}

// NumFriLayers returns how many folded layers a commitment over domainSize
// evaluations produces before the remainder is reached. The first, unfolded
// layer is not counted.
func (o Options) NumFriLayers(domainSize int) int {
	layers := 0
	maxRemainderSize := (o.RemainderMaxDegree + 1) * o.BlowupFactor
	for domainSize > maxRemainderSize {
		domainSize /= o.FoldingFactor
		layers++
	}
	return layers
}
