package frida

import (
	"errors"
	"fmt"
)

// Construction and configuration errors.
var (
	// ErrInvalidBlowupFactor is returned when the blowup factor is not a
	// power of two greater than one.
	ErrInvalidBlowupFactor = errors.New("frida: blowup factor must be a power of two greater than one")

	// ErrUnsupportedFoldingFactor is returned when the folding factor is
	// not one of 2, 4, 8 or 16.
	ErrUnsupportedFoldingFactor = errors.New("frida: folding factor must be one of 2, 4, 8, 16")

	// ErrDomainTooLarge is returned when the requested evaluation domain
	// exceeds MaxDomainSize.
	ErrDomainTooLarge = errors.New("frida: evaluation domain exceeds maximum size")

	// ErrDataTooShort is returned when a byte payload is too short to
	// carry the declared structure.
	ErrDataTooShort = errors.New("frida: serialized data too short")

	// ErrDataTooLarge is returned when a blob does not fit the requested
	// evaluation domain after encoding.
	ErrDataTooLarge = errors.New("frida: data exceeds maximum degree for domain")

	// ErrInvalidLengthPrefix is returned when recovered data declares a
	// length that cannot fit the evaluation domain.
	ErrInvalidLengthPrefix = errors.New("frida: recovered length prefix exceeds domain capacity")

	// ErrDraw is returned when the randomness source cannot produce a
	// field element from the bytes it was given.
	ErrDraw = errors.New("frida: failed to draw field element")

	// ErrBadNumQueries is returned when the query count is zero or does
	// not fit the evaluation domain.
	ErrBadNumQueries = errors.New("frida: number of queries must be positive and smaller than the domain")

	// ErrNoFoldableLayers is returned when the domain is already within
	// the remainder bound, leaving nothing to fold.
	ErrNoFoldableLayers = errors.New("frida: domain too small to produce any folded layer")

	// ErrSinglePolyBatch is returned when a batched commitment is
	// requested over fewer than two blobs.
	ErrSinglePolyBatch = errors.New("frida: batch needs at least two data blobs")

	// ErrMalformedProof is returned when a proof does not carry the
	// layers its commitment geometry requires.
	ErrMalformedProof = errors.New("frida: proof layout does not match commitment parameters")

	// ErrInvalidCommitment is returned when a commitment's embedded
	// opening does not verify against its own roots. The error wraps the
	// check that rejected it.
	ErrInvalidCommitment = errors.New("frida: commitment is not self-consistent")

	// ErrNumPositionEvaluationMismatch is returned when the number of
	// claimed evaluations handed to Open or Verify does not match the
	// number of positions.
	ErrNumPositionEvaluationMismatch = errors.New("frida: number of evaluations does not match number of positions")

	// ErrPositionOutOfRange is returned when a queried position does not
	// fall inside the evaluation domain.
	ErrPositionOutOfRange = errors.New("frida: position outside evaluation domain")

	// ErrInsufficientSamples is returned by data recovery when fewer
	// distinct positions than the message length are available.
	ErrInsufficientSamples = errors.New("frida: not enough samples to recover data")
)

// VerificationError is the common interface of all verifier failures. Every
// failure carries enough context to say which check rejected the proof.
type VerificationError interface {
	error
	verificationError()
}

// RootMismatchError reports that a Merkle authentication path did not resolve
// to the committed layer root.
type RootMismatchError struct {
	Layer int
}

func (e *RootMismatchError) Error() string {
	return fmt.Sprintf("frida: merkle path does not match committed root at layer %d", e.Layer)
}

func (e *RootMismatchError) verificationError() {}

// InvalidLayerFoldingError reports that the values opened at a layer are not
// the correct folding of the previous layer.
type InvalidLayerFoldingError struct {
	Layer int
}

func (e *InvalidLayerFoldingError) Error() string {
	return fmt.Sprintf("frida: inconsistent folding at layer %d", e.Layer)
}

func (e *InvalidLayerFoldingError) verificationError() {}

// DegreeTruncationError reports that the committed domain cannot be folded
// down to the remainder without truncating coefficients.
type DegreeTruncationError struct {
	DomainSize    int
	FoldingFactor int
	NumLayers     int
}

func (e *DegreeTruncationError) Error() string {
	return fmt.Sprintf("frida: domain of size %d is not divisible by folding factor %d across %d layers",
		e.DomainSize, e.FoldingFactor, e.NumLayers)
}

func (e *DegreeTruncationError) verificationError() {}

// RemainderDegreeMismatchError reports a remainder polynomial with more
// coefficients than the agreed maximum degree allows.
type RemainderDegreeMismatchError struct {
	MaxDegree int
	Got       int
}

func (e *RemainderDegreeMismatchError) Error() string {
	return fmt.Sprintf("frida: remainder has %d coefficients, maximum degree is %d", e.Got, e.MaxDegree)
}

func (e *RemainderDegreeMismatchError) verificationError() {}

// InvalidRemainderFoldingError reports that the final layer does not evaluate
// to the committed remainder polynomial.
type InvalidRemainderFoldingError struct{}

func (e *InvalidRemainderFoldingError) Error() string {
	return "frida: last layer does not fold into committed remainder"
}

func (e *InvalidRemainderFoldingError) verificationError() {}
