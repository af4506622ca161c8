// Package prover builds FRI commitments over erasure-coded data and opens
// them at queried positions. A Builder holds the protocol parameters; each
// commitment produces a stateful Prover that can answer any number of
// opening requests.
package prover

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/rs/zerolog"

	"github.com/frida-dev/frida-go/data"
	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/hashing"
	"github.com/frida-dev/frida-go/logger"
	"github.com/frida-dev/frida-go/merkle"
	"github.com/frida-dev/frida-go/proof"
)

// Builder creates provers bound to specific blobs.
type Builder struct {
	opts   frida.Options
	hasher hashing.Hasher
	log    zerolog.Logger
}

// NewBuilder returns a builder for the given parameters.
func NewBuilder(opts frida.Options, hasher hashing.Hasher) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		opts:   opts,
		hasher: hasher,
		log:    logger.Logger().With().Str("component", "prover").Logger(),
	}, nil
}

// CommitAndProve commits to a blob and immediately opens it at numQueries
// transcript-drawn positions.
func (b *Builder) CommitAndProve(blob []byte, numQueries int) (*proof.Commitment, *Prover, error) {
	ch, p, err := b.prepareProverState(blob, numQueries)
	if err != nil {
		return nil, nil, err
	}
	commitment, err := b.buildCommitment(p, ch)
	if err != nil {
		return nil, nil, err
	}
	return commitment, p, nil
}

// CommitAndProveBatch commits to several blobs jointly and opens the batch
// at numQueries transcript-drawn positions.
func (b *Builder) CommitAndProveBatch(blobs [][]byte, numQueries int) (*proof.Commitment, *Prover, error) {
	ch, p, err := b.prepareProverStateBatch(blobs, numQueries)
	if err != nil {
		return nil, nil, err
	}
	commitment, err := b.buildCommitment(p, ch)
	if err != nil {
		return nil, nil, err
	}
	return commitment, p, nil
}

// Commitment commits to a blob without opening it. It returns the published
// roots, a prover able to answer openings, and the base query positions the
// transcript assigns to this commitment.
func (b *Builder) Commitment(blob []byte, numQueries int) (*proof.ProverCommitment, *Prover, []uint64, error) {
	ch, p, err := b.prepareProverState(blob, numQueries)
	if err != nil {
		return nil, nil, nil, err
	}
	return b.proverCommitment(ch, p)
}

// CommitmentBatch is Commitment over several blobs committed jointly.
func (b *Builder) CommitmentBatch(blobs [][]byte, numQueries int) (*proof.ProverCommitment, *Prover, []uint64, error) {
	ch, p, err := b.prepareProverStateBatch(blobs, numQueries)
	if err != nil {
		return nil, nil, nil, err
	}
	return b.proverCommitment(ch, p)
}

func (b *Builder) proverCommitment(ch *channel, p *Prover) (*proof.ProverCommitment, *Prover, []uint64, error) {
	commitment := &proof.ProverCommitment{
		Roots:      ch.roots,
		DomainSize: p.domainSize,
		PolyCount:  p.polyCount,
	}
	basePositions, err := ch.drawQueryPositions()
	if err != nil {
		return nil, nil, nil, err
	}
	return commitment, p, basePositions, nil
}

func (b *Builder) prepareProverState(blob []byte, numQueries int) (*channel, *Prover, error) {
	if numQueries == 0 {
		return nil, nil, frida.ErrBadNumQueries
	}
	domainSize, err := data.DomainSizeForData(len(blob), b.opts.BlowupFactor)
	if err != nil {
		return nil, nil, err
	}
	if numQueries >= domainSize {
		return nil, nil, frida.ErrBadNumQueries
	}
	if b.opts.NumFriLayers(domainSize) == 0 {
		return nil, nil, frida.ErrNoFoldableLayers
	}
	if err := b.checkDegrees(domainSize); err != nil {
		return nil, nil, err
	}

	evaluations, err := data.BuildEvaluations(blob, domainSize, b.opts.BlowupFactor)
	if err != nil {
		return nil, nil, err
	}

	b.log.Debug().Int("domain_size", domainSize).Int("num_queries", numQueries).
		Msg("building commitment layers")

	ch := newChannel(b.hasher, domainSize, numQueries)
	p, err := b.buildLayers(ch, evaluations, 1, nil)
	if err != nil {
		return nil, nil, err
	}
	return ch, p, nil
}

func (b *Builder) prepareProverStateBatch(blobs [][]byte, numQueries int) (*channel, *Prover, error) {
	if numQueries == 0 {
		return nil, nil, frida.ErrBadNumQueries
	}
	polyCount := len(blobs)
	if polyCount <= 1 {
		return nil, nil, frida.ErrSinglePolyBatch
	}

	maxLen := 0
	for _, blob := range blobs {
		if len(blob) > maxLen {
			maxLen = len(blob)
		}
	}
	domainSize, err := data.DomainSizeForData(maxLen, b.opts.BlowupFactor)
	if err != nil {
		return nil, nil, err
	}
	if numQueries >= domainSize {
		return nil, nil, frida.ErrBadNumQueries
	}
	if b.opts.NumFriLayers(domainSize) == 0 {
		return nil, nil, frida.ErrNoFoldableLayers
	}
	if err := b.checkDegrees(domainSize); err != nil {
		return nil, nil, err
	}

	evaluations, err := BatchDataToEvaluations(blobs, domainSize, b.opts.BlowupFactor, b.opts.FoldingFactor)
	if err != nil {
		return nil, nil, err
	}

	b.log.Debug().Int("domain_size", domainSize).Int("poly_count", polyCount).
		Int("num_queries", numQueries).Msg("building batched commitment layers")

	ch := newChannel(b.hasher, domainSize, numQueries)
	p, err := b.buildLayersBatched(ch, evaluations, domainSize)
	if err != nil {
		return nil, nil, err
	}
	return ch, p, nil
}

// checkDegrees rejects parameter combinations whose folding would drop
// coefficients at some layer instead of projecting them exactly.
func (b *Builder) checkDegrees(domainSize int) error {
	maxDegreePlus1 := domainSize / b.opts.BlowupFactor
	for depth := 0; depth < b.opts.NumFriLayers(domainSize); depth++ {
		if maxDegreePlus1%b.opts.FoldingFactor != 0 {
			return &frida.DegreeTruncationError{
				DomainSize:    domainSize,
				FoldingFactor: b.opts.FoldingFactor,
				NumLayers:     depth,
			}
		}
		maxDegreePlus1 /= b.opts.FoldingFactor
	}
	return nil
}

// buildCommitment draws the transcript's query positions and packages the
// opening into a full commitment, consuming the channel.
func (b *Builder) buildCommitment(p *Prover, ch *channel) (*proof.Commitment, error) {
	positions, err := ch.drawQueryPositions()
	if err != nil {
		return nil, err
	}
	openProof, err := p.Open(positions)
	if err != nil {
		return nil, err
	}
	return &proof.Commitment{
		Roots:      ch.roots,
		Proof:      openProof,
		DomainSize: p.domainSize,
		NumQueries: ch.numQueries,
		PolyCount:  p.polyCount,
	}, nil
}

// buildLayers folds evaluations down to the remainder, committing to every
// intermediate layer. For batched commitments the pre-built first layer is
// passed in and folding starts from its xi-combined projection.
func (b *Builder) buildLayers(ch *channel, evaluations []fr.Element, polyCount int, batchLayer *layer) (*Prover, error) {
	domainSize := len(evaluations)
	if batchLayer != nil {
		domainSize = len(evaluations) * b.opts.FoldingFactor
	}

	numLayers := b.opts.NumFriLayers(domainSize)
	layers := make([]layer, 0, numLayers)
	start := 0
	if batchLayer != nil {
		layers = append(layers, *batchLayer)
		start = 1
	}
	for i := start; i < numLayers; i++ {
		next, l, err := b.buildLayer(ch, evaluations)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
		evaluations = next
	}

	remainder, err := b.buildRemainder(ch, evaluations)
	if err != nil {
		return nil, err
	}
	return &Prover{
		hasher:        b.hasher,
		layers:        layers,
		polyCount:     polyCount,
		remainder:     remainder,
		domainSize:    domainSize,
		foldingFactor: b.opts.FoldingFactor,
	}, nil
}

// buildLayer commits to one layer and projects it down by the folding
// factor.
func (b *Builder) buildLayer(ch *channel, evaluations []fr.Element) ([]fr.Element, layer, error) {
	rows := transpose(evaluations, b.opts.FoldingFactor)
	hashes := hashRows(b.hasher, rows)
	tree, err := merkle.Build(b.hasher, hashes)
	if err != nil {
		return nil, layer{}, err
	}
	ch.commitLayer(tree.Root())

	alpha, err := ch.drawAlpha()
	if err != nil {
		return nil, layer{}, err
	}
	folded, err := applyDrp(rows, len(evaluations), alpha)
	if err != nil {
		return nil, layer{}, err
	}
	return folded, layer{tree: tree, evaluations: flatten(rows)}, nil
}

// buildLayersBatched commits the interleaved first layer, xi-combines it
// into a single polynomial's evaluations and hands off to the plain folding
// loop.
func (b *Builder) buildLayersBatched(ch *channel, evaluations []fr.Element, domainSize int) (*Prover, error) {
	polyCount := len(evaluations) / domainSize
	bucketCount := domainSize / b.opts.FoldingFactor
	bucketSize := polyCount * b.opts.FoldingFactor

	buckets := make([][]fr.Element, bucketCount)
	for i := range buckets {
		buckets[i] = evaluations[i*bucketSize : (i+1)*bucketSize]
	}
	hashes := hashRows(b.hasher, buckets)
	tree, err := merkle.Build(b.hasher, hashes)
	if err != nil {
		return nil, err
	}
	ch.commitLayer(tree.Root())

	xi, err := ch.drawXi(polyCount)
	if err != nil {
		return nil, err
	}
	alpha, err := ch.drawAlpha()
	if err != nil {
		return nil, err
	}
	secondLayer, err := applyDrpBatched(evaluations, polyCount, b.opts.FoldingFactor, xi, alpha)
	if err != nil {
		return nil, err
	}
	return b.buildLayers(ch, secondLayer, polyCount, &layer{tree: tree, evaluations: evaluations})
}

// buildRemainder interpolates the final evaluations over their coset,
// truncates to the payload degree and commits to the coefficients.
func (b *Builder) buildRemainder(ch *channel, evaluations []fr.Element) ([]fr.Element, error) {
	coeffs := make([]fr.Element, len(evaluations))
	copy(coeffs, evaluations)
	domain := fft.NewDomain(uint64(len(coeffs)))
	domain.FFTInverse(coeffs, fft.DIF, fft.OnCoset())
	fft.BitReverse(coeffs)

	remainder := coeffs[:len(coeffs)/b.opts.BlowupFactor]
	ch.commitLayer(hashing.HashElements(b.hasher, remainder))
	return remainder, nil
}

// BatchDataToEvaluations encodes each blob over the shared domain and
// interleaves the results bucket by bucket, so one Merkle leaf authenticates
// the folding rows of every polynomial at once.
func BatchDataToEvaluations(blobs [][]byte, domainSize, blowupFactor, foldingFactor int) ([]fr.Element, error) {
	polyCount := len(blobs)
	bucketCount := domainSize / foldingFactor
	bucketSize := polyCount * foldingFactor

	evaluations := make([]fr.Element, polyCount*domainSize)
	for i, blob := range blobs {
		evals, err := data.BuildEvaluations(blob, domainSize, blowupFactor)
		if err != nil {
			return nil, err
		}
		for j, e := range evals {
			bucket := j % bucketCount
			position := i + polyCount*(j/bucketCount)
			evaluations[bucket*bucketSize+position] = e
		}
	}
	return evaluations, nil
}

// GetEvaluationsFromPositions extracts, for each domain position, the
// claimed evaluations of every polynomial from an interleaved first layer.
func GetEvaluationsFromPositions(allEvaluations []fr.Element, positions []uint64, polyCount, domainSize, foldingFactor int) []fr.Element {
	bucketCount := uint64(domainSize / foldingFactor)
	bucketSize := uint64(polyCount * foldingFactor)

	evaluations := make([]fr.Element, 0, len(positions)*polyCount)
	for _, position := range positions {
		bucket := position % bucketCount
		offset := uint64(polyCount) * (position / bucketCount)
		for i := 0; i < polyCount; i++ {
			index := bucket*bucketSize + uint64(i) + offset
			evaluations = append(evaluations, allEvaluations[index])
		}
	}
	return evaluations
}

func flatten(rows [][]fr.Element) []fr.Element {
	if len(rows) == 0 {
		return nil
	}
	out := make([]fr.Element, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
