package prover

import (
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/frida-dev/frida-go/data"
	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/hashing"
)

var testOptions = frida.Options{BlowupFactor: 8, FoldingFactor: 2, RemainderMaxDegree: 7}

func randomBlob(t *testing.T, size int) []byte {
	t.Helper()
	blob := make([]byte, size)
	rng := rand.New(rand.NewSource(int64(size)))
	rng.Read(blob)
	return blob
}

func TestNewBuilderValidatesOptions(t *testing.T) {
	_, err := NewBuilder(frida.Options{BlowupFactor: 3, FoldingFactor: 2}, hashing.Keccak256{})
	require.ErrorIs(t, err, frida.ErrInvalidBlowupFactor)
}

func TestCommitAndProve(t *testing.T) {
	builder, err := NewBuilder(testOptions, hashing.Keccak256{})
	require.NoError(t, err)

	blob := randomBlob(t, 1000)
	commitment, prv, err := builder.CommitAndProve(blob, 31)
	require.NoError(t, err)

	// 1000 bytes encode into 33 elements, blown up to a domain of 512
	require.Equal(t, 512, commitment.DomainSize)
	require.Equal(t, 512, prv.DomainSize())
	require.Equal(t, 1, commitment.PolyCount)
	require.False(t, prv.IsBatch())
	require.Equal(t, 31, commitment.NumQueries)

	// one root per folded layer plus the remainder commitment
	numLayers := testOptions.NumFriLayers(512)
	require.Equal(t, numLayers+1, len(commitment.Roots))
	require.Equal(t, numLayers, len(prv.layers))
	require.Len(t, commitment.Proof.Layers, numLayers)
	require.Nil(t, commitment.Proof.BatchLayer)
}

func TestFirstLayerEvaluationsArePositionOrdered(t *testing.T) {
	builder, err := NewBuilder(testOptions, hashing.Keccak256{})
	require.NoError(t, err)

	blob := randomBlob(t, 1000)
	commitment, prv, err := builder.CommitAndProve(blob, 31)
	require.NoError(t, err)

	// the accessor must hand out evaluations indexable by domain position,
	// not the row layout the Merkle layer is committed over
	encoded, err := data.BuildEvaluations(blob, commitment.DomainSize, testOptions.BlowupFactor)
	require.NoError(t, err)
	require.Equal(t, encoded, prv.FirstLayerEvaluations())
	require.NotEqual(t, encoded, prv.layers[0].evaluations)
}

func TestCommitRejectsDegreeTruncation(t *testing.T) {
	opts := frida.Options{BlowupFactor: 4, FoldingFactor: 4, RemainderMaxDegree: 0}
	builder, err := NewBuilder(opts, hashing.Keccak256{})
	require.NoError(t, err)

	// 200 bytes give a domain of 32: the degree bound of 8 folds once to 2,
	// which a second fold by 4 would truncate
	var truncated *frida.DegreeTruncationError
	_, _, err = builder.CommitAndProve(randomBlob(t, 200), 5)
	require.ErrorAs(t, err, &truncated)
	require.Equal(t, 32, truncated.DomainSize)
	require.Equal(t, 4, truncated.FoldingFactor)

	_, _, _, err = builder.Commitment(randomBlob(t, 200), 5)
	require.ErrorAs(t, err, &truncated)

	blobs := [][]byte{randomBlob(t, 200), randomBlob(t, 100)}
	_, _, err = builder.CommitAndProveBatch(blobs, 5)
	require.ErrorAs(t, err, &truncated)
}

func TestCommitAndProveRejectsBadQueryCounts(t *testing.T) {
	builder, err := NewBuilder(testOptions, hashing.Keccak256{})
	require.NoError(t, err)

	_, _, err = builder.CommitAndProve(randomBlob(t, 1000), 0)
	require.ErrorIs(t, err, frida.ErrBadNumQueries)

	_, _, err = builder.CommitAndProve(randomBlob(t, 1000), 512)
	require.ErrorIs(t, err, frida.ErrBadNumQueries)
}

func TestCommitRejectsUnfoldableDomain(t *testing.T) {
	// 200 bytes encode into a domain of 64, which is already within the
	// remainder bound for these options
	builder, err := NewBuilder(testOptions, hashing.Keccak256{})
	require.NoError(t, err)

	_, _, err = builder.CommitAndProve(randomBlob(t, 200), 10)
	require.ErrorIs(t, err, frida.ErrNoFoldableLayers)
}

func TestCommitmentDrawsBasePositions(t *testing.T) {
	builder, err := NewBuilder(testOptions, hashing.Blake2b256{})
	require.NoError(t, err)

	blob := randomBlob(t, 1000)
	pc, prv, positions, err := builder.Commitment(blob, 32)
	require.NoError(t, err)
	require.Equal(t, prv.DomainSize(), pc.DomainSize)
	require.Equal(t, 1, pc.PolyCount)
	require.NotEmpty(t, positions)
	for _, p := range positions {
		require.Less(t, p, uint64(pc.DomainSize))
	}

	// the same blob commits to the same roots and positions
	pc2, _, positions2, err := builder.Commitment(blob, 32)
	require.NoError(t, err)
	require.Equal(t, pc.Roots, pc2.Roots)
	require.Equal(t, positions, positions2)
}

func TestOpenRejectsOutOfRangePositions(t *testing.T) {
	builder, err := NewBuilder(testOptions, hashing.Keccak256{})
	require.NoError(t, err)

	_, prv, err := builder.CommitAndProve(randomBlob(t, 1000), 4)
	require.NoError(t, err)

	_, err = prv.Open([]uint64{uint64(prv.DomainSize())})
	require.ErrorIs(t, err, frida.ErrPositionOutOfRange)
}

func TestBatchRejectsSingleBlob(t *testing.T) {
	builder, err := NewBuilder(testOptions, hashing.Keccak256{})
	require.NoError(t, err)

	_, _, err = builder.CommitAndProveBatch([][]byte{randomBlob(t, 1000)}, 4)
	require.ErrorIs(t, err, frida.ErrSinglePolyBatch)

	_, _, err = builder.CommitAndProveBatch(nil, 4)
	require.ErrorIs(t, err, frida.ErrSinglePolyBatch)
}

func TestCommitAndProveBatch(t *testing.T) {
	builder, err := NewBuilder(testOptions, hashing.Keccak256{})
	require.NoError(t, err)

	blobs := [][]byte{randomBlob(t, 400), randomBlob(t, 1000), randomBlob(t, 700)}
	commitment, prv, err := builder.CommitAndProveBatch(blobs, 16)
	require.NoError(t, err)

	// the domain is sized for the largest blob
	require.Equal(t, 512, commitment.DomainSize)
	require.Equal(t, 3, commitment.PolyCount)
	require.True(t, prv.IsBatch())
	require.NotNil(t, commitment.Proof.BatchLayer)
	require.Len(t, commitment.Proof.Layers, testOptions.NumFriLayers(512)-1)
}

func TestBatchDataToEvaluationsLayout(t *testing.T) {
	const (
		blowup        = 8
		foldingFactor = 2
	)
	blobs := [][]byte{randomBlob(t, 300), randomBlob(t, 500)}
	domainSize, err := data.DomainSizeForData(500, blowup)
	require.NoError(t, err)

	interleaved, err := BatchDataToEvaluations(blobs, domainSize, blowup, foldingFactor)
	require.NoError(t, err)
	require.Len(t, interleaved, 2*domainSize)

	// every evaluation of every blob must be reachable through the bucket
	// layout the prover commits to
	for i, blob := range blobs {
		evals, err := data.BuildEvaluations(blob, domainSize, blowup)
		require.NoError(t, err)
		for j := uint64(0); j < uint64(domainSize); j++ {
			got := GetEvaluationsFromPositions(interleaved, []uint64{j}, 2, domainSize, foldingFactor)
			require.True(t, got[i].Equal(&evals[j]), "blob %d position %d", i, j)
		}
	}
}

func TestTranspose(t *testing.T) {
	evals := make([]fr.Element, 8)
	for i := range evals {
		evals[i].SetUint64(uint64(i))
	}
	rows := transpose(evals, 2)
	require.Len(t, rows, 4)
	// row i holds the evaluations at i and i+4
	for i, row := range rows {
		require.True(t, row[0].Equal(&evals[i]))
		require.True(t, row[1].Equal(&evals[i+4]))
	}
	require.Nil(t, flatten(nil))
}

func TestHashRowsMatchesSequential(t *testing.T) {
	h := hashing.Blake2b256{}
	rows := transpose(make([]fr.Element, 64), 4)
	for i := range rows {
		for j := range rows[i] {
			rows[i][j].SetUint64(uint64(i*31 + j))
		}
	}
	hashes := hashRows(h, rows)
	for i, row := range rows {
		require.Equal(t, hashing.HashElements(h, row), hashes[i])
	}
}
