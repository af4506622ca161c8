package das

import (
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/frida-dev/frida-go/data"
	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/hashing"
	"github.com/frida-dev/frida-go/prover"
	"github.com/frida-dev/frida-go/verifier"
)

func randomBlob(t *testing.T, size int) []byte {
	t.Helper()
	blob := make([]byte, size)
	rng := rand.New(rand.NewSource(int64(size)))
	rng.Read(blob)
	return blob
}

func TestCalculateNumQueries(t *testing.T) {
	cases := []struct {
		name      string
		opts      frida.Options
		dataSize  int
		batchSize int
		lambda    int
		want      int
	}{
		{"32KiB high folding", frida.Options{BlowupFactor: 8, FoldingFactor: 4, RemainderMaxDegree: 63}, 32 * 1024, 0, 128, 49},
		{"64KiB folding 2", frida.Options{BlowupFactor: 2, FoldingFactor: 2, RemainderMaxDegree: 0}, 64 * 1024, 0, 128, 128},
		{"64KiB folding 2 batch 32", frida.Options{BlowupFactor: 2, FoldingFactor: 2, RemainderMaxDegree: 0}, 64 * 1024, 32, 128, 133},
		{"1KiB", frida.Options{BlowupFactor: 4, FoldingFactor: 2, RemainderMaxDegree: 15}, 1024, 0, 100, 50},
		{"1KiB batch 16", frida.Options{BlowupFactor: 4, FoldingFactor: 2, RemainderMaxDegree: 15}, 1024, 16, 100, 54},
		{"tiny blob capped by domain", frida.Options{BlowupFactor: 16, FoldingFactor: 4, RemainderMaxDegree: 3}, 10, 0, 200, 15},
		{"zero security floor", frida.Options{BlowupFactor: 8, FoldingFactor: 4, RemainderMaxDegree: 3}, 256, 0, 0, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateNumQueries(tc.dataSize, tc.opts, tc.batchSize, tc.lambda)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := CalculateNumQueries(1024, frida.Options{BlowupFactor: 3, FoldingFactor: 2}, 0, 128)
	require.ErrorIs(t, err, frida.ErrInvalidBlowupFactor)
}

func TestComputePositionAssignmentsWindows(t *testing.T) {
	positions := []uint64{10, 20, 30, 40, 50, 60}

	// with n <= s each validator gets a cyclic window of length s-h+1
	assignments := ComputePositionAssignments(4, positions, 3)
	require.Len(t, assignments, 4)
	require.Equal(t, []uint64{10, 20, 30, 40}, assignments[0])
	require.Equal(t, []uint64{20, 30, 40, 50}, assignments[1])
	require.Equal(t, []uint64{30, 40, 50, 60}, assignments[2])
	require.Equal(t, []uint64{40, 50, 60, 10}, assignments[3])

	require.Nil(t, ComputePositionAssignments(0, positions, 3))
}

func TestComputePositionAssignmentsCoverage(t *testing.T) {
	positions := []uint64{0, 1, 2, 3, 4, 5}
	const h = 3
	assignments := ComputePositionAssignments(6, positions, h)

	// any h validators together hold every position
	for a := 0; a < 6; a++ {
		for b := a + 1; b < 6; b++ {
			for c := b + 1; c < 6; c++ {
				held := map[uint64]bool{}
				for _, i := range []int{a, b, c} {
					for _, p := range assignments[i] {
						held[p] = true
					}
				}
				require.Len(t, held, len(positions), "validators %d %d %d", a, b, c)
			}
		}
	}
}

func TestComputePositionAssignmentsReplication(t *testing.T) {
	positions := []uint64{7, 8, 9, 10}

	// 10 validators over 4 positions: two full replication rounds cover
	// validators 1..8, the remainder receives nothing
	assignments := ComputePositionAssignments(10, positions, 4)
	require.Len(t, assignments, 10)
	for i := 0; i < 8; i++ {
		require.Equal(t, assignments[i%4], assignments[i], "validator %d", i)
		require.NotEmpty(t, assignments[i])
	}
	require.Empty(t, assignments[8])
	require.Empty(t, assignments[9])

	// replicated windows keep the coverage guarantee: losing all but h=4
	// validators of the first eight still covers every position
	held := map[uint64]bool{}
	for _, p := range append(append([]uint64{}, assignments[0]...), assignments[5]...) {
		held[p] = true
	}
	for _, p := range append(append([]uint64{}, assignments[2]...), assignments[7]...) {
		held[p] = true
	}
	require.Len(t, held, len(positions))
}

// Distributed workflow: a prover publishes a roots-only commitment, splits
// the transcript's query positions across validators, and every validator
// independently verifies its own opening.
func TestDistributedProofGeneration(t *testing.T) {
	opts := frida.Options{BlowupFactor: 8, FoldingFactor: 2, RemainderMaxDegree: 7}
	hasher := hashing.Keccak256{}
	builder, err := prover.NewBuilder(opts, hasher)
	require.NoError(t, err)

	blob := randomBlob(t, 1000)
	const (
		numQueries    = 32
		numValidators = 10
		honest        = 4
	)
	pc, prv, basePositions, err := builder.Commitment(blob, numQueries)
	require.NoError(t, err)

	assignments := ComputePositionAssignments(numValidators, basePositions, honest)
	require.Len(t, assignments, numValidators)

	evaluations := prv.FirstLayerEvaluations()
	for i, assignment := range assignments {
		if len(assignment) == 0 {
			continue
		}
		openingProof, err := prv.Open(assignment)
		require.NoError(t, err, "validator %d", i)

		v, positions, err := verifier.FromProverCommitment(pc, numQueries, opts, hasher)
		require.NoError(t, err)
		require.Equal(t, basePositions, positions)

		opened := make([]fr.Element, len(assignment))
		for j, p := range assignment {
			opened[j] = evaluations[p]
		}
		require.NoError(t, v.Verify(openingProof, opened, assignment), "validator %d", i)
	}
}

// Batched distributed workflow over several blobs, verifying with the
// interleaved first-layer lookup helpers.
func TestDistributedBatchProofGeneration(t *testing.T) {
	opts := frida.Options{BlowupFactor: 2, FoldingFactor: 2, RemainderMaxDegree: 1}
	hasher := hashing.Blake2b256{}
	builder, err := prover.NewBuilder(opts, hasher)
	require.NoError(t, err)

	blobs := [][]byte{randomBlob(t, 100), randomBlob(t, 300), randomBlob(t, 220)}
	const numQueries = 12
	pc, prv, basePositions, err := builder.CommitmentBatch(blobs, numQueries)
	require.NoError(t, err)
	require.Equal(t, 3, pc.PolyCount)

	assignments := ComputePositionAssignments(5, basePositions, 2)
	for i, assignment := range assignments {
		if len(assignment) == 0 {
			continue
		}
		openingProof, err := prv.Open(assignment)
		require.NoError(t, err, "validator %d", i)

		v, _, err := verifier.FromProverCommitment(pc, numQueries, opts, hasher)
		require.NoError(t, err)

		opened := prover.GetEvaluationsFromPositions(
			prv.FirstLayerEvaluations(), assignment, 3, prv.DomainSize(), opts.FoldingFactor)
		require.NoError(t, v.Verify(openingProof, opened, assignment), "validator %d", i)
	}
}

// Samples gathered from enough validators reconstruct the original blob.
func TestDistributedRecovery(t *testing.T) {
	opts := frida.Options{BlowupFactor: 8, FoldingFactor: 2, RemainderMaxDegree: 7}
	hasher := hashing.Keccak256{}
	builder, err := prover.NewBuilder(opts, hasher)
	require.NoError(t, err)

	blob := randomBlob(t, 1000)
	pc, prv, _, err := builder.Commitment(blob, 32)
	require.NoError(t, err)

	// sample one message worth of distinct positions across validators
	messageLen := pc.DomainSize / opts.BlowupFactor
	positions := make([]uint64, messageLen)
	for i := range positions {
		positions[i] = uint64(i * opts.BlowupFactor % pc.DomainSize)
	}
	assignments := ComputePositionAssignments(4, positions, 2)

	held := make(map[uint64]fr.Element)
	evaluations := prv.FirstLayerEvaluations()
	for _, assignment := range assignments {
		for _, p := range assignment {
			held[p] = evaluations[p]
		}
	}

	gathered := make([]fr.Element, 0, len(held))
	gatheredPositions := make([]uint64, 0, len(held))
	for p, e := range held {
		gatheredPositions = append(gatheredPositions, p)
		gathered = append(gathered, e)
	}

	got, err := data.Recover(gathered, gatheredPositions, pc.DomainSize, opts.BlowupFactor)
	require.NoError(t, err)
	require.Equal(t, blob, got)
}
