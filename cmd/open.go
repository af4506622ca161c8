package cmd

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"github.com/frida-dev/frida-go/field"
	"github.com/frida-dev/frida-go/logger"
	"github.com/frida-dev/frida-go/proof"
	"github.com/frida-dev/frida-go/prover"
)

var (
	fPositionsPath   string
	fEvaluationsPath string
	fProofPath       string
)

var openCmd = &cobra.Command{
	Use:   "open <position>...",
	Short: "open the committed data at the given positions and write the positions, evaluations and proof files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  open,
}

func open(cmd *cobra.Command, args []string) error {
	positions := make([]uint64, len(args))
	for i, arg := range args {
		p, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid position %q", arg)
		}
		positions[i] = p
	}

	opts, err := cliOptions()
	if err != nil {
		return err
	}
	hasher, err := cliHasher()
	if err != nil {
		return err
	}
	blob, err := os.ReadFile(fDataPath)
	if err != nil {
		return err
	}

	builder, err := prover.NewBuilder(opts, hasher)
	if err != nil {
		return err
	}
	_, prv, err := builder.CommitAndProve(blob, 1)
	if err != nil {
		return err
	}
	openingProof, err := prv.Open(positions)
	if err != nil {
		return err
	}

	evaluations := prv.FirstLayerEvaluations()
	queried := make([]fr.Element, len(positions))
	for i, p := range positions {
		queried[i] = evaluations[p]
	}

	if err := writeFile(fPositionsPath, marshalPositions(positions)); err != nil {
		return err
	}
	if err := writeFile(fEvaluationsPath, marshalEvaluations(queried)); err != nil {
		return err
	}
	if err := writeFile(fProofPath, openingProof.MarshalBinary()); err != nil {
		return err
	}

	log := logger.Logger()
	log.Info().
		Int("positions", len(positions)).
		Str("proof_path", fProofPath).
		Msg("opening created")
	return nil
}

func marshalPositions(positions []uint64) []byte {
	out := binary.BigEndian.AppendUint64(nil, uint64(len(positions)))
	for _, p := range positions {
		out = binary.BigEndian.AppendUint64(out, p)
	}
	return out
}

func marshalEvaluations(evaluations []fr.Element) []byte {
	out := binary.BigEndian.AppendUint64(nil, uint64(len(evaluations)))
	return append(out, field.SliceToBytes(evaluations)...)
}

// readOpening loads the three files written by the open command.
func readOpening(positionsPath, evaluationsPath, proofPath string) ([]uint64, []fr.Element, *proof.Proof, error) {
	buf, err := os.ReadFile(positionsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(buf) < 8 {
		return nil, nil, nil, fmt.Errorf("positions file %s is truncated", positionsPath)
	}
	count := binary.BigEndian.Uint64(buf[:8])
	if uint64(len(buf)-8) != count*8 {
		return nil, nil, nil, fmt.Errorf("positions file %s is truncated", positionsPath)
	}
	positions := make([]uint64, count)
	for i := range positions {
		positions[i] = binary.BigEndian.Uint64(buf[8+i*8:])
	}

	buf, err = os.ReadFile(evaluationsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(buf) < 8 {
		return nil, nil, nil, fmt.Errorf("evaluations file %s is truncated", evaluationsPath)
	}
	if binary.BigEndian.Uint64(buf[:8]) != uint64(len(buf)-8)/uint64(field.ElementBytes) {
		return nil, nil, nil, fmt.Errorf("evaluations file %s is truncated", evaluationsPath)
	}
	evaluations, err := field.SliceFromBytes(buf[8:])
	if err != nil {
		return nil, nil, nil, err
	}

	buf, err = os.ReadFile(proofPath)
	if err != nil {
		return nil, nil, nil, err
	}
	p, _, err := proof.UnmarshalProof(buf)
	if err != nil {
		return nil, nil, nil, err
	}
	return positions, evaluations, p, nil
}

func init() {
	openCmd.Flags().StringVar(&fPositionsPath, "positions-path", "data/positions.bin", "path of the positions file")
	openCmd.Flags().StringVar(&fEvaluationsPath, "evaluations-path", "data/evaluations.bin", "path of the evaluations file")
	openCmd.Flags().StringVar(&fProofPath, "proof-path", "data/proof.bin", "path of the proof file")
	rootCmd.AddCommand(openCmd)
}
