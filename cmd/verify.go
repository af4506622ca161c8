package cmd

import (
	"github.com/spf13/cobra"

	"github.com/frida-dev/frida-go/logger"
	"github.com/frida-dev/frida-go/verifier"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "verify an opening against a commitment file",
	Args:  cobra.NoArgs,
	RunE:  verify,
}

func verify(cmd *cobra.Command, args []string) error {
	opts, err := cliOptions()
	if err != nil {
		return err
	}
	hasher, err := cliHasher()
	if err != nil {
		return err
	}

	commitment, _, err := readCommitmentFile(fCommitmentPath, hasher.Size())
	if err != nil {
		return err
	}
	positions, evaluations, openingProof, err := readOpening(fPositionsPath, fEvaluationsPath, fProofPath)
	if err != nil {
		return err
	}

	// Checking the commitment's own opening replays the transcript and
	// yields a verifier bound to the committed roots.
	v, err := verifier.VerifyCommitment(commitment, opts, hasher)
	if err != nil {
		return err
	}
	if err := v.Verify(openingProof, evaluations, positions); err != nil {
		return err
	}

	log := logger.Logger()
	log.Info().
		Int("positions", len(positions)).
		Str("commitment_path", fCommitmentPath).
		Msg("verification successful")
	return nil
}

func init() {
	verifyCmd.Flags().StringVar(&fCommitmentPath, "commitment-path", "data/commitment.bin", "path of the commitment file")
	verifyCmd.Flags().StringVar(&fPositionsPath, "positions-path", "data/positions.bin", "path of the positions file")
	verifyCmd.Flags().StringVar(&fEvaluationsPath, "evaluations-path", "data/evaluations.bin", "path of the evaluations file")
	verifyCmd.Flags().StringVar(&fProofPath, "proof-path", "data/proof.bin", "path of the proof file")
	rootCmd.AddCommand(verifyCmd)
}
