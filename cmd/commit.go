package cmd

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frida-dev/frida-go/data"
	"github.com/frida-dev/frida-go/logger"
	"github.com/frida-dev/frida-go/proof"
	"github.com/frida-dev/frida-go/prover"
)

var fCommitmentPath string

var commitCmd = &cobra.Command{
	Use:   "commit <num-queries>",
	Short: "commit to the data file and write a self-contained commitment with an opening for the transcript's query positions",
	Args:  cobra.ExactArgs(1),
	RunE:  commit,
}

func commit(cmd *cobra.Command, args []string) error {
	numQueries, err := strconv.Atoi(args[0])
	if err != nil || numQueries <= 0 {
		return fmt.Errorf("invalid query count %q", args[0])
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
	commitment, _, err := builder.CommitAndProve(blob, numQueries)
	if err != nil {
		return err
	}

	if err := writeCommitmentFile(fCommitmentPath, len(blob), commitment); err != nil {
		return err
	}

	log := logger.Logger()
	log.Info().
		Int("domain_size", commitment.DomainSize).
		Int("num_queries", commitment.NumQueries).
		Str("path", fCommitmentPath).
		Msg("commitment created")
	return nil
}

// Commitment files carry the encoded element count of the committed data as
// an 8-byte little-endian prefix, followed by the commitment bytes.
func writeCommitmentFile(path string, dataSize int, c *proof.Commitment) error {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(data.EncodedElementCount(dataSize)))
	out = append(out, c.MarshalBinary()...)
	return writeFile(path, out)
}

func readCommitmentFile(path string, digestSize int) (*proof.Commitment, int, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < 8 {
		return nil, 0, fmt.Errorf("commitment file %s is truncated", path)
	}
	encodedCount := int(binary.LittleEndian.Uint64(buf[:8]))
	c, err := proof.UnmarshalCommitment(buf[8:], digestSize)
	if err != nil {
		return nil, 0, err
	}
	return c, encodedCount, nil
}

func init() {
	commitCmd.Flags().StringVar(&fCommitmentPath, "commitment-path", "data/commitment.bin", "path of the commitment file")
	rootCmd.AddCommand(commitCmd)
}
