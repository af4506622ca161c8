package cmd

import (
	"crypto/rand"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frida-dev/frida-go/logger"
)

var generateDataCmd = &cobra.Command{
	Use:   "generate-data <size>",
	Short: "generate a file with random data of the given size in bytes",
	Args:  cobra.ExactArgs(1),
	RunE:  generateData,
}

func generateData(cmd *cobra.Command, args []string) error {
	size, err := strconv.Atoi(args[0])
	if err != nil || size <= 0 {
		return fmt.Errorf("invalid data size %q", args[0])
	}

	blob := make([]byte, size)
	if _, err := rand.Read(blob); err != nil {
		return err
	}
	if err := writeFile(fDataPath, blob); err != nil {
		return err
	}

	log := logger.Logger()
	log.Info().Int("size", size).Str("path", fDataPath).Msg("generated data")
	return nil
}

func init() {
	rootCmd.AddCommand(generateDataCmd)
}
