package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/hashing"
)

var (
	fBlowupFactor       int
	fFoldingFactor      int
	fMaxRemainderDegree int
	fOptionsPath        string
	fHashName           string
	fDataPath           string
)

var rootCmd = &cobra.Command{
	Use:   "frida",
	Short: "FRI-based data availability sampling: commit to data blobs, open query positions and verify openings",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&fBlowupFactor, "blowup-factor", 8, "domain oversampling ratio (power of two)")
	rootCmd.PersistentFlags().IntVar(&fFoldingFactor, "folding-factor", 2, "evaluations folded per layer (2, 4, 8 or 16)")
	rootCmd.PersistentFlags().IntVar(&fMaxRemainderDegree, "max-remainder-degree", 7, "degree bound of the terminal polynomial")
	rootCmd.PersistentFlags().StringVar(&fOptionsPath, "options", "", "JSON file with FRI options, takes precedence over the option flags")
	rootCmd.PersistentFlags().StringVar(&fHashName, "hash", "blake2b", "hash function: blake2b or keccak256")
	rootCmd.PersistentFlags().StringVar(&fDataPath, "data-path", "data/data.bin", "path of the data file")
}

type optionsConfig struct {
	BlowupFactor       int `json:"blowup_factor"`
	FoldingFactor      int `json:"folding_factor"`
	MaxRemainderDegree int `json:"max_remainder_degree"`
}

// cliOptions resolves the FRI options from the --options config file when
// given, falling back to the individual flags.
func cliOptions() (frida.Options, error) {
	opts := frida.Options{
		BlowupFactor:       fBlowupFactor,
		FoldingFactor:      fFoldingFactor,
		RemainderMaxDegree: fMaxRemainderDegree,
	}
	if fOptionsPath != "" {
		buf, err := os.ReadFile(fOptionsPath)
		if err != nil {
			return frida.Options{}, err
		}
		var cfg optionsConfig
		if err := json.Unmarshal(buf, &cfg); err != nil {
			return frida.Options{}, err
		}
		opts = frida.Options{
			BlowupFactor:       cfg.BlowupFactor,
			FoldingFactor:      cfg.FoldingFactor,
			RemainderMaxDegree: cfg.MaxRemainderDegree,
		}
	}
	return opts, opts.Validate()
}

func cliHasher() (hashing.Hasher, error) {
	return hashing.ByName(fHashName)
}

// writeFile creates the parent directory when missing, so the default
// data/ layout works out of the box.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
