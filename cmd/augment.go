package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oscat-labs/stlin"
)

var (
	augmentCount  int
	augmentSeed   int64
	augmentOutDir string
)

var augmentCmd = &cobra.Command{
	Use:   "augment [files...]",
	Short: "Generate semantics-preserving variants of ST files",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file paths")
			os.Exit(1)
		}

		engine, err := stlin.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		for _, path := range args {
			if err := augmentFile(engine, path); err != nil {
				logger.Error("error augmenting file", zap.String("path", path), zap.Error(err))
			}
		}
	},
}

func init() {
	augmentCmd.Flags().IntVarP(&augmentCount, "count", "n", 2, "Number of variants per file")
	augmentCmd.Flags().Int64Var(&augmentSeed, "seed", 0, "Seed for reproducible rewrites")
	augmentCmd.Flags().StringVarP(&augmentOutDir, "output", "o", "", "Directory for variant files (stdout when empty)")
}

func augmentFile(engine *stlin.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	variants, err := engine.Augment(string(data), augmentCount, augmentSeed)
	if err != nil {
		return err
	}

	if augmentOutDir == "" {
		for i, v := range variants {
			fmt.Printf("(* %s variant %d *)\n%s\n", filepath.Base(path), i+1, v)
		}
		return nil
	}

	if err := os.MkdirAll(augmentOutDir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, v := range variants {
		out := filepath.Join(augmentOutDir, fmt.Sprintf("%s_aug%d.st", base, i+1))
		if err := os.WriteFile(out, []byte(v), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
	}
	return nil
}
