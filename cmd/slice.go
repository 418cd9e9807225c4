package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oscat-labs/stlin"
)

var (
	sliceVars    string
	sliceOutPath string
)

var sliceCmd = &cobra.Command{
	Use:   "slice [file]",
	Short: "Print the backward slice of an ST file for the given variables",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide exactly one file path")
			os.Exit(1)
		}
		if sliceVars == "" {
			fmt.Println("error: Please provide seed variables via --vars")
			os.Exit(1)
		}

		engine, err := stlin.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Fatal("Failed to read file", zap.String("file", args[0]), zap.Error(err))
		}

		var seeds []string
		for _, v := range strings.Split(sliceVars, ",") {
			if v = strings.TrimSpace(v); v != "" {
				seeds = append(seeds, v)
			}
		}

		sliced, err := engine.Slice(string(data), seeds)
		if err != nil {
			logger.Fatal("Failed to slice", zap.Error(err))
		}

		if sliceOutPath == "" {
			fmt.Println(sliced)
			return
		}
		if err := os.WriteFile(sliceOutPath, []byte(sliced), 0o644); err != nil {
			logger.Fatal("Failed to write output file", zap.Error(err))
		}
	},
}

func init() {
	sliceCmd.Flags().StringVar(&sliceVars, "vars", "", "Comma-separated seed variables for the slice")
	sliceCmd.Flags().StringVarP(&sliceOutPath, "output", "o", "", "Output path for the sliced source")
}
