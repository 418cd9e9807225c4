package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oscat-labs/stlin"
)

var astOutPath string

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Parse an ST file and print its AST as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide exactly one file path")
			os.Exit(1)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Fatal("Failed to read file", zap.String("file", args[0]), zap.Error(err))
		}

		result := stlin.GetAST(string(data))
		d, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("Failed to marshal AST", zap.Error(err))
		}

		if astOutPath == "" {
			fmt.Println(string(d))
			return
		}
		if err := os.WriteFile(astOutPath, d, 0o644); err != nil {
			logger.Fatal("Failed to write output file", zap.Error(err))
		}
	},
}

func init() {
	astCmd.Flags().StringVarP(&astOutPath, "output", "o", "", "Output path for the JSON document")
}
