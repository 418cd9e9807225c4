package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oscat-labs/stlin"
	"github.com/oscat-labs/stlin/internal/analysis/cfg"
	"github.com/oscat-labs/stlin/internal/analysis/ir"
)

// variable for flags
var (
	unitName string
	output   string
)

var cfgCmd = &cobra.Command{
	Use:   "cfg [file]",
	Short: "Run control flow graph analysis",
	Long: `Outputs the Control Flow Graph (CFG) of the specified unit in GraphViz dot format.
Example) stlin cfg --unit Conveyor plant.st`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide exactly one file path")
			os.Exit(1)
		}
		runCFGAnalysis(logger, args[0], unitName, output)
	},
}

func init() {
	cfgCmd.Flags().StringVar(&unitName, "unit", "", "Unit name for CFG analysis (first unit when empty)")
	cfgCmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the GraphViz file")
}

func runCFGAnalysis(logger *zap.Logger, path, unitName, output string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("Failed to read file", zap.String("path", path), zap.Error(err))
	}

	file, err := stlin.Parse(string(data))
	if err != nil {
		logger.Fatal("Failed to parse file", zap.String("path", path), zap.Error(err))
	}

	for _, unit := range file.Units {
		if unitName != "" && unit.Name != unitName {
			continue
		}

		instrs := ir.NewBuilder().Lower(unit.Body)
		graph, err := cfg.Build(instrs)
		if err != nil {
			logger.Fatal("Failed to build CFG", zap.String("unit", unit.Name), zap.Error(err))
		}

		var buf strings.Builder
		cfg.BuildBlocks(graph).PrintDot(&buf, nil)

		if output != "" {
			if err := os.WriteFile(output, []byte(buf.String()), 0o644); err != nil {
				logger.Fatal("Failed to write GraphViz file", zap.Error(err))
			}
			fmt.Printf("GraphViz file created: %s\n", output)
		} else {
			fmt.Printf("CFG for unit %s in file %s:\n%s\n", unit.Name, path, buf.String())
		}
		return
	}

	fmt.Printf("Unit not found: %s\n", unitName)
}
