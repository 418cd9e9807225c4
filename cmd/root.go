package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "stlin [paths...]",
	Short:            "stlin - analysis and transformation toolchain for IEC 61131-3 Structured Text",
	TraverseChildren: true, // Prioritize subcommands
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'stlin' is entered
			_ = cmd.Help()
			return
		}
		// Format: stlin [path1 path2 ...] => behaves like the validate subcommand
		validateCmd.Run(validateCmd, args)
	},
}

func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	logger, _ = zap.NewProduction()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Set a timeout for the run")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(augmentCmd)
	rootCmd.AddCommand(sliceCmd)
	rootCmd.AddCommand(cfgCmd)
}
