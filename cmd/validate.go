package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oscat-labs/stlin"
)

var watchMode bool

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Run the validation funnel over ST files",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := stlin.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		if watchMode {
			runWatch(engine, args)
			return
		}

		runValidate(ctx, engine, args)
	},
}

func init() {
	validateCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-validate files as they change")
}

func runValidate(ctx context.Context, engine *stlin.Engine, paths []string) {
	results, err := stlin.ProcessFiles(ctx, logger, engine, paths)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	failures := 0
	for _, res := range results {
		if res.OK {
			fmt.Printf("%s %s\n", pass("PASS"), res.Path)
		} else {
			failures++
			fmt.Printf("%s %s: %s\n", fail("FAIL"), res.Path, res.Reason)
		}
	}
	fmt.Printf("%d files, %d failed\n", len(results), failures)

	if failures > 0 {
		os.Exit(1)
	}
}

func runWatch(engine *stlin.Engine, dirs []string) {
	watcher, err := stlin.NewWatcher(engine, dirs)
	if err != nil {
		logger.Fatal("Failed to create watcher", zap.Error(err))
	}
	if err := watcher.Start(); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer watcher.Stop()

	fmt.Println("watching for changes, press Ctrl+C to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
