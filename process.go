package stlin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// FileResult is the validation verdict for one file.
type FileResult struct {
	Path   string
	OK     bool
	Reason string
}

// ProcessFiles validates every .st file under the given paths and returns the
// per-file verdicts.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine *Engine,
	paths []string,
) ([]FileResult, error) {
	var all []FileResult
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

// ProcessPath validates a single file, or every .st file under a directory
// with a bounded worker pool.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine *Engine,
	path string,
) ([]FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		return []FileResult{validateFile(engine, path)}, nil
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && hasDesiredExtension(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	// limit the number of workers
	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)
	resultChan := make(chan FileResult, len(files))

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			sem <- struct{}{}
			go func(fp string) {
				defer func() { <-sem }()
				res := validateFile(engine, fp)
				if !res.OK && logger != nil {
					logger.Debug("validation failed",
						zap.String("file", fp), zap.String("reason", res.Reason))
				}
				resultChan <- res
				bar.Add(1)
			}(filePath)
		}
	}

	results := make([]FileResult, 0, len(files))
	for range files {
		results = append(results, <-resultChan)
	}
	fmt.Println()
	return results, nil
}

func validateFile(engine *Engine, path string) FileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, OK: false, Reason: fmt.Sprintf("read error: %v", err)}
	}
	ok, reason := engine.Validate(string(data))
	return FileResult{Path: path, OK: ok, Reason: reason}
}

var desiredExtensions = map[string]bool{
	".st":  true,
	".pou": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}
