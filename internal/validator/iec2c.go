package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CompilerToolKind classifies external compiler failures.
type CompilerToolKind int

const (
	ToolTimeout CompilerToolKind = iota
	ToolNotFound
	ToolExitError
)

// CompilerToolError reports a failed external compiler invocation.
type CompilerToolError struct {
	Kind   CompilerToolKind
	Output string
}

func (e *CompilerToolError) Error() string {
	switch e.Kind {
	case ToolTimeout:
		return "external compiler timed out"
	case ToolNotFound:
		return "external compiler not found in PATH"
	default:
		return "external compiler reported errors: " + e.Output
	}
}

const defaultCompileTimeout = 10 * time.Second

// CompilerValidator invokes an IEC 61131-3 compiler (matiec's iec2c) on a
// temp file and treats a clean exit as the verdict. The temp file and output
// directory are removed on every path.
type CompilerValidator struct {
	Path    string // iec2c binary, e.g. "iec2c"
	LibPath string // optional standard library include path
	Timeout time.Duration
}

// Validate compiles code and reports the result. Timeout, missing binary,
// and nonzero exit are reported as distinct reasons.
func (v *CompilerValidator) Validate(code string) (bool, string) {
	if strings.TrimSpace(code) == "" {
		return false, "Compiler Error: empty code"
	}

	timeout := v.Timeout
	if timeout <= 0 {
		timeout = defaultCompileTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	src, err := os.CreateTemp("", "stlin_*.st")
	if err != nil {
		return false, fmt.Sprintf("Compiler Error: creating temp file: %v", err)
	}
	defer os.Remove(src.Name())

	if _, err := src.WriteString(code); err != nil {
		src.Close()
		return false, fmt.Sprintf("Compiler Error: writing temp file: %v", err)
	}
	if err := src.Close(); err != nil {
		return false, fmt.Sprintf("Compiler Error: closing temp file: %v", err)
	}

	outDir, err := os.MkdirTemp("", "stlin_out_")
	if err != nil {
		return false, fmt.Sprintf("Compiler Error: creating output dir: %v", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{"-T", outDir}
	if v.LibPath != "" {
		args = append(args, "-I", v.LibPath)
	}
	args = append(args, src.Name())

	cmd := exec.CommandContext(ctx, v.Path, args...)
	out, err := cmd.CombinedOutput()

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		terr := &CompilerToolError{Kind: ToolTimeout}
		return false, "Compiler Error: " + terr.Error()
	case errors.Is(err, exec.ErrNotFound):
		terr := &CompilerToolError{Kind: ToolNotFound}
		return false, "Compiler Error: " + terr.Error()
	case err != nil:
		// Scrub the temp path so the reason is stable across runs.
		msg := strings.ReplaceAll(strings.TrimSpace(string(out)), src.Name(), "source.st")
		terr := &CompilerToolError{Kind: ToolExitError, Output: msg}
		return false, "Compiler Error: " + terr.Error()
	}
	return true, "Compiled successfully"
}
