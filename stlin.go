// Package stlin is the top-level facade for the ST source toolchain: parsing,
// validation, augmentation, and backward slicing of IEC 61131-3 Structured
// Text. Commands and library users go through an Engine built from a Config.
package stlin

import (
	"github.com/oscat-labs/stlin/internal/analysis/dataflow"
	"github.com/oscat-labs/stlin/internal/ast"
	"github.com/oscat-labs/stlin/internal/parser"
	"github.com/oscat-labs/stlin/internal/rewriter"
	"github.com/oscat-labs/stlin/internal/slicer"
	"github.com/oscat-labs/stlin/internal/unparser"
	"github.com/oscat-labs/stlin/internal/validator"
)

// augmentAttemptFactor bounds how many rewrite attempts are made per
// requested variant before giving up on distinct output.
const augmentAttemptFactor = 4

// Engine bundles the configuration and the validation funnel.
type Engine struct {
	config Config
	funnel *validator.Funnel
}

// New builds an Engine from a configuration file. An empty path selects the
// defaults, which leave the external compiler stage disabled.
func New(configurationPath string) (*Engine, error) {
	config := DefaultConfig()
	if configurationPath != "" {
		var err error
		config, err = parseConfigurationFile(configurationPath)
		if err != nil {
			return nil, err
		}
	}
	return NewFromConfig(config), nil
}

// NewFromConfig builds an Engine without touching the filesystem.
func NewFromConfig(config Config) *Engine {
	funnel := &validator.Funnel{}
	if config.Compiler.Enabled {
		funnel.Compiler = &validator.CompilerValidator{
			Path:    config.Compiler.Path,
			LibPath: config.Compiler.LibPath,
			Timeout: config.Compiler.Timeout,
		}
	}
	return &Engine{config: config, funnel: funnel}
}

// Parse parses ST source into its canonical AST.
func Parse(code string) (*ast.File, error) {
	return parser.Parse(code)
}

// GetAST parses ST source and wraps the outcome in the status/message/ast
// envelope used by external callers. Parse failures are reported in the
// envelope, never as a Go error.
func GetAST(code string) ast.Result {
	file, err := parser.Parse(code)
	if err != nil {
		return ast.Failure(err.Error())
	}
	return ast.Success(file)
}

// Validate runs the staged funnel: fast textual checks, the external compiler
// when enabled, then the semantic check.
func (e *Engine) Validate(code string) (bool, string) {
	return e.funnel.Validate(code)
}

// Augment parses code once and produces up to n rewritten variants. Each
// attempt uses a derived seed so a fixed (code, n, seed) triple always yields
// the same variants. Rewrites that unparse identically to the input or to an
// earlier variant are discarded.
func (e *Engine) Augment(code string, n int, seed int64) ([]string, error) {
	file, err := parser.Parse(code)
	if err != nil {
		return nil, err
	}

	opts := e.rewriteOptions()
	baseline := unparser.Unparse(file)

	seen := map[string]bool{baseline: true, code: true}
	variants := make([]string, 0, n)
	for attempt := 0; len(variants) < n && attempt < n*augmentAttemptFactor; attempt++ {
		rw := rewriter.New(seed+int64(attempt), opts)
		out := unparser.Unparse(rw.RewriteFile(file))
		if seen[out] {
			continue
		}
		seen[out] = true
		variants = append(variants, out)
	}
	return variants, nil
}

// Slice returns the source of the backward slice of code with respect to the
// seed variables. Declarations are kept as-is; only unit bodies shrink.
func (e *Engine) Slice(code string, seeds []string) (string, error) {
	file, err := parser.Parse(code)
	if err != nil {
		return "", err
	}

	sliced := &ast.File{}
	for _, unit := range file.Units {
		cu := ast.CloneUnit(unit)
		cu.Body = slicer.BackwardSlice(cu.Body, dataflow.NewVarSet(seeds...))
		sliced.Units = append(sliced.Units, cu)
	}
	return unparser.Unparse(sliced), nil
}

func (e *Engine) rewriteOptions() rewriter.Options {
	opts := rewriter.DefaultOptions()
	a := e.config.Augment
	if a.SwapProb > 0 {
		opts.SwapProb = a.SwapProb
	}
	if a.InvertProb > 0 {
		opts.InvertProb = a.InvertProb
	}
	if a.RenameProb > 0 {
		opts.RenameProb = a.RenameProb
	}
	if a.ReorderProb > 0 {
		opts.ReorderProb = a.ReorderProb
	}
	return opts
}
