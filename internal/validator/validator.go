// Package validator implements the layered validation funnel for ST source:
// a fast textual scan, an optional external-compiler check, and an
// AST-grounded semantic check for undeclared variables. Each stage returns a
// verdict with a reason and can also be called on its own.
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/oscat-labs/stlin/internal/analysis/dataflow"
	"github.com/oscat-labs/stlin/internal/analysis/lattice"
	"github.com/oscat-labs/stlin/internal/parser"
	"github.com/oscat-labs/stlin/internal/unparser"
)

// SemanticError reports variables referenced in a unit body without a
// declaration.
type SemanticError struct {
	Unit  string
	Names []string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("unit %s references undeclared variables: %s",
		e.Unit, strings.Join(e.Names, ", "))
}

var (
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)\(\*.*?\*\)|/\*.*?\*/`)
	dynamicArrayRe = regexp.MustCompile(`(?i)ARRAY\s*\[\s*\*`)
)

// pairKeywords maps each opening keyword to its required terminator. The
// VAR family is handled separately because several storage keywords share
// one END_VAR terminator.
var pairKeywords = map[string]string{
	"IF":             "END_IF",
	"CASE":           "END_CASE",
	"FOR":            "END_FOR",
	"WHILE":          "END_WHILE",
	"REPEAT":         "UNTIL",
	"PROGRAM":        "END_PROGRAM",
	"FUNCTION_BLOCK": "END_FUNCTION_BLOCK",
	"FUNCTION":       "END_FUNCTION",
}

var varKeywords = []string{
	"VAR", "VAR_INPUT", "VAR_OUTPUT", "VAR_IN_OUT",
	"VAR_TEMP", "VAR_GLOBAL", "VAR_EXTERNAL",
}

// CheckText is the fast stage: regex and counting checks only, no parse.
func CheckText(code string) (bool, string) {
	clean := stripComments(code)

	if hasBareAssign(clean) {
		return false, "Assignment Error: found '=' instead of ':=' for assignment"
	}

	upper := strings.ToUpper(clean)
	for _, start := range sortedKeys(pairKeywords) {
		end := pairKeywords[start]
		sc := countWord(upper, start)
		ec := countWord(upper, end)
		if sc != ec {
			return false, fmt.Sprintf("Structural imbalance: %s(%d) vs %s(%d)", start, sc, end, ec)
		}
	}

	varCount := 0
	for _, kw := range varKeywords {
		varCount += countWord(upper, kw)
	}
	endVarCount := countWord(upper, "END_VAR")
	if varCount != endVarCount {
		return false, fmt.Sprintf("Structural imbalance: VAR blocks(%d) vs END_VAR(%d)", varCount, endVarCount)
	}

	if dynamicArrayRe.MatchString(clean) {
		return false, "Unsupported Syntax: dynamic array bounds are not allowed"
	}

	return true, "Passed"
}

// CheckSemantics is the AST stage: every name referenced by the body must be
// declared in a var block. The unit's own name counts as declared so
// function-result assignment stays legal.
func CheckSemantics(code string) (bool, string) {
	file, err := parser.Parse(code)
	if err != nil {
		return false, "Syntax Error: " + err.Error()
	}

	for _, unit := range file.Units {
		declared := dataflow.NewVarSet(unit.Name)
		for _, vb := range unit.VarBlocks {
			for _, d := range vb.Decls {
				declared[d.Name] = true
			}
		}

		referenced := dataflow.ReadVars(unit.Body)
		for v := range dataflow.WriteVars(unit.Body) {
			referenced[v] = true
		}

		var undeclared []string
		for v := range referenced {
			if !declared.Contains(v) {
				undeclared = append(undeclared, v)
			}
		}
		if len(undeclared) > 0 {
			sort.Strings(undeclared)
			serr := &SemanticError{Unit: unit.Name, Names: undeclared}
			return false, "Semantic Error: " + serr.Error()
		}

		if divs := lattice.CheckDivisions(unit.Body); len(divs) > 0 {
			return false, fmt.Sprintf("Division Error: unit %s divides by zero: %s",
				unit.Name, unparser.ExprString(divs[0]))
		}
	}
	return true, "Passed"
}

// Funnel runs the stages in order, short-circuiting on the first failure.
// Compiler is optional; when nil the external stage is skipped.
type Funnel struct {
	Compiler *CompilerValidator
}

// Validate runs fast scan, then the external compiler when configured, then
// the semantic check.
func (f *Funnel) Validate(code string) (bool, string) {
	if ok, reason := CheckText(code); !ok {
		return false, reason
	}
	if f != nil && f.Compiler != nil {
		if ok, reason := f.Compiler.Validate(code); !ok {
			return false, reason
		}
	}
	return CheckSemantics(code)
}

func stripComments(code string) string {
	code = blockCommentRe.ReplaceAllString(code, "")
	return lineCommentRe.ReplaceAllString(code, "")
}

var bareAssignRe = regexp.MustCompile(`^([A-Za-z_]\w*)\s*==?[^=]`)

// hasBareAssign reports whether any statement assigns with '=' instead of
// ':='. Statements are split on ';' so comparison operators inside IF/WHILE
// conditions are not flagged.
func hasBareAssign(code string) bool {
	segments := strings.FieldsFunc(code, func(r rune) bool {
		return r == ';' || r == '\n'
	})
	for _, stmt := range segments {
		stmt = strings.TrimSpace(stmt)
		m := bareAssignRe.FindStringSubmatch(stmt)
		if m == nil {
			continue
		}
		if parser.IsKeyword(m[1]) {
			continue
		}
		return true
	}
	return false
}

// countWord counts whole-word occurrences of word in upper-cased text.
// Word-boundary checks keep END_IF from counting as IF and VAR_INPUT from
// counting as VAR.
func countWord(upper, word string) int {
	count := 0
	for start := 0; ; {
		i := strings.Index(upper[start:], word)
		if i < 0 {
			return count
		}
		i += start
		before := byte(0)
		if i > 0 {
			before = upper[i-1]
		}
		after := byte(0)
		if i+len(word) < len(upper) {
			after = upper[i+len(word)]
		}
		if !isWordByte(before) && !isWordByte(after) {
			count++
		}
		start = i + len(word)
	}
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
