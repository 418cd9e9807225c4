package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscat-labs/stlin/internal/ast"
	"github.com/oscat-labs/stlin/internal/parser"
)

func mustBody(t *testing.T, body string) []ast.Stmt {
	t.Helper()
	file, err := parser.Parse("PROGRAM P\n" + body + "\nEND_PROGRAM")
	require.NoError(t, err)
	return file.Units[0].Body
}

func TestJoin(t *testing.T) {
	tests := []struct {
		a, b, expected Zeroness
	}{
		{Bottom, Zero, Zero},
		{Zero, Zero, Zero},
		{Zero, NonZero, MaybeZero},
		{NonZero, NonZero, NonZero},
		{MaybeZero, NonZero, MaybeZero},
		{Top, Zero, Top},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.a.Join(tt.b), "%v join %v", tt.a, tt.b)
		assert.Equal(t, tt.expected, tt.b.Join(tt.a), "%v join %v", tt.b, tt.a)
	}
}

func TestCheckDivisions(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		findings int
	}{
		{"literal zero divisor", "y := x / 0;", 1},
		{"nonzero divisor", "y := x / 2;", 0},
		{"variable pinned to zero", "d := 0;\ny := x / d;", 1},
		{"mod by zero", "d := 0;\ny := x MOD d;", 1},
		{"reassigned before use", "d := 0;\nd := 2;\ny := x / d;", 0},
		{"zero times anything", "d := 0 * k;\ny := x / d;", 1},
		{"typed literal zero", "y := x / INT#0;", 1},
		{"unknown variable", "y := x / d;", 0},
		{"two findings", "a := x / 0;\nb := y MOD 0;", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := CheckDivisions(mustBody(t, tt.body))
			assert.Len(t, findings, tt.findings)
		})
	}
}

func TestCheckDivisionsBranchJoin(t *testing.T) {
	// one branch repairs the divisor, so the division is only maybe-zero
	body := mustBody(t, `
d := 0;
IF cond THEN
    d := 2;
END_IF;
y := x / d;`)
	assert.Empty(t, CheckDivisions(body))

	// both branches leave it zero
	body = mustBody(t, `
d := 0;
IF cond THEN
    d := 0;
END_IF;
y := x / d;`)
	assert.Len(t, CheckDivisions(body), 1)
}

func TestCheckDivisionsLoopHavoc(t *testing.T) {
	// the loop writes the divisor, so its zero-ness is unknown afterwards
	body := mustBody(t, `
d := 0;
WHILE run DO
    d := d + 1;
END_WHILE;
y := x / d;`)
	assert.Empty(t, CheckDivisions(body))
}

func TestCheckDivisionsInsideCondition(t *testing.T) {
	body := mustBody(t, `
d := 0;
IF x / d > 1 THEN
    y := 1;
END_IF;`)
	assert.Len(t, CheckDivisions(body), 1)
}
