package stlin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePump = `
PROGRAM Pump
VAR
    running : BOOL;
    pressure : REAL;
    setpoint : REAL := 5.0;
END_VAR
    IF pressure > setpoint THEN
        running := FALSE;
    ELSE
        running := TRUE;
    END_IF;
END_PROGRAM
`

func TestGetASTSuccess(t *testing.T) {
	result := GetAST(samplePump)
	assert.Equal(t, "success", result.Status)
	require.NotNil(t, result.AST)

	// the envelope serializes with the documented field names
	d, err := json.Marshal(result)
	require.NoError(t, err)
	text := string(d)
	assert.Contains(t, text, `"status":"success"`)
	assert.Contains(t, text, `"unit_type"`)
	assert.Contains(t, text, `"stmt_type"`)
}

func TestGetASTFailure(t *testing.T) {
	result := GetAST("PROGRAM broken\nx := ;\nEND_PROGRAM")
	assert.Equal(t, "error", result.Status)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.AST)
}

func TestEngineValidate(t *testing.T) {
	engine := NewFromConfig(DefaultConfig())

	ok, reason := engine.Validate(samplePump)
	assert.True(t, ok, reason)

	ok, reason = engine.Validate("PROGRAM P\nIF a THEN\nEND_PROGRAM")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestEngineAugment(t *testing.T) {
	engine := NewFromConfig(DefaultConfig())

	variants, err := engine.Augment(samplePump, 3, 42)
	require.NoError(t, err)
	require.NotEmpty(t, variants)

	seen := map[string]bool{}
	for _, v := range variants {
		// each variant parses and differs from the input and its siblings
		_, perr := Parse(v)
		require.NoError(t, perr, "variant not parsable:\n%s", v)
		assert.NotEqual(t, samplePump, v)
		assert.False(t, seen[v], "duplicate variant")
		seen[v] = true
	}

	// fixed inputs reproduce the same variants
	again, err := engine.Augment(samplePump, 3, 42)
	require.NoError(t, err)
	assert.Equal(t, variants, again)
}

func TestEngineAugmentParseError(t *testing.T) {
	engine := NewFromConfig(DefaultConfig())
	_, err := engine.Augment("not a program", 2, 1)
	assert.Error(t, err)
}

func TestEngineSlice(t *testing.T) {
	engine := NewFromConfig(DefaultConfig())

	code := `
PROGRAM P
VAR
    X, Y, Z : INT;
END_VAR
    X := 1;
    Y := X + 1;
    Z := 99;
END_PROGRAM
`
	sliced, err := engine.Slice(code, []string{"Y"})
	require.NoError(t, err)
	assert.Contains(t, sliced, "X := 1;")
	assert.Contains(t, sliced, "Y := (X + 1);")
	assert.NotContains(t, sliced, "Z := 99;")
	// declarations survive untouched
	assert.Contains(t, sliced, "X, Y, Z")
}

func TestLoadConfigDefaults(t *testing.T) {
	engine, err := New("")
	require.NoError(t, err)
	ok, _ := engine.Validate(samplePump)
	assert.True(t, ok)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stlin.yaml")
	content := []byte("name: custom\naugment:\n  rename_prob: 0.9\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	config, err := parseConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", config.Name)
	assert.InDelta(t, 0.9, config.Augment.RenameProb, 1e-9)
	// unset sections keep their defaults
	assert.Equal(t, "iec2c", config.Compiler.Path)
}

func TestProcessPathDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.st"), []byte(samplePump), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.st"),
		[]byte("PROGRAM P\nIF a THEN\nEND_PROGRAM"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

	engine := NewFromConfig(DefaultConfig())
	results, err := ProcessPath(context.Background(), nil, engine, dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byPath := map[string]FileResult{}
	for _, r := range results {
		byPath[filepath.Base(r.Path)] = r
	}
	assert.True(t, byPath["good.st"].OK)
	assert.False(t, byPath["bad.st"].OK)
}

func TestProcessPathSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.st")
	require.NoError(t, os.WriteFile(path, []byte(samplePump), 0o644))

	engine := NewFromConfig(DefaultConfig())
	results, err := ProcessPath(context.Background(), nil, engine, path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
}

func TestProcessPathWalkError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not bind for root")
	}
	dir := t.TempDir()
	sub := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.st"), []byte(samplePump), 0o644))
	require.NoError(t, os.Chmod(sub, 0o000))
	t.Cleanup(func() { os.Chmod(sub, 0o755) })

	engine := NewFromConfig(DefaultConfig())
	_, err := ProcessPath(context.Background(), nil, engine, dir)
	assert.Error(t, err)
}
