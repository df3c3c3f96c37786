package sift_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/sift/internal/cli"
	"github.com/sokinpui/sift/internal/model"
	"github.com/sokinpui/sift/sift"
)

const sourceVariant = `#include <stdio.h>
int main() {
  int number;
  scanf("%d", &number);
  printf("Factorial of %d is %llu\n", number, factorial(number));
  return 0;
}
// THIS ONE SHOULD STAY
unsigned long long factorial(int n) {
  if (n == 0) {
    // THIS ONE SHOULD BE FILTERED!
    return 1;
  } else {
    return n * factorial(n - 1);
  }
}
`

const targetVariant = `#include <stdio.h>
int main() {
  int number;
  scanf("%d", &number);
  printf("Factorial of %d is %llu\n", number, factorial(number));
  return 0;
}
`

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func decisionFor(t *testing.T, decisions []model.Decision, variant model.Variant, index int) model.Decision {
	t.Helper()
	for _, d := range decisions {
		if d.Variant == variant && d.LineIndex == index {
			return d
		}
	}
	t.Fatalf("no decision for %s line %d", variant, index)
	return model.Decision{}
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	srcPath := writeFile(t, dir, "version-1/main.c", sourceVariant)
	tgtPath := writeFile(t, dir, "version-0/main.c", targetVariant)

	app, err := sift.New(&cli.Config{
		SourcePath: srcPath,
		TargetPath: tgtPath,
		Format:     "json",
	})
	require.NoError(t, err)

	results, err := app.Execute()
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]

	// Every line of both variants gets exactly one decision.
	srcLines := strings.Count(sourceVariant, "\n")
	tgtLines := strings.Count(targetVariant, "\n")
	assert.Len(t, res.Decisions, srcLines+tgtLines)

	// The pinned function signature survives its deletion.
	sig := decisionFor(t, res.Decisions, model.VariantSource, 8)
	assert.Equal(t, "keep", sig.Verdict)
	assert.Contains(t, sig.Provenance, "must-stay")

	// The annotated base case is filtered, not removed.
	ret := decisionFor(t, res.Decisions, model.VariantSource, 11)
	assert.Equal(t, "filtered", ret.Verdict)

	// Unchanged code stays kept on both sides.
	assert.Equal(t, "keep", decisionFor(t, res.Decisions, model.VariantSource, 0).Verdict)
	assert.Equal(t, "keep", decisionFor(t, res.Decisions, model.VariantTarget, 0).Verdict)
}

func TestCompareDirectories(t *testing.T) {
	srcDir := t.TempDir()
	tgtDir := t.TempDir()
	writeFile(t, srcDir, "main.c", sourceVariant)
	writeFile(t, tgtDir, "main.c", targetVariant)
	writeFile(t, tgtDir, "extra.c", "int extra;\n")

	app, err := sift.New(&cli.Config{
		SourcePath: srcDir,
		TargetPath: tgtDir,
		Format:     "text",
		Jobs:       2,
	})
	require.NoError(t, err)

	results, err := app.Execute()
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Pairs come back sorted by relative path: extra.c then main.c.
	extra := results[0]
	require.Len(t, extra.Decisions, 1)
	assert.Equal(t, model.VariantTarget, extra.Decisions[0].Variant)
	assert.Equal(t, "keep", extra.Decisions[0].Verdict, "target-only file is all inserts")
}

func TestCompareLibraryInterface(t *testing.T) {
	decisions, warnings, err := sift.Compare(sourceVariant, targetVariant, sift.Config{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	srcLines := strings.Count(sourceVariant, "\n")
	tgtLines := strings.Count(targetVariant, "\n")
	assert.Len(t, decisions, srcLines+tgtLines)
}

func TestCompareMalformedInput(t *testing.T) {
	dir := t.TempDir()
	srcPath := writeFile(t, dir, "bad.c", "int x;\n/* never closed\n")
	tgtPath := writeFile(t, dir, "ok.c", "int x;\n")

	app, err := sift.New(&cli.Config{
		SourcePath: srcPath,
		TargetPath: tgtPath,
		Format:     "text",
	})
	require.NoError(t, err)

	_, err = app.Execute()
	var malformed *model.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.File, "bad.c")
}

func TestCompareTimeout(t *testing.T) {
	var a, b strings.Builder
	for i := 0; i < 3000; i++ {
		a.WriteString(strings.Repeat("a", 1+i%40) + ";\n")
		b.WriteString(strings.Repeat("b", 1+i%40) + ";\n")
	}
	dir := t.TempDir()
	srcPath := writeFile(t, dir, "a.c", a.String())
	tgtPath := writeFile(t, dir, "b.c", b.String())

	app, err := sift.New(&cli.Config{
		SourcePath: srcPath,
		TargetPath: tgtPath,
		Format:     "text",
		TimeoutMs:  1,
	})
	require.NoError(t, err)

	_, err = app.Execute()
	var timeout *model.TimeoutError
	require.True(t, errors.As(err, &timeout))
}

func TestCompareMissingInput(t *testing.T) {
	app, err := sift.New(&cli.Config{
		SourcePath: filepath.Join(t.TempDir(), "absent.c"),
		TargetPath: filepath.Join(t.TempDir(), "absent.c"),
		Format:     "text",
	})
	require.NoError(t, err)

	_, err = app.Execute()
	assert.Error(t, err)
}

func TestDirectives(t *testing.T) {
	dirs, err := sift.Directives(sourceVariant, sift.Config{})
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.Contains(t, dirs[0], "must-stay")
	assert.Contains(t, dirs[1], "must-filter")
}

func TestCustomRulesFile(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeFile(t, dir, "rules.yaml",
		"markers:\n  - pattern: \"pin\"\n    kind: must-stay\n    mode: word\n")

	srcPath := writeFile(t, dir, "a.c", "// pin\nint pinned;\n")
	tgtPath := writeFile(t, dir, "b.c", "// pin\n")

	app, err := sift.New(&cli.Config{
		SourcePath: srcPath,
		TargetPath: tgtPath,
		Format:     "text",
		RulesPath:  rulesPath,
	})
	require.NoError(t, err)

	results, err := app.Execute()
	require.NoError(t, err)
	require.Len(t, results, 1)

	d := decisionFor(t, results[0].Decisions, model.VariantSource, 1)
	assert.Equal(t, "keep", d.Verdict, "custom marker pins the deleted line")
}
