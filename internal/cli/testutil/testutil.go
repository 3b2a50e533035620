// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/gapview/internal/cli/output"
)

// SampleCSV is a small tidy Gapminder extract. Europe has France, Germany
// and Spain for pop, France alone for gdpPercap; Asia has Japan.
const SampleCSV = `country,continent,metric,year,value
France,Europe,pop,1952,42459667
France,Europe,pop,2000,59925035
France,Europe,pop,2007,61083916
Germany,Europe,pop,1952,69145952
Germany,Europe,pop,2000,82350671
Germany,Europe,pop,2007,82400996
Spain,Europe,pop,1952,28549870
Spain,Europe,pop,2007,40448191
France,Europe,gdpPercap,1952,7029.809327
France,Europe,gdpPercap,2007,30470.0167
Japan,Asia,pop,1952,86459025
Japan,Asia,pop,2007,127467972
Japan,Asia,lifeExp,1952,63.03
Japan,Asia,lifeExp,2007,82.603
`

// WriteSampleCSV writes SampleCSV to dir/name and returns its path.
func WriteSampleCSV(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(SampleCSV), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// SetupTestProject creates a temporary project with a gapview.yaml pointing
// at Data/gapminder_tidy.csv.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	WriteSampleCSV(t, tmpDir, filepath.Join("Data", "gapminder_tidy.csv"))

	cfg := `dataset:
  location: Data/gapminder_tidy.csv
selection:
  continent: Europe
  metric: pop
`
	if err := os.WriteFile(filepath.Join(tmpDir, "gapview.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to create gapview.yaml: %v", err)
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode without a TTY,
// so no styling is applied.
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, false)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation: balanced code
// fences and no empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
