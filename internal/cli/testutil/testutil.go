// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leaperd/internal/cli/output"
)

// ShopCatalog is a small catalog with two related tables, a view and a
// hidden system schema.
const ShopCatalog = `databases:
  - name: shop
    schemas:
      - name: main
        tables:
          - name: customers
            columns:
              - {name: id, type: INTEGER, primary_key: true}
              - {name: email, type: VARCHAR, nullable: true}
          - name: orders
            columns:
              - {name: id, type: INTEGER, primary_key: true}
              - {name: customer_id, type: INTEGER}
            foreign_keys:
              - name: fk_orders_customer
                references: customers
                columns: [customer_id]
                referenced_columns: [id]
          - name: order_summary
            type: view
            columns:
              - {name: customer_id, type: INTEGER}
              - {name: total, type: DECIMAL}
      - name: information_schema
        hidden: true
        tables:
          - name: tables
            type: system_table
`

// TestProject holds the paths of a temporary leaperd project.
type TestProject struct {
	Dir         string
	CatalogFile string
	StatePath   string
}

// SetupTestProject creates a temporary project with a catalog file and
// an unused state database path.
func SetupTestProject(t *testing.T) *TestProject {
	t.Helper()

	tmpDir := t.TempDir()
	p := &TestProject{
		Dir:         tmpDir,
		CatalogFile: filepath.Join(tmpDir, "catalog.yaml"),
		StatePath:   filepath.Join(tmpDir, ".leaperd", "state.db"),
	}

	if err := os.WriteFile(p.CatalogFile, []byte(ShopCatalog), 0o600); err != nil {
		t.Fatalf("failed to create catalog.yaml: %v", err)
	}

	return p
}

// Args returns the global flags pointing commands at the project, followed by extra.
func (p *TestProject) Args(extra ...string) []string {
	args := []string{"--catalog-file", p.CatalogFile, "--state", p.StatePath}
	return append(args, extra...)
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

// NewTestRendererAuto creates a new test renderer with auto mode detection.
// In tests, non-TTY defaults to markdown output.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
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

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// AssertOutputMode checks that the renderer output matches expected mode characteristics.
func AssertOutputMode(t *testing.T, tr *TestRenderer, expectedMode output.OutputMode) {
	t.Helper()

	combinedOutput := tr.Output() + tr.ErrorOutput()

	switch expectedMode {
	case output.ModeMarkdown:
		AssertNoANSI(t, combinedOutput)
		// Markdown mode should not contain ANSI codes
	case output.ModeText:
		// Text mode may contain ANSI codes if TTY
		// No specific assertion needed
	case output.ModeJSON:
		AssertNoANSI(t, combinedOutput)
		// JSON mode should not contain ANSI codes
	}
}
