package backlinks

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalorg/katalorg/internal/collection"
	"github.com/katalorg/katalorg/internal/config"
	"github.com/katalorg/katalorg/internal/parser"
	"github.com/katalorg/katalorg/internal/state"
)

func newTestState(t *testing.T, vaultDir string) *state.State {
	t.Helper()

	p, err := parser.New(parser.Config{})
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	return &state.State{
		Config: &config.Config{VaultDir: vaultDir, Extension: ".md"},
		Parser: p,
	}
}

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func runBacklinks(t *testing.T, s *state.State, args []string, opts options) (string, error) {
	t.Helper()

	cmd := NewCmdBacklinks(s)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	err := run(cmd, args, s, opts)
	return buf.String(), err
}

func TestRunSynchronizesVault(t *testing.T) {
	dir := writeVault(t, map[string]string{
		"A.md": "# Title A\n\n20210101010101\n\nSee [[20210202020202]].\n",
		"B.md": "# Title B\n\n20210202020202\n",
	})
	s := newTestState(t, dir)

	out, err := runBacklinks(t, s, nil, options{extension: ".md", orphans: true})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	for _, want := range []string{
		"# Katalorg Report",
		"Notes found: 2",
		"Updated backlinks in 1 files",
		"## Orphans",
		"- [[20210101010101]] Title A",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}

	bContent, err := os.ReadFile(filepath.Join(dir, "B.md"))
	if err != nil {
		t.Fatalf("failed to read B.md: %v", err)
	}
	if !strings.Contains(string(bContent), "- [[20210101010101]] Title A") {
		t.Fatalf("B.md missing backlink entry: %q", bContent)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := writeVault(t, map[string]string{
		"A.md": "# Title A\n\n20210101010101\n\nSee [[20210202020202]].\n",
		"B.md": "# Title B\n\n20210202020202\n\nBack at [[20210101010101]].\n",
	})
	s := newTestState(t, dir)

	if _, err := runBacklinks(t, s, nil, options{extension: ".md"}); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}

	out, err := runBacklinks(t, s, nil, options{extension: ".md"})
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if !strings.Contains(out, "Updated backlinks in 0 files") {
		t.Fatalf("second run was not a no-op:\n%s", out)
	}
}

func TestRunFailsForMissingPath(t *testing.T) {
	s := newTestState(t, "")

	_, err := runBacklinks(t, s, []string{filepath.Join(t.TempDir(), "nope")}, options{extension: ".md"})
	if err == nil {
		t.Fatalf("expected error for missing path")
	}
	if !strings.Contains(err.Error(), "no such directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunAbortsOnDuplicateIdentifiers(t *testing.T) {
	dir := writeVault(t, map[string]string{
		"a.md": "20210101010101\n# First\n\n[[20210101010101]]\n",
		"b.md": "20210101010101\n# Second\n",
	})
	s := newTestState(t, dir)

	_, err := runBacklinks(t, s, nil, options{extension: ".md"})
	if err == nil {
		t.Fatalf("expected duplicate identifier error")
	}

	var dup *collection.DuplicateIdentifierError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIdentifierError, got %v", err)
	}

	// The run aborted before writing anything.
	for _, name := range []string{"a.md", "b.md"} {
		content, readErr := os.ReadFile(filepath.Join(dir, name))
		if readErr != nil {
			t.Fatalf("failed to read %s: %v", name, readErr)
		}
		if strings.Contains(string(content), "Links to this note") {
			t.Fatalf("%s was modified despite fatal import error", name)
		}
	}
}
