package generate

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

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

func runGenerate(t *testing.T, s *state.State, opts options) (string, error) {
	t.Helper()

	cmd := NewCmdGenerate(s)
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	err := run(cmd, nil, s, opts)
	return buf.String(), err
}

func TestRunPrintsIDForDatePrefix(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("20210101010101\n"), 0o644); err != nil {
		t.Fatalf("failed to write note: %v", err)
	}
	s := newTestState(t, dir)

	out, err := runGenerate(t, s, options{date: "2021", extension: ".md"})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	id := strings.TrimSpace(out)
	if !regexp.MustCompile(`^20210101\d{6}$`).MatchString(id) {
		t.Fatalf("unexpected id shape: %q", id)
	}
	if id == "20210101010101" {
		t.Fatalf("suggested id collides with an existing note")
	}
}

func TestRunAcceptsHumanDates(t *testing.T) {
	s := newTestState(t, t.TempDir())

	out, err := runGenerate(t, s, options{date: "2021-03-15", extension: ".md"})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if !strings.HasPrefix(strings.TrimSpace(out), "20210315") {
		t.Fatalf("expected id for March 15th, got %q", out)
	}
}

func TestRunRejectsUnparseableDates(t *testing.T) {
	s := newTestState(t, t.TempDir())

	if _, err := runGenerate(t, s, options{date: "not a date", extension: ".md"}); err == nil {
		t.Fatalf("expected error for unparseable date")
	}
}

func TestRunDefaultsToNow(t *testing.T) {
	s := newTestState(t, t.TempDir())

	out, err := runGenerate(t, s, options{extension: ".md"})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	id := strings.TrimSpace(out)
	if !regexp.MustCompile(`^(?:19|20)\d{12}$`).MatchString(id) {
		t.Fatalf("unexpected id shape: %q", id)
	}
}
