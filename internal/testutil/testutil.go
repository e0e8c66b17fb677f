// Package testutil provides shared test helpers: a stub conversion engine,
// silent loggers, and tree/database fixtures.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/starford/raido/internal/manifest"
	"github.com/starford/raido/internal/storage"
)

var (
	headingRe = regexp.MustCompile(`(?m)^# `)
	htmlCmtRe = regexp.MustCompile(`[ ]?<!--.*?-->[ ]?`)
	rulerRe   = regexp.MustCompile(`(?m)^---$`)
)

// StubEngine is a minimal stand-in for pandoc used in tests: it rewrites
// top-level Markdown headings to org headings, drops inline HTML comments,
// and turns --- rulers into org horizontal rules, leaving every other line
// untouched (wrap-preserve behavior).
type StubEngine struct {
	Err error // returned by Convert when non-nil, simulating engine failure
}

// Convert applies the stub transforms.
func (s *StubEngine) Convert(_ context.Context, markdown string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	out := headingRe.ReplaceAllString(markdown, "* ")
	out = htmlCmtRe.ReplaceAllString(out, " ")
	out = rulerRe.ReplaceAllString(out, "--------------")
	return out, nil
}

// SilentLogger returns a logger that discards everything.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestTree creates a temporary directory tree and an FS over it.
func TestTree(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// WriteFile writes a file under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile reads a file under root.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// ExtractID returns the value of the :ID: property in an org note.
func ExtractID(t *testing.T, org string) string {
	t.Helper()
	for _, line := range strings.Split(org, "\n") {
		if strings.HasPrefix(line, ":ID: ") {
			return strings.TrimPrefix(line, ":ID: ")
		}
	}
	t.Fatalf("no :ID: property in %q", org)
	return ""
}

// TestManifest creates a temporary SQLite manifest that is cleaned up with
// the test.
func TestManifest(t *testing.T) *manifest.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := manifest.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
