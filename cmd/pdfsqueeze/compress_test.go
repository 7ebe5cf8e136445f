package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/config"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
)

func TestRenderStats(t *testing.T) {
	res := &compress.Result{
		Algorithm:      compress.AlgorithmExtractive,
		OriginalTokens: 1000,
		FinalTokens:    400,
		Compressed:     true,
		ProcessingTime: 12 * time.Millisecond,
	}

	out := renderStats("report.pdf", res, 2)

	for _, want := range []string{
		"Compression",
		"report.pdf",
		"extractive",
		"1000 tokens",
		"400 tokens",
		"40.0%",
		"600 tokens",
		"2 secret(s)",
		"12ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("renderStats output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStats_NotCompressed(t *testing.T) {
	res := &compress.Result{
		Algorithm:      compress.AlgorithmExtractive,
		OriginalTokens: 50,
		FinalTokens:    50,
		Compressed:     false,
	}

	out := renderStats("stdin", res, 0)

	if !strings.Contains(out, "already within budget") {
		t.Errorf("renderStats output missing no-op note:\n%s", out)
	}
	if strings.Contains(out, "Redacted") {
		t.Errorf("renderStats should omit the redaction row when nothing was redacted:\n%s", out)
	}
	if !strings.Contains(out, "100.0%") {
		t.Errorf("renderStats output missing retention:\n%s", out)
	}
}

func TestReadInput_TextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("Budget review notes."), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	registry := extract.NewRegistry(extract.Config{})

	text, source, err := readInput(context.Background(), registry, []string{path})
	if err != nil {
		t.Fatalf("readInput() error = %v", err)
	}
	if !strings.Contains(text, "Budget review notes.") {
		t.Errorf("readInput() text = %q, want the file content", text)
	}
	if source != path {
		t.Errorf("readInput() source = %q, want %q", source, path)
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	registry := extract.NewRegistry(extract.Config{})

	_, _, err := readInput(context.Background(), registry, []string{"/nonexistent/report.pdf"})
	if err == nil {
		t.Fatal("readInput() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "extraction failed") {
		t.Errorf("readInput() error = %v, want extraction failure", err)
	}
}

func TestNewRedactor_LoadsConfiguredAllowlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.toml")
	toml := "[allowlist]\nregexes = ['DEMO_KEY']\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := config.NewDefaultConfig()
	cfg.Redact.AllowlistPaths = []string{path}

	redactor, err := newRedactor(cfg)
	if err != nil {
		t.Fatalf("newRedactor() error = %v", err)
	}

	// Allowlisted content must pass through untouched.
	content := `export DEMO_KEY="sk-proj-abcdefghijklmnopqrstuvwxyz1234567890123456"`
	if got := redactor.Redact(content).Text; got != content {
		t.Errorf("Redact() = %q, want allowlisted content unchanged", got)
	}
}

func TestNewRedactor_MissingAllowlistSkipped(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Redact.AllowlistPaths = []string{filepath.Join(t.TempDir(), "nope.toml")}

	if _, err := newRedactor(cfg); err != nil {
		t.Fatalf("newRedactor() error = %v, want missing files skipped", err)
	}
}

func TestNewRedactor_InvalidAllowlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.toml")
	if err := os.WriteFile(path, []byte("[allowlist]\nregexes = ['[unclosed']\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := config.NewDefaultConfig()
	cfg.Redact.AllowlistPaths = []string{path}

	if _, err := newRedactor(cfg); err == nil {
		t.Fatal("newRedactor() expected error for invalid allowlist pattern")
	}
}

func TestWriteResult_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	if err := writeResult("compressed text", path); err != nil {
		t.Fatalf("writeResult() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(content) != "compressed text" {
		t.Errorf("output file = %q, want %q", content, "compressed text")
	}
}
