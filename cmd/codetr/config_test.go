package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/codetr/internal/prompt"
)

func TestConfigInitAndShow(t *testing.T) {
	t.Setenv("CODETR_ENDPOINT", "")
	t.Setenv("CODETR_TIMEOUT", "")
	path := filepath.Join(t.TempDir(), "codetr", "config.yaml")
	prev := confirmer
	confirmer = func() prompt.Confirmer {
		return prompt.Confirmer{IsInteractive: func() bool { return false }}
	}
	defer func() { confirmer = prev }()

	out, err := executeCommand(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("expected path in output: %s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	if _, err := executeCommand(t, "config", "init", "--config", path); err == nil {
		t.Fatalf("expected init to refuse overwriting without -y")
	}
	if _, err := executeCommand(t, "config", "init", "--config", path, "-y"); err != nil {
		t.Fatalf("init -y failed: %v", err)
	}

	t.Setenv("CODETR_ENDPOINT", "https://example.test/api/translate")
	out, err = executeCommand(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"endpoint: https://example.test/api/translate", "source_language: JavaScript", "model: gpt-3.5-turbo"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
