package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func withStatusStubs(t *testing.T, keychain bool, envVal string) func() {
	t.Helper()
	prevStatus, prevEnv := getStatus, getEnvKey
	getStatus = func() bool { return keychain }
	getEnvKey = func() (string, bool) { return envVal, envVal != "" }
	return func() {
		getStatus, getEnvKey = prevStatus, prevEnv
	}
}

func TestKeyStatus(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		keychain bool
		env      string
		want     string
	}{
		{"keychain", []string{"key", "status"}, true, "sk-env-secret", "Found (source=Keychain)"},
		{"env only", []string{"key", "status"}, false, "sk-env-secret", "disabled by default"},
		{"nothing", []string{"key"}, false, "", "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := withStatusStubs(t, tt.keychain, tt.env)
			defer restore()

			out, err := executeCommand(t, tt.args...)
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("expected %q in output, got: %s", tt.want, out)
			}
			if strings.Contains(out, "sk-env-secret") {
				t.Fatalf("output leaked env key")
			}
		})
	}
}

func TestKeySetup(t *testing.T) {
	prevPrompt, prevSave := promptForKey, saveKey
	defer func() { promptForKey, saveKey = prevPrompt, prevSave }()

	var saved string
	promptForKey = func(string) (string, error) { return "  sk-new  ", nil }
	saveKey = func(key string) error { saved = key; return nil }

	out, err := executeCommand(t, "key", "setup")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if saved != "sk-new" {
		t.Fatalf("saved %q", saved)
	}
	if strings.Contains(out, "sk-new") {
		t.Fatalf("output leaked the key")
	}

	promptForKey = func(string) (string, error) { return "", nil }
	if _, err := executeCommand(t, "key", "setup"); err == nil {
		t.Fatalf("expected error for an empty key")
	}
	if _, err := executeCommand(t, "key", "setup", "sk-on-argv"); err == nil {
		t.Fatalf("setup must not accept the key as an argument")
	}
}

func TestKeyDelete(t *testing.T) {
	prev := deleteKey
	defer func() { deleteKey = prev }()

	deleteKey = func() error { return keyring.ErrNotFound }
	out, err := executeCommand(t, "key", "delete")
	if err != nil || !strings.Contains(out, "No API key stored") {
		t.Fatalf("delete of a missing key = %q, %v", out, err)
	}

	deleteKey = func() error { return errors.New("locked") }
	if _, err := executeCommand(t, "key", "delete"); err == nil {
		t.Fatalf("expected error")
	}
}
