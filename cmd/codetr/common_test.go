package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oukeidos/codetr/internal/auth"
)

type keyStubs struct {
	promptCalls int
	keyCalls    int
	envCalls    int
}

func withKeyStubs(t *testing.T, terminal bool, promptVal, keychainVal, envVal string) (*keyStubs, func()) {
	t.Helper()
	stubs := &keyStubs{}

	prevIsTerminal := isTerminal
	prevPrompt := promptForKey
	prevGetKey := getKey
	prevGetEnv := getEnvKey

	isTerminal = func(_ int) bool { return terminal }
	promptForKey = func(_ string) (string, error) {
		stubs.promptCalls++
		return promptVal, nil
	}
	getKey = func(_ bool) (string, string) {
		stubs.keyCalls++
		if keychainVal == "" {
			return "", ""
		}
		return keychainVal, auth.SourceKeychain
	}
	getEnvKey = func() (string, bool) {
		stubs.envCalls++
		if envVal == "" {
			return "", false
		}
		return envVal, true
	}

	restore := func() {
		isTerminal = prevIsTerminal
		promptForKey = prevPrompt
		getKey = prevGetKey
		getEnvKey = prevGetEnv
	}
	return stubs, restore
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestResolveAPIKey_KeychainFirst(t *testing.T) {
	stubs, restore := withKeyStubs(t, true, "", "keychain-key", "env-key")
	defer restore()

	key, source, err := resolveAPIKey(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "keychain-key" || source != auth.SourceKeychain {
		t.Fatalf("expected keychain key/source, got key=%q source=%q", key, source)
	}
	if stubs.envCalls != 0 || stubs.promptCalls != 0 {
		t.Fatalf("expected no env or prompt calls, got env=%d prompt=%d", stubs.envCalls, stubs.promptCalls)
	}
}

func TestResolveAPIKey_EnvFallbackWhenAllowed(t *testing.T) {
	_, restore := withKeyStubs(t, false, "", "", "env-key")
	defer restore()

	key, source, err := resolveAPIKey(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "env-key" || source != auth.SourceEnv {
		t.Fatalf("expected env key/source, got key=%q source=%q", key, source)
	}
}

func TestResolveAPIKey_EnvIgnoredByDefault(t *testing.T) {
	stubs, restore := withKeyStubs(t, false, "", "", "env-key")
	defer restore()

	if key, _, err := resolveAPIKey(false); err == nil {
		t.Fatalf("expected error, got key=%q", key)
	}
	if stubs.envCalls != 0 {
		t.Fatalf("expected no env calls, got %d", stubs.envCalls)
	}
}

func TestResolveAPIKey_Prompt(t *testing.T) {
	stubs, restore := withKeyStubs(t, true, "  typed-key  ", "", "")
	defer restore()

	key, source, err := resolveAPIKey(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "typed-key" || source != auth.SourcePrompt {
		t.Fatalf("got key=%q source=%q", key, source)
	}
	if stubs.promptCalls != 1 {
		t.Fatalf("promptCalls = %d", stubs.promptCalls)
	}
}

func TestResolveAPIKey_PromptSkipped(t *testing.T) {
	_, restore := withKeyStubs(t, true, "", "", "")
	defer restore()

	_, _, err := resolveAPIKey(false)
	if err == nil || !strings.Contains(err.Error(), "--allow-env") {
		t.Fatalf("expected hint about --allow-env, got %v", err)
	}
}

func TestResolveAPIKey_NonInteractiveDoesNotPrompt(t *testing.T) {
	stubs, restore := withKeyStubs(t, false, "prompt-key", "", "")
	defer restore()

	if _, _, err := resolveAPIKey(false); err == nil {
		t.Fatalf("expected error")
	}
	if stubs.promptCalls != 0 {
		t.Fatalf("expected no prompt, got %d", stubs.promptCalls)
	}
}

func TestParseTimeout(t *testing.T) {
	if d, err := parseTimeout(" 90s "); err != nil || d.Seconds() != 90 {
		t.Fatalf("parseTimeout = %v, %v", d, err)
	}
	for _, bad := range []string{"soon", "-1s"} {
		if _, err := parseTimeout(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCountLines(t *testing.T) {
	cases := map[string]int{"": 0, "a": 1, "a\n": 1, "a\nb": 2, "a\nb\n": 2}
	for in, want := range cases {
		if got := countLines(in); got != want {
			t.Errorf("countLines(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestRoot_VersionAndUnknownCommand(t *testing.T) {
	out, err := executeCommand(t, "--version")
	if err != nil || !strings.HasPrefix(out, "codetr ") {
		t.Fatalf("--version = %q, %v", out, err)
	}

	out, err = executeCommand(t, "bogus")
	if err == nil || !strings.Contains(err.Error(), `unknown command "bogus"`) {
		t.Fatalf("expected unknown command error, got %v (%s)", err, out)
	}
}
