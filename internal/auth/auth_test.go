package auth

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	t.Setenv(envVar, "")

	store := KeyringStore{}
	if key, ok, err := store.Load(); err != nil || ok || key != "" {
		t.Fatalf("Load() on empty keychain = (%q, %v, %v)", key, ok, err)
	}

	if err := store.Save("  sk-saved  "); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	key, ok, err := store.Load()
	if err != nil || !ok || key != "sk-saved" {
		t.Fatalf("Load() = (%q, %v, %v), want trimmed key", key, ok, err)
	}
	if !GetStatus() {
		t.Fatalf("expected keychain status to report a key")
	}

	if err := store.Save(""); err != nil {
		t.Fatalf("Save(\"\") failed: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatalf("expected empty save to clear the entry")
	}
	if err := store.Save(""); err != nil {
		t.Fatalf("clearing an already empty keychain should succeed, got %v", err)
	}
}

func TestKeyringStore_EnvFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv(envVar, "sk-from-env")

	if _, ok, _ := (KeyringStore{}).Load(); ok {
		t.Fatalf("env must be ignored unless allowed")
	}
	key, ok, err := KeyringStore{AllowEnv: true}.Load()
	if err != nil || !ok || key != "sk-from-env" {
		t.Fatalf("Load() = (%q, %v, %v), want env key", key, ok, err)
	}

	if err := SaveKey("sk-keychain"); err != nil {
		t.Fatalf("SaveKey failed: %v", err)
	}
	if key, source := GetKey(true); key != "sk-keychain" || source != SourceKeychain {
		t.Fatalf("GetKey() = (%q, %q), keychain should win over env", key, source)
	}
}

func TestGetKey_Sources(t *testing.T) {
	keyring.MockInit()
	t.Setenv(envVar, "sk-env")

	if key, source := GetKey(false); key != "" || source != "" {
		t.Fatalf("GetKey(false) = (%q, %q), want nothing", key, source)
	}
	if key, source := GetKey(true); key != "sk-env" || source != SourceEnv {
		t.Fatalf("GetKey(true) = (%q, %q)", key, source)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore("initial")
	if key, ok, _ := m.Load(); !ok || key != "initial" {
		t.Fatalf("Load() = (%q, %v)", key, ok)
	}
	_ = m.Save("next")
	_ = m.Save("")
	if key, ok, _ := m.Load(); ok || key != "" {
		t.Fatalf("Load() after clearing = (%q, %v)", key, ok)
	}
	if m.Saves() != 2 {
		t.Fatalf("Saves() = %d, want 2", m.Saves())
	}
}
