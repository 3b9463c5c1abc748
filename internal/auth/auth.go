package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName = "codetr"
	accountName = "api-key"
	envVar      = "CODETR_API_KEY"
)

const (
	SourceKeychain = "Keychain"
	SourceEnv      = "Environment Variable"
	SourcePrompt   = "Terminal Prompt"
)

// GetKey retrieves the API key from the OS keychain, then optionally from the
// environment. It returns the key and where it came from.
func GetKey(allowEnv bool) (string, string) {
	key, err := keyring.Get(serviceName, accountName)
	if err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceKeychain
	}
	if allowEnv {
		if key, ok := GetEnvKey(); ok {
			return key, SourceEnv
		}
	}
	return "", ""
}

// SaveKey saves the key to the OS keychain. An empty key deletes the entry.
func SaveKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		err := keyring.Delete(serviceName, accountName)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return keyring.Set(serviceName, accountName, key)
}

// DeleteKey removes the key from the OS keychain.
func DeleteKey() error {
	return keyring.Delete(serviceName, accountName)
}

// GetStatus returns whether a key exists in the keychain.
func GetStatus() bool {
	key, err := keyring.Get(serviceName, accountName)
	return err == nil && key != ""
}

// GetEnvKey retrieves the key from the environment only.
func GetEnvKey() (string, bool) {
	key := strings.TrimSpace(os.Getenv(envVar))
	if key == "" {
		return "", false
	}
	return key, true
}

// EnvVar names the environment variable consulted when allowed.
func EnvVar() string {
	return envVar
}

// PromptForAPIKey securely prompts the user for their API key.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(bytePassword)), nil
}

// KeyringStore persists the credential in the OS keychain.
type KeyringStore struct {
	// AllowEnv lets Load fall back to CODETR_API_KEY when the keychain is empty.
	AllowEnv bool
}

func (s KeyringStore) Load() (string, bool, error) {
	key, err := keyring.Get(serviceName, accountName)
	switch {
	case err == nil && strings.TrimSpace(key) != "":
		return strings.TrimSpace(key), true, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		if s.AllowEnv {
			if key, ok := GetEnvKey(); ok {
				return key, true, nil
			}
		}
		return "", false, fmt.Errorf("failed to read keychain: %w", err)
	}
	if s.AllowEnv {
		if key, ok := GetEnvKey(); ok {
			return key, true, nil
		}
	}
	return "", false, nil
}

func (s KeyringStore) Save(key string) error {
	if err := SaveKey(key); err != nil {
		return fmt.Errorf("failed to save keychain entry: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	key   string
	saves int
}

func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{key: initial}
}

func (m *MemoryStore) Load() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key, m.key != "", nil
}

func (m *MemoryStore) Save(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = key
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
