package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "mood-assistant"

// Keys of the secrets the assistant needs, with the environment variables
// that override them.
const (
	KeyLineChannelSecret = "line-channel-secret"
	KeyLineAccessToken   = "line-channel-access-token"
	KeyWeatherAPIKey     = "cwa-api-key"

	EnvLineChannelSecret = "LINE_CHANNEL_SECRET"
	EnvLineAccessToken   = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvWeatherAPIKey     = "CWA_API_KEY"
)

// ErrNotConfigured is returned by Lookup when neither the environment nor
// the keyring holds the secret.
var ErrNotConfigured = errors.New("credential not configured")

// Store reads and writes secrets in a keyring.
type Store struct {
	open   func() (keyring.Keyring, error)
	getenv func(string) string
}

// NewStore returns a Store backed by the system keyring and the process
// environment.
func NewStore() *Store {
	return &Store{open: openKeyring, getenv: os.Getenv}
}

// NewStoreWith returns a Store over ring, reading the environment through
// getenv.
func NewStoreWith(ring keyring.Keyring, getenv func(string) string) *Store {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Store{
		open:   func() (keyring.Keyring, error) { return ring, nil },
		getenv: getenv,
	}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mood-assistant/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mood-assistant-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the keyring.
func (s *Store) Get(key string) (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the keyring.
func (s *Store) Set(key, value string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the keyring.
func (s *Store) Delete(key string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	if err := ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// Lookup returns the secret from the env variable when set, otherwise from
// the keyring entry key.
func (s *Store) Lookup(env, key string) (string, error) {
	if v := strings.TrimSpace(s.getenv(env)); v != "" {
		return v, nil
	}

	v, err := s.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%s (set %s or store keyring entry %q): %w", key, env, key, ErrNotConfigured)
	}
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s is empty: %w", key, ErrNotConfigured)
	}
	return v, nil
}
