package crypto

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "billbook"
	KeyName     = "db-encryption-key"

	// EnvKey overrides the keychain, e.g. on headless machines
	EnvKey = "BILLBOOK_DB_KEY"
)

var ErrKeyNotFound = errors.New("encryption key not found")

// NewKeyring returns a keyring that prefers BILLBOOK_DB_KEY and otherwise
// uses the OS keychain (macOS Keychain, Secret Service, Windows Credential Manager)
func NewKeyring() Keyring {
	return &chainKeyring{env: envKeyring{}, os: osKeyring{}}
}

type chainKeyring struct {
	env envKeyring
	os  osKeyring
}

func (k *chainKeyring) GetKey() (string, error) {
	if k.env.IsAvailable() {
		return k.env.GetKey()
	}
	return k.os.GetKey()
}

func (k *chainKeyring) SetKey(password string) error {
	if !k.os.IsAvailable() {
		return fmt.Errorf("keychain not available on this machine: set the %s environment variable instead", EnvKey)
	}
	return k.os.SetKey(password)
}

func (k *chainKeyring) DeleteKey() error {
	return k.os.DeleteKey()
}

func (k *chainKeyring) IsAvailable() bool {
	return k.env.IsAvailable() || k.os.IsAvailable()
}

type osKeyring struct{}

// GetKey retrieves the encryption key from the OS keychain
func (osKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w in keychain", ErrKeyNotFound)
		}
		return "", fmt.Errorf("failed to retrieve key from keychain: %w", err)
	}

	if key == "" {
		return "", errors.New("encryption key is empty")
	}

	return key, nil
}

// SetKey stores the encryption key in the OS keychain
func (osKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keychain: %w", err)
	}

	return nil
}

// DeleteKey removes the encryption key from the OS keychain
func (osKeyring) DeleteKey() error {
	err := keyring.Delete(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w in keychain", ErrKeyNotFound)
		}
		return fmt.Errorf("failed to delete key from keychain: %w", err)
	}

	return nil
}

// IsAvailable checks keychain access with a throwaway entry
func (osKeyring) IsAvailable() bool {
	testKey := "__billbook_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}

	_ = keyring.Delete(ServiceName, testKey)
	return true
}

type envKeyring struct{}

func (envKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvKey)
	if key == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrKeyNotFound, EnvKey)
	}
	return key, nil
}

func (envKeyring) IsAvailable() bool {
	return os.Getenv(EnvKey) != ""
}
