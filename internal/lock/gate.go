package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andy/billbook/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPinLength = 4
	MaxPinLength = 6
)

var (
	ErrInvalidPin = errors.New("PIN must be 4 to 6 digits")
	ErrWrongPin   = errors.New("incorrect PIN")
	ErrNoPin      = errors.New("no PIN is set")
	ErrLocked     = errors.New("billbook is locked, run `billbook unlock` first")
)

// Gate guards the app behind an optional PIN. The hash lives in settings;
// the unlocked state is a flag file on this machine.
type Gate struct {
	settings repository.SettingsRepository
	flagPath string
	cost     int
}

// NewGate creates a gate that keeps its unlock flag at flagPath
func NewGate(settings repository.SettingsRepository, flagPath string) *Gate {
	return &Gate{
		settings: settings,
		flagPath: flagPath,
		cost:     bcrypt.DefaultCost,
	}
}

// ValidatePin checks the PIN format
func ValidatePin(pin string) error {
	if len(pin) < MinPinLength || len(pin) > MaxPinLength {
		return ErrInvalidPin
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPin
		}
	}
	return nil
}

// IsPinSet reports whether a PIN protects the app
func (g *Gate) IsPinSet(ctx context.Context) (bool, error) {
	s, err := g.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	return s.IsPinSet(), nil
}

// IsUnlocked reports whether the unlock flag is present
func (g *Gate) IsUnlocked() bool {
	_, err := os.Stat(g.flagPath)
	return err == nil
}

// IsLocked reports whether commands must refuse to run
func (g *Gate) IsLocked(ctx context.Context) (bool, error) {
	set, err := g.IsPinSet(ctx)
	if err != nil {
		return false, err
	}
	return set && !g.IsUnlocked(), nil
}

// SetPin stores a new PIN and leaves this machine unlocked
func (g *Gate) SetPin(ctx context.Context, pin string) error {
	if err := ValidatePin(pin); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), g.cost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	s, err := g.settings.Get(ctx)
	if err != nil {
		return err
	}
	s.PinHash = string(hash)
	if err := g.settings.Save(ctx, s); err != nil {
		return err
	}

	return g.setUnlocked(true)
}

// VerifyPin compares pin against the stored hash
func (g *Gate) VerifyPin(ctx context.Context, pin string) (bool, error) {
	s, err := g.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	if !s.IsPinSet() {
		return false, ErrNoPin
	}

	err = bcrypt.CompareHashAndPassword([]byte(s.PinHash), []byte(pin))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to verify PIN: %w", err)
	}
	return true, nil
}

// Unlock verifies pin and writes the unlock flag
func (g *Gate) Unlock(ctx context.Context, pin string) error {
	ok, err := g.VerifyPin(ctx, pin)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPin
	}
	return g.setUnlocked(true)
}

// Lock removes the unlock flag
func (g *Gate) Lock() error {
	return g.setUnlocked(false)
}

// RemovePin clears the PIN after verifying the current one
func (g *Gate) RemovePin(ctx context.Context, pin string) error {
	ok, err := g.VerifyPin(ctx, pin)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPin
	}

	s, err := g.settings.Get(ctx)
	if err != nil {
		return err
	}
	s.PinHash = ""
	if err := g.settings.Save(ctx, s); err != nil {
		return err
	}
	return g.setUnlocked(false)
}

func (g *Gate) setUnlocked(unlocked bool) error {
	if !unlocked {
		if err := os.Remove(g.flagPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove unlock flag: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(g.flagPath), 0700); err != nil {
		return fmt.Errorf("failed to create unlock flag directory: %w", err)
	}
	if err := os.WriteFile(g.flagPath, []byte("unlocked\n"), 0600); err != nil {
		return fmt.Errorf("failed to write unlock flag: %w", err)
	}
	return nil
}
