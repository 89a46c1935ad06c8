package lock

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/andy/billbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockSettingsRepo struct {
	settings *domain.Settings
	saves    int
}

func (m *mockSettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	if m.settings == nil {
		m.settings = domain.DefaultSettings()
	}
	copied := *m.settings
	return &copied, nil
}

func (m *mockSettingsRepo) Save(ctx context.Context, s *domain.Settings) error {
	copied := *s
	m.settings = &copied
	m.saves++
	return nil
}

func newTestGate(t *testing.T) (*Gate, *mockSettingsRepo) {
	t.Helper()
	repo := &mockSettingsRepo{}
	g := NewGate(repo, filepath.Join(t.TempDir(), "state", "unlocked"))
	g.cost = bcrypt.MinCost
	return g, repo
}

func TestValidatePin(t *testing.T) {
	tests := []struct {
		pin     string
		wantErr bool
	}{
		{"1234", false},
		{"123456", false},
		{"123", true},
		{"1234567", true},
		{"12a4", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := ValidatePin(tt.pin)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPin)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGate_NoPinIsNeverLocked(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t)

	locked, err := g.IsLocked(ctx)
	require.NoError(t, err)
	assert.False(t, locked)

	_, err = g.VerifyPin(ctx, "1234")
	assert.ErrorIs(t, err, ErrNoPin)
}

func TestGate_SetPinLockUnlock(t *testing.T) {
	ctx := context.Background()
	g, repo := newTestGate(t)

	require.NoError(t, g.SetPin(ctx, "4321"))
	assert.NotEqual(t, "4321", repo.settings.PinHash, "PIN must be stored hashed")
	assert.True(t, g.IsUnlocked(), "setting a PIN leaves this machine unlocked")

	require.NoError(t, g.Lock())
	locked, err := g.IsLocked(ctx)
	require.NoError(t, err)
	assert.True(t, locked)

	assert.ErrorIs(t, g.Unlock(ctx, "0000"), ErrWrongPin)
	assert.False(t, g.IsUnlocked())

	require.NoError(t, g.Unlock(ctx, "4321"))
	locked, err = g.IsLocked(ctx)
	require.NoError(t, err)
	assert.False(t, locked)

	// Locking twice is harmless
	require.NoError(t, g.Lock())
	require.NoError(t, g.Lock())
}

func TestGate_SetPinRejectsInvalid(t *testing.T) {
	g, repo := newTestGate(t)

	assert.ErrorIs(t, g.SetPin(context.Background(), "12"), ErrInvalidPin)
	assert.Zero(t, repo.saves)
}

func TestGate_RemovePin(t *testing.T) {
	ctx := context.Background()
	g, repo := newTestGate(t)

	require.NoError(t, g.SetPin(ctx, "1111"))
	assert.ErrorIs(t, g.RemovePin(ctx, "2222"), ErrWrongPin)

	require.NoError(t, g.RemovePin(ctx, "1111"))
	assert.Empty(t, repo.settings.PinHash)

	set, err := g.IsPinSet(ctx)
	require.NoError(t, err)
	assert.False(t, set)
}
