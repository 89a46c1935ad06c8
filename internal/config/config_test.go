package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlcipher", cfg.Database.Driver)
	assert.Equal(t, "INV", cfg.Invoice.NumberPrefix)
	assert.Equal(t, 5, cfg.Invoice.NumberWidth)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: postgres
  dsn: postgres://billbook@localhost/billbook?sslmode=disable
invoice:
  number_prefix: BILL
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "BILL", cfg.Invoice.NumberPrefix)
	assert.Equal(t, 5, cfg.Invoice.NumberWidth)
	assert.NotEmpty(t, cfg.Invoice.OutputDir)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown driver":    "database:\n  driver: mysql\n",
		"postgres sans dsn": "database:\n  driver: postgres\n",
		"dash in prefix":    "invoice:\n  number_prefix: IN-V\n",
		"negative width":    "invoice:\n  number_width: -1\n",
		"malformed yaml":    "database: [",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Invoice.NumberWidth = 7
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
