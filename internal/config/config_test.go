package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  endpoint: https://rows.example.com/rest/v1
  api_key: secret
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rest", cfg.Source.Backend)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10000, cfg.Fetch.PageSize)
	assert.Equal(t, 140000, cfg.Fetch.RowCap)
	assert.Equal(t, 2025, cfg.Analysis.HorizonYear)
	assert.Equal(t, 8.5, cfg.Analysis.Risk.Critical)
	assert.Equal(t, 7.0, cfg.Analysis.Risk.High)
	assert.Equal(t, 4.0, cfg.Analysis.Risk.Medium)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_SOURCE_KEY", "from-env")

	path := writeConfig(t, `
source:
  endpoint: https://rows.example.com/rest/v1
  api_key: ${TEST_SOURCE_KEY}
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Source.APIKey)
}

func TestLoadPostgresBackend(t *testing.T) {
	path := writeConfig(t, `
source:
  backend: postgres
database:
  host: localhost
  name: opsboard
  user: opsboard
  password: secret
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Database.DSN(), "host=localhost")
	assert.Contains(t, cfg.Database.DSN(), "port=5432")
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing rest endpoint",
			content: "source:\n  backend: rest\n",
			wantErr: "source.endpoint is required",
		},
		{
			name:    "unknown backend",
			content: "source:\n  backend: csv\n",
			wantErr: "source.backend must be one of",
		},
		{
			name: "postgres without database",
			content: `
source:
  backend: postgres
`,
			wantErr: "database.host is required",
		},
		{
			name: "row cap below page size",
			content: `
source:
  endpoint: https://rows.example.com
fetch:
  page_size: 5000
  row_cap: 100
`,
			wantErr: "fetch.row_cap must be at least",
		},
		{
			name: "non-increasing risk thresholds",
			content: `
source:
  endpoint: https://rows.example.com
analysis:
  risk:
    critical: 5
    high: 7
    medium: 4
`,
			wantErr: "must increase",
		},
		{
			name: "bad log level",
			content: `
source:
  endpoint: https://rows.example.com
logging:
  level: verbose
`,
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
