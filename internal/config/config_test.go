package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
database:
  path: data/test.db
hostaway:
  base_url: https://api.hostaway.com/v1
  access_token: secret-token
  account_id: "90"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "hostsync", cfg.App.Name)
	assert.Equal(t, "memory", cfg.Queues.Backend)
	assert.Equal(t, 1024, cfg.Queues.Size)
	assert.Equal(t, float64(2), cfg.Hostaway.RateLimitRPS)
	assert.Equal(t, 500, cfg.Hostaway.MaxPageSize)
	assert.Equal(t, 3, cfg.Hostaway.MaxRetries)
	assert.Equal(t, time.Second, cfg.Hostaway.RetryBackoff)
	assert.Equal(t, 0.2, cfg.Hostaway.RetryJitter)
	assert.Equal(t, 30*time.Second, cfg.Hostaway.Timeout)
	assert.Equal(t, float64(1), cfg.Slack.RateLimitRPS)
	assert.Equal(t, "00:00", cfg.Sync.DailyAt)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_HOSTAWAY_TOKEN", "from-env")

	cfg, err := Load(writeConfig(t, `
database:
  path: data/test.db
hostaway:
  base_url: https://api.hostaway.com/v1
  access_token: "${TEST_HOSTAWAY_TOKEN}"
  account_id: "90"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Hostaway.AccessToken)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	cases := map[string]string{
		"no database": `
hostaway:
  base_url: https://api.hostaway.com/v1
  access_token: secret
  account_id: "90"
`,
		"no base url": `
database:
  path: data/test.db
hostaway:
  access_token: secret
  account_id: "90"
`,
		"placeholder token": `
database:
  path: data/test.db
hostaway:
  base_url: https://api.hostaway.com/v1
  access_token: YOUR_TOKEN_HERE
  account_id: "90"
`,
		"no account": `
database:
  path: data/test.db
hostaway:
  base_url: https://api.hostaway.com/v1
  access_token: secret
`,
	}

	for name, content := range cases {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, name)
	}
}

func TestValidateQueueBackend(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
queues:
  backend: kafka
`))
	require.Error(t, err)

	// redis backend without an address is rejected.
	_, err = Load(writeConfig(t, minimalConfig+`
queues:
  backend: redis
`))
	require.Error(t, err)

	cfg, err := Load(writeConfig(t, minimalConfig+`
queues:
  backend: redis
redis:
  address: localhost:6379
`))
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Queues.Backend)
}

func TestValidateSyncSchedule(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sync:
  daily_at: "25:99"
`))
	require.Error(t, err)

	cfg, err := Load(writeConfig(t, minimalConfig+`
sync:
  enabled: true
  daily_at: "03:15"
`))
	require.NoError(t, err)
	assert.Equal(t, "03:15", cfg.Sync.DailyAt)
}
