package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mongocli", cfg.MongoCLIBin)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5.0, cfg.APIRateLimit)
	assert.Equal(t, 2.0, cfg.CLIRateLimit)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv_ReadsCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("OM_BASE_URL", "http://om.example.com:8080")
	t.Setenv("OM_PUBLIC_KEY", "pub")
	t.Setenv("OM_PRIVATE_KEY", "priv")
	t.Setenv("OM_ORG_ID", "org-1")
	t.Setenv("OM_PROJECT_ID", "proj-1")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://om.example.com:8080", cfg.BaseURL)
	assert.Equal(t, "pub", cfg.PublicKey)
	assert.Equal(t, "priv", cfg.PrivateKey)
	assert.Equal(t, "org-1", cfg.OrgID)
	assert.Equal(t, "proj-1", cfg.ProjectID)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("OM_REQUEST_TIMEOUT", "soon")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OM_REQUEST_TIMEOUT")
}

func TestLoadFromEnv_InvalidRate(t *testing.T) {
	clearEnv(t)
	t.Setenv("OM_API_RATE_LIMIT", "-1")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OM_API_RATE_LIMIT")
}

func TestValidate_MissingRequired(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OM_BASE_URL")

	cfg.BaseURL = "http://om.example.com:8080"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OM_PUBLIC_KEY")
}

func TestMongoCLIEnv(t *testing.T) {
	cfg := Config{
		BaseURL:    "http://om.example.com:8080",
		PublicKey:  "pub",
		PrivateKey: "priv",
		OrgID:      "org-1",
	}
	assert.Equal(t, []string{
		"MCLI_OPS_MANAGER_URL=http://om.example.com:8080",
		"MCLI_PUBLIC_API_KEY=pub",
		"MCLI_PRIVATE_API_KEY=priv",
		"MCLI_ORG_ID=org-1",
	}, cfg.MongoCLIEnv())
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OM_BASE_URL", "OM_PUBLIC_KEY", "OM_PRIVATE_KEY", "OM_ORG_ID",
		"OM_PROJECT_ID", "OM_MONGOCLI_BINARY", "OM_REQUEST_TIMEOUT",
		"OM_API_RATE_LIMIT", "OM_CLI_RATE_LIMIT", "OM_INSECURE_SKIP_VERIFY",
		"OM_LOG_LEVEL",
	} {
		// Unset for the duration of the test, restore the original on cleanup.
		orig, wasSet := os.LookupEnv(key)
		if wasSet {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}
