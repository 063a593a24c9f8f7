package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.AuthorityBaseURL)
	assert.Equal(t, "@every 30s", cfg.RefreshSchedule)
	assert.Equal(t, 3, cfg.MaxOtpRetries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTHORITY_BASE_URL", "https://bank.example.com")
	t.Setenv("MAX_OTP_RETRIES", "-1")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://bank.example.com", cfg.AuthorityBaseURL)
	assert.Equal(t, -1, cfg.MaxOtpRetries)
	assert.True(t, cfg.DevMode)
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := &Config{Port: 0, AuthorityBaseURL: "http://localhost:5000"}
	assert.Error(t, cfg.Validate())

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestValidate_RequiresAuthorityURL(t *testing.T) {
	cfg := &Config{Port: 8090}
	assert.Error(t, cfg.Validate())
}
