package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.MetricsPort)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "UTC", cfg.StreakTimezone)
	assert.Empty(t, cfg.Brokers())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "focusfeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
log_level: debug
jwt_secret: from-file
kafka_brokers: "k1:9092, k2:9092"
streak_timezone: Europe/Berlin
shutdown_timeout: 5s
`), 0o600))
	t.Setenv("PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Port, "environment overrides the file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	assert.ErrorContains(t, cfg.Validate(), "jwt_secret")

	cfg.AuthProvider = AuthProviderFirebase
	assert.ErrorContains(t, cfg.Validate(), "firebase_credentials_path")

	cfg.FirebaseCredentialsPath = "creds.json"
	assert.NoError(t, cfg.Validate())

	cfg.StreakTimezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "streak_timezone")

	cfg = defaults()
	cfg.AuthProvider = "saml"
	assert.ErrorContains(t, cfg.Validate(), "auth_provider")
}
