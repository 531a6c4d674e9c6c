package config

import (
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpires.Std())
	assert.Equal(t, "wasteDB", cfg.Mongo.Database)
	assert.Equal(t, StorageMongo, cfg.Storage)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ModuleCacheTTL.Std())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.Bootstrap.Enabled())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":             "s3cret",
		"JWT_EXPIRES":            "90m",
		"PORT":                   "8081",
		"ENV":                    "production",
		"STORAGE_DRIVER":         "memory",
		"CORS_ORIGINS":           "http://localhost:5173,https://waste.example.org",
		"BOOTSTRAP_GOV_EMAIL":    "admin@city.gov",
		"BOOTSTRAP_GOV_PASSWORD": "changeme",
	}))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.JWTExpires.Std())
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, []string{"http://localhost:5173", "https://waste.example.org"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.Bootstrap.Enabled())
}

func TestLoadWith_RequiresSecret(t *testing.T) {
	_, err := LoadWith(envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoadWith_RejectsUnknownStorage(t *testing.T) {
	_, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"STORAGE_DRIVER": "postgres",
	}))
	assert.Error(t, err)
}

func TestDuration_EnvDecode(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":   7 * 24 * time.Hour,
		"0d":   0,
		"168h": 168 * time.Hour,
		"30s":  30 * time.Second,
	}
	for in, want := range cases {
		var d Duration
		require.NoError(t, d.EnvDecode(in), in)
		assert.Equal(t, want, d.Std(), in)
	}

	for _, bad := range []string{"d", "-1d", "seven days", ""} {
		var d Duration
		assert.Error(t, d.EnvDecode(bad), bad)
	}
}
