package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleConfigPath(t *testing.T) string {
	t.Helper()

	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(exampleConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.NotEmpty(t, cfg.DB.Host)
	assert.NotZero(t, cfg.Webserver.ShutDownTime)
}

func TestReadConfigEnvOverride(t *testing.T) {
	t.Setenv("PROCUREFLOW_CONFIG_JSON", `{"Title":"Overridden","Auth":{"TokenExpiry":3600000000000}}`)

	cfg, err := ReadConfig(exampleConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Overridden", cfg.Title)
	assert.Equal(t, time.Hour, cfg.Auth.TokenExpiry)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
		Auth:      Auth{JWTSecret: "secret"},
	}

	testCases := []struct {
		name          string
		mutate        func(c *Config)
		expectedError error
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name:          "missing port",
			mutate:        func(c *Config) { c.Webserver.Port = 0 },
			expectedError: ErrWebServerPortCanNotBeZero,
		},
		{
			name:          "missing url",
			mutate:        func(c *Config) { c.Webserver.URL = "" },
			expectedError: ErrEmptyURL,
		},
		{
			name:          "missing jwt secret",
			mutate:        func(c *Config) { c.Auth.JWTSecret = "" },
			expectedError: ErrEmptyJWTSecret,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)

			err := validate(cfg)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
