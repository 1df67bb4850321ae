package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	Timeout time.Duration `env:"TEST_TIMEOUT" default:"15s"`
}

type testConfig struct {
	Addr    string `env:"TEST_ADDR" default:":8080"`
	Retries int    `env:"TEST_RETRIES"`
	Debug   bool   `env:"TEST_DEBUG"`

	Server nested

	ignored string `env:"TEST_IGNORED"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 0, cfg.Retries)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 15*time.Second, cfg.Server.Timeout)
	assert.Empty(t, cfg.ignored)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TEST_ADDR", ":9999")
	t.Setenv("TEST_RETRIES", "3")
	t.Setenv("TEST_DEBUG", "true")
	t.Setenv("TEST_TIMEOUT", "250ms")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3, cfg.Retries)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.Timeout)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_RETRIES", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)
	require.Error(t, err)

	var invalid ErrInvalidValue
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "TEST_RETRIES", invalid.EnvVar)
}

func TestLoad_NotStructPointer(t *testing.T) {
	var n int
	assert.Error(t, Load(&n))
	assert.Error(t, Load(testConfig{}))
}

type validated struct {
	Port int `env:"TEST_PORT" default:"0"`
}

func (v *validated) Validate() error {
	if v.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func TestLoad_ValidatorCalled(t *testing.T) {
	var cfg validated
	assert.EqualError(t, Load(&cfg), "port must be positive")

	t.Setenv("TEST_PORT", "8080")
	assert.NoError(t, Load(&cfg))
}
