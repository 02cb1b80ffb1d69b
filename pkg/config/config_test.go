package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "https://binaries.soliditylang.org", s.DistributionBase)
	assert.Contains(t, s.CacheDir, "emacs-solidity-server")
	assert.Equal(t, 5*time.Second, s.Retry().Interval)
	assert.Zero(t, s.Retry().MaxAttempts)
	assert.Equal(t, 30*24*time.Hour, s.Retention())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
distribution_base: http://localhost:9000
cache_dir: /tmp/solc
retry_interval_seconds: 1
retry_max_attempts: 4
retention_days: 7
log_file: /tmp/solc.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", s.DistributionBase)
	assert.Equal(t, "/tmp/solc", s.CacheDir)
	// Fields absent from the file keep their defaults.
	assert.Contains(t, s.ExactCacheDir, "solc-exact")
	assert.Equal(t, time.Second, s.Retry().Interval)
	assert.Equal(t, 4, s.Retry().MaxAttempts)
	assert.Equal(t, 7*24*time.Hour, s.Retention())
	assert.Equal(t, "/tmp/solc.log", s.LogFile)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: [oops"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	s, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}
