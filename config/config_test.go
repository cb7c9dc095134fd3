package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err, "explicit missing file is an error")

	// No explicit path: defaults carry everything.
	cfg, err := loadFromDir(t, "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 3, cfg.Search.MinQueryLength)
	assert.Equal(t, 200, cfg.Search.MaxQueryLength)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
	assert.Equal(t, 5, cfg.Pagination.RulesPerPage)
	assert.Equal(t, 5, cfg.API.RateLimit.Search.PerMinute)
	assert.Equal(t, 1, cfg.API.RateLimit.Feedback.PerMinute)
	assert.Equal(t, "./data/travelrules.db", cfg.DataPaths.SQLitePath,
		"sqlite path derives from the data dir when unset")
}

func TestLoad_FromFile(t *testing.T) {
	yaml := `
api:
  port: 9999
search:
  min_query_length: 5
data_paths:
  data_dir: /var/lib/travelrules
`
	path := filepath.Join(t.TempDir(), "travelrules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.API.Port)
	assert.Equal(t, 5, cfg.Search.MinQueryLength)
	assert.Equal(t, "/var/lib/travelrules/travelrules.db", cfg.DataPaths.SQLitePath)
	assert.Equal(t, 200, cfg.Search.MaxQueryLength, "unset keys keep defaults")
}

func TestLoad_ExplicitSQLitePath(t *testing.T) {
	yaml := `
data_paths:
  sqlite_path: /tmp/custom.db
`
	path := filepath.Join(t.TempDir(), "travelrules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DataPaths.SQLitePath)
}

func TestValidate(t *testing.T) {
	valid, err := loadFromDir(t, "")
	require.NoError(t, err)
	require.NoError(t, valid.Validate())

	bad := *valid
	bad.API.Port = 0
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.Search.MinQueryLength = 0
	assert.Error(t, bad.Validate())

	bad = *valid
	bad.Search.MaxQueryLength = 1
	assert.Error(t, bad.Validate(), "max below min")

	bad = *valid
	bad.Cache.PopularTTL = 0
	assert.Error(t, bad.Validate())
}

// loadFromDir runs Load with the working directory moved to an empty temp
// dir, so a developer's local travelrules.yaml cannot leak into the test.
func loadFromDir(t *testing.T, path string) (*Config, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return Load(path)
}
