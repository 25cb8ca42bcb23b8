package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefault_IsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.True(t, bool(s.Dimension.TimeIsUnlimited))
	assert.Equal(t, "gregorian", s.Variable.Time.Calendar)
	assert.Equal(t, []string{"height", "elev", "depth"}, s.Aliases.Height)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	p := writeFile(t, "settings.toml", `
[data]
directory = "/srv/models"
check = "False"

[axis]
latitude = "latitude"

[dimension]
time_is_unlimited = true

[variable.height]
positive = "down"
`)
	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/srv/models", s.Data.Directory)
	assert.False(t, bool(s.Data.Check))
	assert.Equal(t, "latitude", s.Axis.Latitude)
	assert.Equal(t, "lon", s.Axis.Longitude)
	assert.True(t, bool(s.Dimension.TimeIsUnlimited))
	assert.Equal(t, "down", s.Variable.Height.Positive)
	assert.Equal(t, "float", s.Variable.Height.Type)
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "settings.yaml", `
logger:
  level_console: warning
dimension:
  time_is_unlimited: "0"
aliases:
  time: [time, t]
`)
	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "warning", s.Logger.LevelConsole)
	assert.False(t, bool(s.Dimension.TimeIsUnlimited))
	assert.Equal(t, []string{"time", "t"}, s.Aliases.Time)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "settings.ini", "x=1"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.toml", "[variable.height]\npositive = \"sideways\"\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "flag.toml", "[data]\ncheck = \"maybe\"\n"))
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "True"} {
		b, err := ParseBool(s)
		require.NoError(t, err)
		assert.True(t, b, s)
	}
	for _, s := range []string{"", "0", "false", "False"} {
		b, err := ParseBool(s)
		require.NoError(t, err)
		assert.False(t, b, s)
	}
	_, err := ParseBool("yes")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, "warning", l)
	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
