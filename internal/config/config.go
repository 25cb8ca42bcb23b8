// Package config holds the installation settings that every component
// receives at construction time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Settings is the installation profile. It is passed by value and never
// mutated after Load returns.
type Settings struct {
	Data      DataSettings      `toml:"data" yaml:"data"`
	Logger    LoggerSettings    `toml:"logger" yaml:"logger"`
	Axis      AxisSettings      `toml:"axis" yaml:"axis"`
	Dimension DimensionSettings `toml:"dimension" yaml:"dimension"`
	Global    GlobalSettings    `toml:"global" yaml:"global"`
	Variable  VariableSettings  `toml:"variable" yaml:"variable"`
	Aliases   AliasSettings     `toml:"aliases" yaml:"aliases"`
	Units     UnitSettings      `toml:"units" yaml:"units"`
	Nodata    NodataSettings    `toml:"nodata" yaml:"nodata"`
	CFChecker CFCheckerSettings `toml:"cfchecker" yaml:"cfchecker"`
}

// DataSettings locates model files and controls the pre-write check.
type DataSettings struct {
	Directory string `toml:"directory" yaml:"directory"`
	Check     Flag   `toml:"check" yaml:"check"`
}

// LoggerSettings configures console and file logging.
type LoggerSettings struct {
	File         string `toml:"file" yaml:"file"`
	LevelConsole string `toml:"level_console" yaml:"level_console"`
	LevelFile    string `toml:"level_file" yaml:"level_file"`
}

// AxisSettings names the four coordinate axes. The names are used for both
// the dimension and its coordinate variable.
type AxisSettings struct {
	Time      string `toml:"time" yaml:"time"`
	Height    string `toml:"height" yaml:"height"`
	Latitude  string `toml:"latitude" yaml:"latitude"`
	Longitude string `toml:"longitude" yaml:"longitude"`
}

// DimensionSettings holds dimension defaults.
type DimensionSettings struct {
	TimeIsUnlimited Flag `toml:"time_is_unlimited" yaml:"time_is_unlimited"`
}

// GlobalSettings holds the required global attribute values.
type GlobalSettings struct {
	Conventions string `toml:"conventions" yaml:"conventions"`
	Institution string `toml:"institution" yaml:"institution"`
}

// VariableSettings holds coordinate variable types and attribute values.
type VariableSettings struct {
	Time      TimeVariable       `toml:"time" yaml:"time"`
	Height    HeightVariable     `toml:"height" yaml:"height"`
	Latitude  HorizontalVariable `toml:"latitude" yaml:"latitude"`
	Longitude HorizontalVariable `toml:"longitude" yaml:"longitude"`
}

// TimeVariable describes the time coordinate variable.
type TimeVariable struct {
	Type     string `toml:"type" yaml:"type"`
	Units    string `toml:"units" yaml:"units"`
	Calendar string `toml:"calendar" yaml:"calendar"`
}

// HeightVariable describes the height coordinate variable.
type HeightVariable struct {
	Type     string `toml:"type" yaml:"type"`
	Positive string `toml:"positive" yaml:"positive"`
}

// HorizontalVariable describes a latitude or longitude coordinate variable.
type HorizontalVariable struct {
	Type  string `toml:"type" yaml:"type"`
	Units string `toml:"units" yaml:"units"`
}

// AliasSettings lists the accepted names per coordinate role.
type AliasSettings struct {
	Time      []string `toml:"time" yaml:"time"`
	Height    []string `toml:"height" yaml:"height"`
	Latitude  []string `toml:"latitude" yaml:"latitude"`
	Longitude []string `toml:"longitude" yaml:"longitude"`
	ID        []string `toml:"id" yaml:"id"`
}

// UnitSettings lists the legal units attribute values per coordinate role.
type UnitSettings struct {
	Time      []string `toml:"time" yaml:"time"`
	Height    []string `toml:"height" yaml:"height"`
	Latitude  []string `toml:"latitude" yaml:"latitude"`
	Longitude []string `toml:"longitude" yaml:"longitude"`
}

// NodataSettings is the fill value used by table readers.
type NodataSettings struct {
	Value float64 `toml:"value" yaml:"value"`
	Type  string  `toml:"type" yaml:"type"`
}

// CFCheckerSettings locates the external CF conformance checker.
type CFCheckerSettings struct {
	Command string   `toml:"command" yaml:"command"`
	Args    []string `toml:"args" yaml:"args"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Data: DataSettings{Directory: "data", Check: true},
		Logger: LoggerSettings{
			File:         "",
			LevelConsole: "info",
			LevelFile:    "debug",
		},
		Axis: AxisSettings{
			Time:      "time",
			Height:    "height",
			Latitude:  "lat",
			Longitude: "lon",
		},
		Dimension: DimensionSettings{TimeIsUnlimited: true},
		Global: GlobalSettings{
			Conventions: "CF-1.4",
			Institution: "National Geodetic Survey",
		},
		Variable: VariableSettings{
			Time: TimeVariable{
				Type:     "double",
				Units:    "hours since 1970-01-01 00:00:0.0",
				Calendar: "gregorian",
			},
			Height:    HeightVariable{Type: "float", Positive: "up"},
			Latitude:  HorizontalVariable{Type: "float", Units: "degrees_north"},
			Longitude: HorizontalVariable{Type: "float", Units: "degrees_east"},
		},
		Aliases: AliasSettings{
			Time:      []string{"time"},
			Height:    []string{"height", "elev", "depth"},
			Latitude:  []string{"lat", "latitude"},
			Longitude: []string{"lon", "longitude"},
			ID:        []string{"_id"},
		},
		Units: UnitSettings{
			Time:      []string{"hours since 1970-01-01 00:00:0.0", "msec since 1970-01-01 00:00:0.0"},
			Height:    []string{"m", "1"},
			Latitude:  []string{"degrees_north"},
			Longitude: []string{"degrees_east"},
		},
		Nodata:    NodataSettings{Value: -9999, Type: "float32"},
		CFChecker: CFCheckerSettings{Command: "cfchecks"},
	}
}

// Load reads a TOML or YAML settings file over the defaults. The format is
// chosen by extension (.toml, .yaml, .yml).
func Load(path string) (Settings, error) {
	s := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(raw), &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", ext)
	}

	s.Data.Directory = os.ExpandEnv(s.Data.Directory)
	s.Logger.File = os.ExpandEnv(s.Logger.File)

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return s, nil
}

// Validate checks that required values are present and consistent.
func (s Settings) Validate() error {
	axes := map[string]string{
		"axis.time":      s.Axis.Time,
		"axis.height":    s.Axis.Height,
		"axis.latitude":  s.Axis.Latitude,
		"axis.longitude": s.Axis.Longitude,
	}
	for key, v := range axes {
		if v == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	if s.Variable.Height.Positive != "up" && s.Variable.Height.Positive != "down" {
		return fmt.Errorf("variable.height.positive must be up or down, got %q", s.Variable.Height.Positive)
	}
	for _, lvl := range []string{s.Logger.LevelConsole, s.Logger.LevelFile} {
		if _, err := ParseLevel(lvl); err != nil {
			return err
		}
	}
	if len(s.Aliases.Time) == 0 || len(s.Aliases.Height) == 0 || len(s.Aliases.Latitude) == 0 || len(s.Aliases.Longitude) == 0 {
		return fmt.Errorf("every coordinate role needs at least one alias")
	}
	return nil
}

// Levels understood by the logger settings.
var levels = []string{"debug", "info", "warning", "error", "critical"}

// ParseLevel normalizes a log level name.
func ParseLevel(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "warn" {
		n = "warning"
	}
	for _, l := range levels {
		if n == l {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown log level %q (expected one of %s)", name, strings.Join(levels, ", "))
}

// ParseBool accepts the loose boolean spellings found in schema files:
// 1/true/True/TRUE, and 0/false/False/FALSE or an empty string.
func ParseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "1", "true", "True", "TRUE":
		return true, nil
	case "", "0", "false", "False", "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// Flag is a boolean that also decodes from loose string spellings.
type Flag bool

// UnmarshalTOML implements toml.Unmarshaler.
func (f *Flag) UnmarshalTOML(v any) error {
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Errorf("failed to decode flag: %w", err)
	}
	b, err := ParseBool(s)
	if err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	b, err := ParseBool(node.Value)
	if err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (f Flag) MarshalYAML() (any, error) { return bool(f), nil }
