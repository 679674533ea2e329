// Package config loads, caches, and persists per-project harness
// configuration. Every load returns a configuration carrying the full
// default key set; user overrides from the project file are merged on top,
// one level deep. Loads are served from an mtime-checked in-process cache.
package config

import (
	"encoding/json"
	"path/filepath"
)

// On-disk layout under the working directory.
const (
	ConfigDirName      = ".claude"
	ConfigFileName     = "claude-harness.json"
	InitMarkerFileName = ".claude-harness-initialized"
)

// Strictness levels, ordered by enforcement severity.
const (
	StrictnessRelaxed  = "relaxed"
	StrictnessStandard = "standard"
	StrictnessStrict   = "strict"
)

// Config is a merged configuration. Unknown keys from the project file are
// preserved verbatim. Values follow JSON conventions: numbers read from
// disk arrive as float64, so use the typed accessors rather than asserting
// directly. Treat a loaded Config as read-only; mutate through SetSetting.
type Config map[string]any

// Strictness returns the active strictness level, defaulting to standard
// when the key is missing or malformed.
func (c Config) Strictness() string {
	if s, ok := c[KeyStrictness].(string); ok {
		switch s {
		case StrictnessRelaxed, StrictnessStandard, StrictnessStrict:
			return s
		}
	}
	return StrictnessStandard
}

// IsRelaxed reports whether the relaxed level is active.
func (c Config) IsRelaxed() bool { return c.Strictness() == StrictnessRelaxed }

// IsStandard reports whether the standard level is active.
func (c Config) IsStandard() bool { return c.Strictness() == StrictnessStandard }

// IsStrict reports whether the strict level is active.
func (c Config) IsStrict() bool { return c.Strictness() == StrictnessStrict }

// Bool returns a boolean setting, or false when missing or not a bool.
func (c Config) Bool(key string) bool {
	b, _ := c[key].(bool)
	return b
}

// Int returns an integer setting. JSON numbers unmarshal as float64, so
// both representations are accepted.
func (c Config) Int(key string) int {
	switch v := c[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Float returns a numeric setting as float64.
func (c Config) Float(key string) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// String returns a string setting, or empty when missing.
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Sub returns a nested table, or nil when the key is not a table.
func (c Config) Sub(key string) map[string]any {
	m, _ := c[key].(map[string]any)
	return m
}

// SubFloat reads a numeric value from a nested table, falling back to def
// when the table or key is absent.
func (c Config) SubFloat(table, key string, def float64) float64 {
	m := c.Sub(table)
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// SubBool reads a boolean from a nested table, falling back to def.
func (c Config) SubBool(table, key string, def bool) bool {
	m := c.Sub(table)
	if m == nil {
		return def
	}
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

// SubStrings reads a string list from a nested table. Lists arrive as
// []string from the defaults and as []any from a parsed file; both are
// accepted and non-strings are skipped.
func (c Config) SubStrings(table, key string) []string {
	m := c.Sub(table)
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// SubInt reads an integer value from a nested table, falling back to def.
func (c Config) SubInt(table, key string, def int) int {
	m := c.Sub(table)
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// clone deep-copies the configuration so mutations cannot reach the cache
// or the default table.
func (c Config) clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	case []string:
		s := make([]string, len(t))
		copy(s, t)
		return s
	default:
		return v
	}
}

// merge overlays user settings onto dst. Scalar keys overwrite; table
// values merge key-by-key one level deep; unknown keys are kept verbatim.
func merge(dst Config, user map[string]any) {
	for k, v := range user {
		uv, userIsTable := v.(map[string]any)
		dv, dstIsTable := dst[k].(map[string]any)
		if userIsTable && dstIsTable {
			for k2, v2 := range uv {
				dv[k2] = v2
			}
			continue
		}
		dst[k] = v
	}
}

// ParseValue interprets a setting literal from a command line or tool
// call: JSON when it parses, otherwise the raw string. "true" becomes a
// bool and "30" a number, matching how the values sit in the config file.
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// Path returns the config file location for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, ConfigDirName, ConfigFileName)
}

// MarkerPath returns the initialization marker location for a working
// directory.
func MarkerPath(workDir string) string {
	return filepath.Join(workDir, ConfigDirName, InitMarkerFileName)
}
