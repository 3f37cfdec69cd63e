package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "POPCOMPLETE_"

// ApplyEnv overrides settings from environment variables starting with
// prefix. POPCOMPLETE_COMPLETION_MRU_CAPACITY sets completion.mru_capacity.
func (c *Config) ApplyEnv(prefix string) error {
	return c.applyEnviron(os.Environ(), prefix)
}

func (c *Config) applyEnviron(environ []string, prefix string) error {
	overrides := make(map[string]any)
	for _, env := range environ {
		if !strings.HasPrefix(env, prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		section, key, ok := envToPath(strings.TrimPrefix(name, prefix))
		if !ok {
			continue
		}
		setByPath(overrides, section, key, parseValue(value))
	}
	if len(overrides) == 0 {
		return nil
	}

	// Round-trip through TOML so overrides decode exactly like file values.
	data, err := toml.Marshal(overrides)
	if err != nil {
		return &ParseError{Path: "environment", Message: err.Error(), Err: err}
	}
	if err := decode(c, "environment", FormatTOML, data); err != nil {
		return err
	}
	return nil
}

// envToPath converts COMPLETION_MRU_CAPACITY to ("completion", "mru_capacity").
func envToPath(name string) (section, key string, ok bool) {
	section, key, ok = strings.Cut(strings.ToLower(name), "_")
	if !ok || section == "" || key == "" {
		return "", "", false
	}
	return section, key, true
}

// parseValue attempts to parse the string value into an appropriate type.
// Durations stay strings; the Duration type parses them.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if strings.HasPrefix(s, "[") {
		var v []any
		if err := yaml.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

func setByPath(data map[string]any, section, key string, value any) {
	m, ok := data[section].(map[string]any)
	if !ok {
		m = make(map[string]any)
		data[section] = m
	}
	m[key] = value
}
