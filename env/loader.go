package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Loader produces a flat property map from some configuration source.
type Loader interface {
	Load() (map[string]string, error)
}

// YAMLLoader reads properties from a YAML file. Nested mappings are
// flattened into dotted keys, so
//
//	inject:
//	  default-scope: application
//
// becomes "inject.default-scope". A missing file is not an error; the
// loader simply contributes nothing.
type YAMLLoader struct {
	Path string
}

func (l *YAMLLoader) Load() (map[string]string, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("env: parsing %s: %w", l.Path, err)
	}

	props := make(map[string]string)
	flatten("", raw, props)
	return props, nil
}

func flatten(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for k, nested := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, nested, out)
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprintf("%v", v)
		}
	}
}

// DotenvLoader reads KEY=value properties from a .env file. Keys are
// lower-cased, "__" becomes "." and "_" becomes "-", so
// INJECT__DEFAULT_SCOPE maps to "inject.default-scope". A missing file
// contributes nothing.
type DotenvLoader struct {
	Path string
}

func (l *DotenvLoader) Load() (map[string]string, error) {
	if _, err := os.Stat(l.Path); os.IsNotExist(err) {
		return nil, nil
	}
	raw, err := godotenv.Read(l.Path)
	if err != nil {
		return nil, fmt.Errorf("env: parsing %s: %w", l.Path, err)
	}
	props := make(map[string]string, len(raw))
	for k, v := range raw {
		props[normalizeKey(k)] = v
	}
	return props, nil
}

// OSLoader reads properties from process environment variables carrying the
// given prefix. The prefix is stripped and the rest of the key normalized
// like DotenvLoader does.
type OSLoader struct {
	Prefix string
}

func (l *OSLoader) Load() (map[string]string, error) {
	props := make(map[string]string)
	for _, entry := range os.Environ() {
		if !strings.HasPrefix(entry, l.Prefix) {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		key := strings.TrimPrefix(parts[0], l.Prefix)
		props[normalizeKey(key)] = parts[1]
	}
	return props, nil
}

// normalizeKey maps an environment-variable name onto the dotted,
// hyphenated property form: "__" separates segments and remaining single
// underscores stand in for hyphens, so INJECT__DEFAULT_SCOPE becomes
// "inject.default-scope".
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "__", ".")
	return strings.ReplaceAll(key, "_", "-")
}
