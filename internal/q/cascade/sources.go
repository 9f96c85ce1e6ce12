package cascade

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// source supplies key/value data to the loader in normalized map form.
type source interface {
	// Providence describes the source; it is recorded for every source that contributes values.
	Providence() Providence

	// ToMap returns a normalized map:
	//   - keys are lower cased and contain no "." (dots expand into nested maps)
	//   - values are nested map[string]any, scalars (int, float64, bool, string), []int, []float64, []bool, []string, or nil
	ToMap() (map[string]any, error)
}

// sourceMap is a Go map source. Keys may use dot-notation.
type sourceMap struct {
	m map[string]any
}

// sourceYAMLFile is a YAML file read and normalized at load time. Empty files, and files holding only comments, contribute no values.
type sourceYAMLFile struct {
	path string
}

// sourceEnv maps configuration keys ("." allowed for nesting) to environment variable names. Ex: {"server.port": "SERVER_PORT"}.
type sourceEnv struct {
	keyToEnv map[string]string
}

func (s *sourceMap) Providence() Providence { return Providence{SourceType: SourceDefault} }

func (s *sourceMap) ToMap() (map[string]any, error) {
	out := map[string]any{}
	for k, v := range s.m {
		if err := insertKey(out, strings.Split(k, "."), v, k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *sourceYAMLFile) Providence() Providence {
	return Providence{SourceType: SourceYAMLFile, SourceIdentifier: ExpandPath(s.path)}
}

func (s *sourceYAMLFile) ToMap() (map[string]any, error) {
	if s.path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(ExpandPath(s.path))
	if err != nil {
		return nil, fmt.Errorf("read yaml file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return map[string]any{}, nil
	}

	var raw any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level YAML must be a mapping")
	}
	normalized, err := normalizeValue(obj)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	for k, v := range normalized.(map[string]any) {
		if err := insertKey(out, strings.Split(k, "."), v, k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *sourceEnv) Providence() Providence { return Providence{SourceType: SourceEnv} }

// ToMap reads the mapped variables. Missing and empty variables set no key.
func (s *sourceEnv) ToMap() (map[string]any, error) {
	out := map[string]any{}
	for key, envVar := range s.keyToEnv {
		if envVar == "" {
			continue
		}
		val, ok := os.LookupEnv(envVar)
		if !ok || val == "" {
			continue
		}
		if err := insertKey(out, strings.Split(key, "."), val, key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// insertKey sets value in obj along parts, lower casing each segment and creating intermediate maps. Map values are merged key by key. Setting a leaf twice, or a leaf where an object
// is, is a conflict. fullKey is only used in errors.
func insertKey(obj map[string]any, parts []string, value any, fullKey string) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid key")
	}
	part := strings.ToLower(parts[0])

	if len(parts) > 1 {
		child, exists := obj[part]
		if !exists {
			child = map[string]any{}
			obj[part] = child
		}
		m, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("key conflict at '%s': '%s' is not an object", fullKey, part)
		}
		return insertKey(m, parts[1:], value, fullKey)
	}

	if mv, ok := value.(map[string]any); ok {
		existing, exists := obj[part]
		if !exists {
			existing = map[string]any{}
			obj[part] = existing
		}
		dest, ok := existing.(map[string]any)
		if !ok {
			return fmt.Errorf("key conflict: key '%s' was already set", fullKey)
		}
		for k, v := range mv {
			if err := insertKey(dest, strings.Split(k, "."), v, fullKey+"."+strings.ToLower(k)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := validateValue(value); err != nil {
		return fmt.Errorf("invalid value for key '%s': %w", fullKey, err)
	}
	if _, exists := obj[part]; exists {
		return fmt.Errorf("key conflict: key '%s' was already set", fullKey)
	}
	obj[part] = value
	return nil
}

func validateValue(v any) error {
	switch v.(type) {
	case nil, int, float64, bool, string, []int, []float64, []bool, []string:
		return nil
	default:
		return fmt.Errorf("type %T is not allowed", v)
	}
}

// normalizeValue converts decoded YAML (map[string]any, []any, int, float64, bool, string) into the normalized types. Arrays must be homogeneous; an empty array becomes []string{}.
func normalizeValue(v any) (any, error) {
	switch vv := v.(type) {
	case nil, string, bool, int, float64:
		return vv, nil
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("key '%s': %w", k, err)
			}
			out[k] = ne
		}
		return out, nil
	case map[any]any:
		return nil, fmt.Errorf("mapping keys must be strings")
	case []any:
		if len(vv) == 0 {
			return []string{}, nil
		}
		switch vv[0].(type) {
		case string:
			return homogeneous[string](vv, "string")
		case bool:
			return homogeneous[bool](vv, "bool")
		case int:
			return homogeneous[int](vv, "int")
		case float64:
			return homogeneous[float64](vv, "number")
		default:
			return nil, fmt.Errorf("unsupported array element type %T", vv[0])
		}
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

func homogeneous[T any](in []any, what string) ([]T, error) {
	out := make([]T, len(in))
	for i, e := range in {
		t, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("array contains mixed types (expected %s)", what)
		}
		out[i] = t
	}
	return out, nil
}
