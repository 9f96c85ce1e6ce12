package cascade

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

func destStruct(dest any) (reflect.Value, error) {
	if dest == nil {
		return reflect.Value{}, fmt.Errorf("dest must be a non-nil pointer to struct")
	}
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("dest must be a non-nil pointer to struct")
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("dest must be a pointer to struct, got %s", s.Kind())
	}
	return s, nil
}

// fieldKey returns the lower-cased key for f: the cascade tag name, else the yaml tag name, else the field name. "-" means the field is skipped.
func fieldKey(f reflect.StructField) string {
	if name := tagName(f.Tag.Get("cascade")); name != "" {
		return strings.ToLower(name)
	}
	// yaml:"-" only drops the yaml name; the field is still loadable by its field name.
	if name := tagName(f.Tag.Get("yaml")); name != "" && name != "-" {
		return strings.ToLower(name)
	}
	return strings.ToLower(f.Name)
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return strings.TrimSpace(name)
}

func isRequired(f reflect.StructField) bool {
	_, opts, _ := strings.Cut(f.Tag.Get("cascade"), ",")
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == "required" {
			return true
		}
	}
	return false
}

// applier writes normalized maps into structs. present records the dot-paths of every assigned field.
type applier struct {
	present         map[string]bool
	disallowUnknown bool
}

// apply writes m into structVal, matching keys to settable fields case-insensitively and recursing into nested objects. basePath prefixes paths in errors and in present.
func (a *applier) apply(structVal reflect.Value, m map[string]any, basePath string) error {
	structType := structVal.Type()

	fieldIndex := map[string]int{}
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		if !structVal.Field(i).CanSet() {
			continue
		}
		key := fieldKey(f)
		if key == "-" || key == "" {
			continue
		}
		if prev, exists := fieldIndex[key]; exists {
			return fmt.Errorf("struct contains case-insensitive field key collision for %q: %s and %s", key, structType.Field(prev).Name, f.Name)
		}
		fieldIndex[key] = i
	}

	for key, raw := range m {
		path := joinPath(basePath, strings.ToLower(key))
		idx, ok := fieldIndex[strings.ToLower(key)]
		if !ok {
			if a.disallowUnknown {
				return fmt.Errorf("unknown key %q", path)
			}
			continue
		}
		if err := a.set(structVal.Field(idx), raw, path); err != nil {
			return err
		}
	}
	return nil
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// set assigns raw to fVal, allocating pointers and coercing scalars and scalar slices.
func (a *applier) set(fVal reflect.Value, raw any, path string) error {
	if fVal.Kind() == reflect.Ptr {
		if fVal.IsNil() {
			fVal.Set(reflect.New(fVal.Type().Elem()))
		}
		return a.set(fVal.Elem(), raw, path)
	}

	switch fVal.Kind() {
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object for struct field", path)
		}
		return a.apply(fVal, obj, path)

	case reflect.Slice:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice {
			return fmt.Errorf("%s: cannot coerce %T to %s", path, raw, fVal.Type())
		}
		elKind := fVal.Type().Elem().Kind()
		if !isScalarKind(elKind) {
			return fmt.Errorf("%s: unsupported slice element type %s", path, elKind)
		}
		slice := reflect.MakeSlice(fVal.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := setScalar(slice.Index(i), rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		fVal.Set(slice)

	default:
		if !isScalarKind(fVal.Kind()) {
			return fmt.Errorf("%s: unsupported field kind %s", path, fVal.Kind())
		}
		if err := setScalar(fVal, raw, path); err != nil {
			return err
		}
	}

	a.present[path] = true
	return nil
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setScalar(v reflect.Value, raw any, path string) error {
	coerced, err := coerceScalar(raw, v.Kind(), path)
	if err != nil {
		return err
	}
	switch c := coerced.(type) {
	case string:
		v.SetString(c)
	case bool:
		v.SetBool(c)
	case int64:
		if v.OverflowInt(c) {
			return fmt.Errorf("%s: %d overflows %s", path, c, v.Type())
		}
		v.SetInt(c)
	case float64:
		v.SetFloat(c)
	}
	return nil
}

// coerceScalar converts raw to a string, bool, int64 (for every int kind), or float64 (for every float kind). Strings are trimmed before parsing; floats truncate toward zero when
// the target is an int.
func coerceScalar(raw any, targetKind reflect.Kind, path string) (any, error) {
	switch targetKind {
	case reflect.String:
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
	case reflect.Bool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%s: cannot parse bool from %q", path, v)
			}
			return parsed, nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := raw.(type) {
		case int:
			return int64(v), nil
		case float64:
			return int64(v), nil
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: cannot parse int from %q", path, v)
			}
			return parsed, nil
		}
	case reflect.Float32, reflect.Float64:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: cannot parse float from %q", path, v)
			}
			return parsed, nil
		}
	default:
		return nil, fmt.Errorf("%s: unsupported scalar kind %s", path, targetKind)
	}
	return nil, fmt.Errorf("%s: cannot coerce %T to %s", path, raw, targetKind)
}

// validateRequiredFields returns an error naming the first cascade:",required" field that no source set. It recurses into nested structs and non-nil struct pointers.
func validateRequiredFields(structVal reflect.Value, basePath string, present map[string]bool) error {
	structType := structVal.Type()
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		key := fieldKey(f)
		if key == "-" || key == "" {
			continue
		}
		path := joinPath(basePath, key)
		if isRequired(f) && !present[path] {
			return fmt.Errorf("missing required key: %s", path)
		}

		fv := structVal.Field(i)
		if fv.Kind() == reflect.Ptr && !fv.IsNil() {
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Struct {
			if err := validateRequiredFields(fv, path, present); err != nil {
				return err
			}
		}
	}
	return nil
}
