package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv renders KEY=value lines for every non-zero env-tagged field of c.
// Nested structs without an env tag are walked. Keys listed in secrets are masked.
func MarshalEnv(c any, secrets ...string) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("marshal env: expected struct, got %s", v.Kind())
	}

	masked := make(map[string]bool, len(secrets))
	for _, s := range secrets {
		masked[s] = true
	}

	var lines []string
	collect(v, masked, &lines)

	result := strings.Join(lines, "\n")
	if result != "" {
		result += "\n"
	}
	return result, nil
}

func collect(v reflect.Value, masked map[string]bool, lines *[]string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		val := v.Field(i)
		tag := field.Tag.Get("env")

		if tag == "" {
			if val.Kind() == reflect.Struct {
				collect(val, masked, lines)
			}
			continue
		}

		key := strings.Split(tag, ",")[0]
		if key == "" || val.IsZero() {
			continue
		}

		strVal := formatValue(val, field.Tag.Get("envSeparator"))
		if masked[key] {
			strVal = mask(strVal)
		}
		*lines = append(*lines, fmt.Sprintf("%s=%s", key, strVal))
	}
}

func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func formatValue(v reflect.Value, sep string) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int64:
		if d, ok := v.Interface().(fmt.Stringer); ok {
			return d.String()
		}
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		if sep == "" {
			sep = ","
		}
		parts := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts[i] = formatValue(v.Index(i), "")
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
