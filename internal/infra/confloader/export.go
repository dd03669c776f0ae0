package confloader

import (
	"reflect"
	"strings"
	"time"
)

// ToMap converts a koanf-tagged struct into nested maps keyed by tag name,
// the shape a config file would have. Durations become strings such as
// "1m30s". Fields without a koanf tag are skipped.
func ToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return map[string]any{}
	}
	return structMap(rv)
}

func structMap(rv reflect.Value) map[string]any {
	out := make(map[string]any)
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("koanf"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}

		fv := rv.Field(i)
		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				break
			}
			fv = fv.Elem()
		}

		switch {
		case fv.Kind() == reflect.Pointer:
			out[tag] = nil
		case fv.Type() == durationType:
			out[tag] = time.Duration(fv.Int()).String()
		case fv.Kind() == reflect.Struct:
			out[tag] = structMap(fv)
		default:
			out[tag] = fv.Interface()
		}
	}
	return out
}
