package guard

import "reflect"

// maxPlainDepth bounds the nesting copied into an environment.
const maxPlainDepth = 32

// PlainEnv returns a copy of env holding only plain data: nil, booleans,
// numbers, strings, and lists and string-keyed maps of those. Numbers and
// strings lose their named types. Structs, pointers, functions and channels
// are dropped: a map entry holding one is omitted and a list element becomes
// nil. Expressions therefore never reach a Go value with methods or fields.
func PlainEnv(env map[string]any) map[string]any {
	out := make(map[string]any, len(env))
	for k, v := range env {
		if p, ok := plain(reflect.ValueOf(v), 0); ok {
			out[k] = p
		}
	}
	return out
}

func plain(v reflect.Value, depth int) (any, bool) {
	if !v.IsValid() {
		return nil, true
	}
	if depth > maxPlainDepth {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, true
		}
		return plain(v.Elem(), depth)
	case reflect.Bool:
		return v.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.String:
		return v.String(), true
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, true
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i], _ = plain(v.Index(i), depth+1)
		}
		return out, true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		if v.IsNil() {
			return nil, true
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if p, ok := plain(iter.Value(), depth+1); ok {
				out[iter.Key().String()] = p
			}
		}
		return out, true
	default:
		return nil, false
	}
}
