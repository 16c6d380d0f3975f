// FILE: logship/src/internal/format/sanitize.go
package format

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

const maxDepth = 32

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
)

// SanitizeProperties returns a copy of props that encoding/json can always
// encode. The input map is never modified.
func SanitizeProperties(props map[string]any) map[string]any {
	if len(props) == 0 {
		return nil
	}
	s := sanitizer{seen: make(map[uintptr]bool)}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = s.value(reflect.ValueOf(v), 0)
	}
	return out
}

// Sanitize converts an arbitrary value into one encoding/json accepts.
// Cycles become "<cycle>", unencodable kinds become their type name,
// errors become their message, non-finite floats become strings.
func Sanitize(v any) any {
	s := sanitizer{seen: make(map[uintptr]bool)}
	return s.value(reflect.ValueOf(v), 0)
}

type sanitizer struct {
	seen map[uintptr]bool
}

func (s *sanitizer) value(v reflect.Value, depth int) any {
	if !v.IsValid() {
		return nil
	}
	if depth > maxDepth {
		return "<max depth>"
	}

	// Nil pointers and interfaces first, so marshaler checks never see them
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}

	t := v.Type()
	if t.Implements(errorType) && v.CanInterface() {
		return s.errorText(v.Interface().(error))
	}
	if (t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)) && v.CanInterface() {
		return s.marshaled(v.Interface())
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(v.Complex())
	case reflect.Interface:
		return s.value(v.Elem(), depth)
	case reflect.Pointer:
		addr := v.Pointer()
		if s.seen[addr] {
			return "<cycle>"
		}
		s.seen[addr] = true
		defer delete(s.seen, addr)
		return s.value(v.Elem(), depth+1)
	case reflect.Map:
		addr := v.Pointer()
		if s.seen[addr] {
			return "<cycle>"
		}
		s.seen[addr] = true
		defer delete(s.seen, addr)

		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = s.value(iter.Value(), depth+1)
		}
		return out
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return v.Bytes()
		}
		addr := v.Pointer()
		if s.seen[addr] {
			return "<cycle>"
		}
		s.seen[addr] = true
		defer delete(s.seen, addr)
		return s.list(v, depth)
	case reflect.Array:
		return s.list(v, depth)
	case reflect.Struct:
		return s.object(v, depth)
	default:
		// chan, func, unsafe.Pointer
		return "<" + t.String() + ">"
	}
}

func (s *sanitizer) list(v reflect.Value, depth int) []any {
	out := make([]any, v.Len())
	for i := range out {
		out[i] = s.value(v.Index(i), depth+1)
	}
	return out
}

func (s *sanitizer) object(v reflect.Value, depth int) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = s.value(v.Field(i), depth+1)
	}
	return out
}

// errorText runs Error() under the same guard as marshaled, since error
// wrappers around nil values panic there.
func (s *sanitizer) errorText(err error) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("<unserializable %T: panic: %v>", err, r)
		}
	}()
	return err.Error()
}

func (s *sanitizer) marshaled(v any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("<unserializable %T: panic: %v>", v, r)
		}
	}()

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unserializable %T: %v>", v, err)
	}
	return json.RawMessage(b)
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}
