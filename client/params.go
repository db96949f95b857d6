package client

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Flexibly parses an input map to API params (strings).
//
// The service rejects typed values, so everything is flattened to text: booleans become "1" or "0", times become Unix seconds, and slices are joined with commas (eg, for `extras` or `tags`). The input map is not modified.
func ParseParams(raw map[string]any) (url.Values, error) {
	out := make(url.Values, len(raw))
	for k := range raw {
		v := raw[k]
		if s, ok := scalarString(v); ok {
			out.Set(k, s)
			continue
		}
		ref := reflect.ValueOf(v)
		if ref.Kind() != reflect.Slice && ref.Kind() != reflect.Array {
			return nil, fmt.Errorf("can't marshal API param '%s' with type: %T", k, v)
		}
		elems := make([]string, 0, ref.Len())
		for i := 0; i < ref.Len(); i++ {
			s, ok := scalarString(ref.Index(i).Interface())
			if !ok {
				return nil, fmt.Errorf("can't marshal API param '%s' with type: %T", k, v)
			}
			elems = append(elems, s)
		}
		out.Set(k, strings.Join(elems, ","))
	}
	return out, nil
}

func scalarString(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case []byte:
		return string(v), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case int, uint, int8, int16, int32, int64, uint8, uint16, uint32, uint64, uintptr:
		return fmt.Sprint(v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return strconv.FormatInt(v.Unix(), 10), true
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}
