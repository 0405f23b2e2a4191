package table

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Key returns the equality key of a cell value. Two cells are equal for
// grouping purposes exactly when their keys are equal. The encoding is
// typeTag:length:payload so that values of different types, or strings that
// happen to contain the separator, never collide. NaN is equal to NaN.
func Key(v any) (string, bool) {
	var b strings.Builder
	if !writeKey(&b, v) {
		return "", false
	}
	return b.String(), true
}

func writeKey(b *strings.Builder, v any) bool {
	tag, payload, ok := keyParts(v)
	if !ok {
		return false
	}
	b.WriteString(tag)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(len(payload)))
	b.WriteByte(':')
	b.WriteString(payload)
	return true
}

func keyParts(v any) (tag, payload string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "nil", "", true
	case string:
		return "s", x, true
	case []byte:
		return "s", string(x), true
	case bool:
		return "b", strconv.FormatBool(x), true
	case int:
		return "i", strconv.FormatInt(int64(x), 10), true
	case int8:
		return "i", strconv.FormatInt(int64(x), 10), true
	case int16:
		return "i", strconv.FormatInt(int64(x), 10), true
	case int32:
		return "i", strconv.FormatInt(int64(x), 10), true
	case int64:
		return "i", strconv.FormatInt(x, 10), true
	case uint:
		return "u", strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return "u", strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return "u", strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return "u", strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return "u", strconv.FormatUint(x, 10), true
	case float32:
		return floatKey(float64(x))
	case float64:
		return floatKey(x)
	case time.Time:
		return "t", x.UTC().Format(time.RFC3339Nano), true
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return "", "", false
		}
		if _, again := dv.(driver.Valuer); again {
			return "", "", false
		}
		return keyParts(dv)
	case fmt.Stringer:
		return "S" + reflect.TypeOf(x).String(), x.String(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil", "", true
		}
		return keyParts(rv.Elem().Interface())
	case reflect.Array:
		var b strings.Builder
		for i := 0; i < rv.Len(); i++ {
			if !writeKey(&b, rv.Index(i).Interface()) {
				return "", "", false
			}
		}
		return "a" + rv.Type().String(), b.String(), true
	case reflect.String:
		return "s", rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i", strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "u", strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return floatKey(rv.Float())
	case reflect.Bool:
		return "b", strconv.FormatBool(rv.Bool()), true
	}
	return "", "", false
}

func floatKey(f float64) (string, string, bool) {
	if math.IsNaN(f) {
		return "f", "NaN", true
	}
	return "f", strconv.FormatUint(math.Float64bits(f), 16), true
}

// Format returns the stable string form of a cell value, used when cells
// are concatenated into composite columns.
func Format(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "<nil>", true
	case string:
		return x, true
	case []byte:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10), true
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return "", false
		}
		if _, again := dv.(driver.Valuer); again {
			return "", false
		}
		return Format(dv)
	case fmt.Stringer:
		return x.String(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "<nil>", true
		}
		return Format(rv.Elem().Interface())
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			for i := range raw {
				raw[i] = byte(rv.Index(i).Uint())
			}
			return hex.EncodeToString(raw), true
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			s, ok := Format(rv.Index(i).Interface())
			if !ok {
				return "", false
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, " ") + "]", true
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(v), true
	}
	return "", false
}

// Kind is the storage class inferred for a column, used when a table is
// written to a database or described in a schema.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindTime:
		return "timestamp"
	default:
		return "text"
	}
}

// InferKind returns the narrowest kind that holds every non-nil value.
// Mixed integers and floats widen to KindFloat; any other mix is KindString.
func InferKind(values []any) Kind {
	kind := KindNull
	for _, v := range values {
		k := kindOf(v)
		switch {
		case k == KindNull || k == kind:
		case kind == KindNull:
			kind = k
		case (kind == KindInt && k == KindFloat) || (kind == KindFloat && k == KindInt):
			kind = KindFloat
		default:
			return KindString
		}
	}
	return kind
}

func kindOf(v any) Kind {
	switch x := v.(type) {
	case nil:
		return KindNull
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return KindString
		}
		if _, again := dv.(driver.Valuer); again {
			return KindString
		}
		return kindOf(dv)
	}
	return KindString
}
