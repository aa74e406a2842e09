package expr

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds. The zero Value has KindInvalid.
const (
	KindInvalid Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	default:
		return "Invalid"
	}
}

// Value is the scalar/array type produced by literals, parameters and evaluation.
// Values are immutable: constructors and accessors copy array contents.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array Value holding a copy of elems.
// Elements may be of mixed kinds.
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// FromInt converts an int to a Number.
func FromInt(i int) Value { return Number(float64(i)) }

// FromInt32 converts an int32 to a Number.
func FromInt32(i int32) Value { return Number(float64(i)) }

// FromInt64 converts an int64 to a Number.
func FromInt64(i int64) Value { return Number(float64(i)) }

// FromFloat32 converts a float32 to a Number.
func FromFloat32(f float32) Value { return Number(float64(f)) }

// FromFloat64 converts a float64 to a Number.
func FromFloat64(f float64) Value { return Number(f) }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsBool returns the boolean held by v and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v and whether v is a Number.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string held by v and whether v is a String.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns a copy of the elements held by v and whether v is an Array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out, true
}

// Len returns the number of elements of an Array, or 0 for other kinds.
func (v Value) Len() int { return len(v.arr) }

// Equal reports structural equality: same variant and same value.
// Numbers compare with float equality, so NaN never equals NaN.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Interface converts v into the equivalent plain Go value
// (bool, float64, string, []any). The zero Value converts to nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes v as the matching JSON scalar or array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindInvalid {
		return nil, fmt.Errorf("%w: zero value", ErrInvalidValue)
	}
	return json.Marshal(v.Interface())
}

// String renders v for display. Strings are shown without quotes.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	case KindArray:
		return joinValues(v.arr, Value.String)
	default:
		return "<invalid>"
	}
}

// GoString renders v with its variant name, e.g. Number(1) or String("a").
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return "String(" + strconv.Quote(v.s) + ")"
	case KindArray:
		return "Array(" + joinValues(v.arr, Value.GoString) + ")"
	case KindInvalid:
		return "Invalid"
	default:
		return v.kind.String() + "(" + v.String() + ")"
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func joinValues(vals []Value, format func(Value) string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(format(e))
	}
	sb.WriteByte(']')
	return sb.String()
}

// ValueOf converts a host Go value into a Value.
//
// Accepts:
//   - Value: used directly
//   - bool, string
//   - all signed and unsigned integer kinds, float32, float64, json.Number
//   - slices and arrays of any accepted type
//
// nil, maps, structs and other kinds return an error wrapping ErrInvalidValue.
func ValueOf(x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Value{}, fmt.Errorf("%w: null", ErrInvalidValue)
	case Value:
		if !val.IsValid() {
			return Value{}, fmt.Errorf("%w: zero value", ErrInvalidValue)
		}
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return FromFloat32(val), nil
	case int:
		return FromInt(val), nil
	case int64:
		return FromInt64(val), nil
	case int32:
		return FromInt32(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %s: %v", ErrInvalidValue, val, err)
		}
		return Number(f), nil
	case []Value:
		return Array(val...), nil
	case []any:
		elems := make([]Value, len(val))
		for i, e := range val {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return Value{kind: KindArray, arr: elems}, nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())
		for i := range elems {
			ev, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return Value{kind: KindArray, arr: elems}, nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, x)
	}
}

// Params binds parameter names to values for one evaluation.
type Params map[string]Value

// ParamsOf converts a map of host values with ValueOf.
func ParamsOf(vars map[string]any) (Params, error) {
	params := make(Params, len(vars))
	for name, raw := range vars {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		params[name] = v
	}
	return params, nil
}
