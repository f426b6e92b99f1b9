package types

import (
	"fmt"
	"math"
	"reflect"
)

// Kind is the semantic value-kind of an AOT column.
type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindFloat
	KindList
)

var kindNames = map[Kind]string{
	KindString:  "string",
	KindInteger: "integer",
	KindFloat:   "float",
	KindList:    "list",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindString, KindInteger, KindFloat, KindList}
}

// String returns the name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the four kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind converts a kind name ("string", "integer", "float", "list") to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind: %s", name)
}

// MarshalText implements encoding.TextMarshaler so kinds print by name in YAML.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Accepts reports whether a decoded value fits the kind.
//
// Decoders do not agree on numeric representations, so integers are accepted
// for float columns and integral floats for integer columns. Lists accept any
// slice whose elements are all numbers.
func (k Kind) Accepts(value any) bool {
	switch k {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindInteger:
		return isInteger(value)
	case KindFloat:
		return isNumber(value)
	case KindList:
		return isNumberList(value)
	default:
		return false
	}
}

func isInteger(value any) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
	default:
		return false
	}
}

func isNumber(value any) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isNumberList(value any) bool {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if !isNumber(rv.Index(i).Interface()) {
			return false
		}
	}
	return true
}
