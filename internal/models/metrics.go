package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/alisaviation/metricslog/internal/helpers"
)

type Kind uint8

const (
	KindFloat Kind = iota + 1
	KindInt
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

var (
	ErrTypeMismatch    = errors.New("metric type mismatch")
	ErrUnsupportedType = errors.New("unsupported metric value type")
)

// TypeMismatchError is returned when a metric is recorded with a kind other
// than the one it was first recorded with.
type TypeMismatchError struct {
	Name string
	Have Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for metric %q: bound to %s, got %s", e.Name, e.Have, e.Got)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// Value is a single typed metric payload. The zero Value has no kind.
type Value struct {
	kind Kind
	f    float64
	i    int64
	s    string
}

func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

func Int(v int64) Value { return Value{kind: KindInt, i: v} }

func Text(v string) Value { return Value{kind: KindText, s: v} }

// ValueOf infers the kind of v from its dynamic Go type.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		if x.kind == 0 {
			return Value{}, ErrUnsupportedType
		}
		return x, nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(widenFloat32(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint64(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint64(x)
	case string:
		return Text(x), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

func fromUint64(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, x)
	}
	return Int(int64(x)), nil
}

// widenFloat32 converts x to the float64 with the same shortest decimal form,
// so float32(0.1) becomes 0.1 rather than 0.10000000149011612.
func widenFloat32(x float32) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
	if err != nil {
		return float64(x)
	}
	return f
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Float() float64 { return v.f }

func (v Value) Int() int64 { return v.i }

func (v Value) Text() string { return v.s }

// String renders the payload the way it appears in the metrics log.
// Text is quoted but embedded quotes are not escaped.
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return helpers.FormatFloat(v.f)
	case KindInt:
		return helpers.FormatInt(v.i)
	case KindText:
		return `"` + v.s + `"`
	default:
		return ""
	}
}

// MetricValue is the current state of one named metric: its last value and
// whether that value has been written since the last flush.
type MetricValue struct {
	value Value
	valid bool
}

func NewMetricValue(v Value) *MetricValue {
	return &MetricValue{value: v, valid: true}
}

// Set overwrites the value and marks it fresh. The kind is fixed by the
// first value the holder was created with.
func (m *MetricValue) Set(name string, v Value) error {
	if m.value.kind != v.kind {
		return &TypeMismatchError{Name: name, Have: m.value.kind, Got: v.kind}
	}
	m.value = v
	m.valid = true
	return nil
}

func (m *MetricValue) Reset() { m.valid = false }

func (m *MetricValue) HasValue() bool { return m.valid }

func (m *MetricValue) Kind() Kind { return m.value.kind }

func (m *MetricValue) Value() Value { return m.value }

func (m *MetricValue) String() string { return m.value.String() }

func (m *MetricValue) Clone() *MetricValue {
	c := *m
	return &c
}

// Entry is one element of a snapshot.
type Entry struct {
	Name  string
	Value *MetricValue
}
