// Package scanvalue models the typed values a memory scan looks for and
// their little-endian byte encoding.
package scanvalue

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidInput is returned when user input cannot be parsed as the requested kind.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFormat is returned when a buffer is too short to decode the requested kind.
	ErrFormat = errors.New("buffer too short for value")

	// ErrUnsizedType is returned when a width is requested for Text without a value.
	// A text value's width depends on its length, so the kind alone cannot size a read.
	ErrUnsizedType = errors.New("type has no fixed width")
)

// Kind identifies one of the supported value types
type Kind int

const (
	Int32 Kind = iota
	Float32
	Int64
	Float64
	Text
)

var kindNames = map[Kind]string{
	Int32:   "int",
	Float32: "float",
	Int64:   "long",
	Float64: "double",
	Text:    "string",
}

// Kinds returns every kind in display order
func Kinds() []Kind {
	return []Kind{Int32, Float32, Int64, Float64, Text}
}

// ParseKind resolves a short kind name such as "int" or "double"
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown value type %q", ErrInvalidInput, name)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Description returns the label shown to users when picking a type
func (k Kind) Description() string {
	switch k {
	case Int32:
		return "Integer (4 bytes)"
	case Float32:
		return "Float (4 bytes)"
	case Int64:
		return "Long (8 bytes)"
	case Float64:
		return "Double (8 bytes)"
	case Text:
		return "String UTF-8"
	default:
		return "Unknown"
	}
}

// Width returns the fixed byte width of a numeric kind.
// Text has no width until a value exists and yields ErrUnsizedType.
func (k Kind) Width() (int, error) {
	switch k {
	case Int32, Float32:
		return 4, nil
	case Int64, Float64:
		return 8, nil
	case Text:
		return 0, fmt.Errorf("%s: %w", k, ErrUnsizedType)
	default:
		return 0, fmt.Errorf("%w: unknown kind %d", ErrInvalidInput, int(k))
	}
}

// Value is an immutable typed scan value
type Value struct {
	kind Kind
	bits uint64 // integer value or IEEE-754 bits for numeric kinds
	text string
}

func Int32Value(v int32) Value {
	return Value{kind: Int32, bits: uint64(uint32(v))}
}

func Float32Value(v float32) Value {
	return Value{kind: Float32, bits: uint64(math.Float32bits(v))}
}

func Int64Value(v int64) Value {
	return Value{kind: Int64, bits: uint64(v)}
}

func Float64Value(v float64) Value {
	return Value{kind: Float64, bits: math.Float64bits(v)}
}

// TextValue does not check v, see Validate
func TextValue(v string) Value {
	return Value{kind: Text, text: v}
}

// Parse builds a Value of the given kind from user input
func Parse(kind Kind, input string) (Value, error) {
	if kind == Text {
		v := TextValue(input)
		if err := v.Validate(); err != nil {
			return Value{}, err
		}
		return v, nil
	}

	s := strings.TrimSpace(input)
	switch kind {
	case Int32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidInput, input, kind)
		}
		return Int32Value(int32(v)), nil
	case Float32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidInput, input, kind)
		}
		return Float32Value(float32(v)), nil
	case Int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidInput, input, kind)
		}
		return Int64Value(v), nil
	case Float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidInput, input, kind)
		}
		return Float64Value(v), nil
	}

	return Value{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidInput, int(kind))
}

// Validate fails with ErrInvalidInput for text that Decode cannot give back:
// invalid UTF-8 or a trailing zero byte
func (v Value) Validate() error {
	if v.kind != Text {
		return nil
	}
	if !utf8.ValidString(v.text) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidInput, v.text)
	}
	if strings.HasSuffix(v.text, "\x00") {
		return fmt.Errorf("%w: %q ends with a zero byte", ErrInvalidInput, v.text)
	}
	return nil
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Int32() int32 {
	return int32(uint32(v.bits))
}

func (v Value) Float32() float32 {
	return math.Float32frombits(uint32(v.bits))
}

func (v Value) Int64() int64 {
	return int64(v.bits)
}

func (v Value) Float64() float64 {
	return math.Float64frombits(v.bits)
}

func (v Value) Text() string {
	return v.text
}

// Width returns the encoded length of the value in bytes
func (v Value) Width() int {
	if v.kind == Text {
		return len(v.text) + 1
	}
	w, _ := v.kind.Width()
	return w
}

// Encode returns the little-endian byte encoding; text is zero terminated
func (v Value) Encode() []byte {
	switch v.kind {
	case Int32, Float32:
		return binary.LittleEndian.AppendUint32(nil, uint32(v.bits))
	case Int64, Float64:
		return binary.LittleEndian.AppendUint64(nil, v.bits)
	default:
		out := make([]byte, 0, len(v.text)+1)
		out = append(out, v.text...)
		return append(out, 0)
	}
}

// Decode interprets raw memory as a value of the given kind.
// Numeric kinds read the first N bytes; text decodes the whole buffer and
// strips trailing zero bytes.
func Decode(kind Kind, b []byte) (Value, error) {
	if kind == Text {
		b = bytes.TrimRight(b, "\x00")
		if !utf8.Valid(b) {
			return TextValue(strings.ToValidUTF8(string(b), "�")), nil
		}
		return TextValue(string(b)), nil
	}

	width, err := kind.Width()
	if err != nil {
		return Value{}, err
	}
	if len(b) < width {
		return Value{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrFormat, kind, width, len(b))
	}

	switch kind {
	case Int32:
		return Int32Value(int32(binary.LittleEndian.Uint32(b))), nil
	case Float32:
		return Float32Value(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case Int64:
		return Int64Value(int64(binary.LittleEndian.Uint64(b))), nil
	default:
		return Float64Value(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	}
}

// Equal compares two values by their decoded content.
// Floats compare numerically, so NaN never equals anything.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case Int32, Int64:
		return a.bits == b.bits
	case Float32:
		return a.Float32() == b.Float32()
	case Float64:
		return a.Float64() == b.Float64()
	default:
		return a.text == b.text
	}
}

func (v Value) String() string {
	switch v.kind {
	case Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case Float32:
		return strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32)
	case Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case Float64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	default:
		return v.text
	}
}

// Format renders raw memory read for kind, or the decode error if it cannot
func Format(kind Kind, raw []byte) string {
	v, err := Decode(kind, raw)
	if err != nil {
		return err.Error()
	}
	return v.String()
}
