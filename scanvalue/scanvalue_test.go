package scanvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntEncodesLittleEndian(t *testing.T) {
	v, err := Parse(Int32, "100")
	require.NoError(t, err)

	assert.Equal(t, []byte{0x64, 0x00, 0x00, 0x00}, v.Encode())
	assert.Equal(t, 4, v.Width())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		kind  Kind
		input string
	}{
		{Int32, "abc"},
		{Int32, "4294967296"},
		{Int64, "1.5"},
		{Float32, "one"},
		{Float64, ""},
		{Text, "\xffgold"},
		{Text, "gold\x00"},
	}

	for _, tc := range cases {
		_, err := Parse(tc.kind, tc.input)
		assert.ErrorIs(t, err, ErrInvalidInput, "%s %q", tc.kind, tc.input)
	}
}

func TestParseTextKeepsWhitespace(t *testing.T) {
	v, err := Parse(Text, "  gold ")
	require.NoError(t, err)
	assert.Equal(t, "  gold ", v.Text())
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, TextValue("gold").Validate())
	assert.NoError(t, TextValue("").Validate())
	assert.NoError(t, TextValue("go\x00ld").Validate())
	assert.NoError(t, Int32Value(7).Validate())

	for _, bad := range []Value{TextValue("\xffgold"), TextValue("gold\x00")} {
		assert.ErrorIs(t, bad.Validate(), ErrInvalidInput, "%q", bad.Text())
	}
}

// Every value Parse accepts decodes back to itself
func TestParsedTextRoundTrips(t *testing.T) {
	for _, input := range []string{"gold", "  gold ", "héllo", ""} {
		v, err := Parse(Text, input)
		require.NoError(t, err)

		got, err := Decode(Text, v.Encode())
		require.NoError(t, err)
		assert.True(t, Equal(v, got), "%q decoded as %q", input, got.Text())
	}
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		Int32Value(0),
		Int32Value(-1),
		Int32Value(math.MaxInt32),
		Float32Value(3.25),
		Float32Value(-0.5),
		Int64Value(math.MinInt64),
		Int64Value(1 << 40),
		Float64Value(98765.5),
		TextValue(""),
		TextValue("hello"),
		TextValue("héllo wörld"),
	}

	for _, v := range values {
		encoded := v.Encode()
		assert.Len(t, encoded, v.Width(), "width of %s %q", v.Kind(), v)

		decoded, err := Decode(v.Kind(), encoded)
		require.NoError(t, err)
		assert.True(t, Equal(v, decoded), "round trip of %s %q gave %q", v.Kind(), v, decoded)
	}
}

func TestTextEncodingAppendsTerminator(t *testing.T) {
	v := TextValue("ab")
	assert.Equal(t, []byte{'a', 'b', 0}, v.Encode())
	assert.Equal(t, 3, v.Width())

	// width counts UTF-8 bytes, not characters
	assert.Equal(t, 3, TextValue("é").Width())
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := Decode(Int64, []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Decode(Float32, nil)
	assert.ErrorIs(t, err, ErrFormat)

	v, err := Decode(Text, nil)
	require.NoError(t, err)
	assert.Equal(t, "", v.Text())
}

func TestDecodeUsesLeadingBytes(t *testing.T) {
	v, err := Decode(Int32, []byte{0x2a, 0, 0, 0, 0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.Int32())
}

func TestDecodeTextStripsTrailingZeros(t *testing.T) {
	v, err := Decode(Text, []byte{'g', 'o', 'l', 'd', 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, "gold", v.Text())
}

func TestKindWidth(t *testing.T) {
	for kind, want := range map[Kind]int{Int32: 4, Float32: 4, Int64: 8, Float64: 8} {
		got, err := kind.Width()
		require.NoError(t, err)
		assert.Equal(t, want, got, kind.String())
	}

	_, err := Text.Width()
	assert.ErrorIs(t, err, ErrUnsizedType)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int32Value(7), Int32Value(7)))
	assert.False(t, Equal(Int32Value(7), Int64Value(7)))
	assert.False(t, Equal(TextValue("a"), TextValue("ab")))
	assert.True(t, Equal(Float64Value(0), Float64Value(math.Copysign(0, -1))))

	nan := Float32Value(float32(math.NaN()))
	assert.False(t, Equal(nan, nan))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Double")
	require.NoError(t, err)
	assert.Equal(t, Float64, k)

	_, err = ParseKind("short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "100", Format(Int32, []byte{0x64, 0, 0, 0}))
	assert.Equal(t, "1.5", Format(Float64, Float64Value(1.5).Encode()))
	assert.Equal(t, "hi", Format(Text, []byte{'h', 'i', 0}))
	assert.Contains(t, Format(Int64, []byte{1}), ErrFormat.Error())
}

func TestDescriptions(t *testing.T) {
	assert.Equal(t, "Integer (4 bytes)", Int32.Description())
	assert.Equal(t, "String UTF-8", Text.Description())
	assert.Len(t, Kinds(), 5)
}
