package logo_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Literal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value logo.Value
		want  string
		kind  logo.ValueKind
	}{
		{"string", logo.String("ABC"), "'ABC'", logo.KindString},
		{"empty string", logo.String(""), "''", logo.KindString},
		{"int", logo.Int(42), "42", logo.KindInt},
		{"negative int64", logo.Int64(-7), "-7", logo.KindInt},
		{"float", logo.Float(0.25), "0.25", logo.KindFloat},
		{"large float", logo.Float(1e21), "1000000000000000000000", logo.KindFloat},
		{"bool", logo.Bool(false), "false", logo.KindBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.True(t, tt.value.IsValid())
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.want, tt.value.Literal())
		})
	}
}

func TestValue_Zero(t *testing.T) {
	t.Parallel()

	var v logo.Value

	assert.False(t, v.IsValid())
	assert.Nil(t, v.Interface())
	assert.Empty(t, v.Text())
	assert.Equal(t, "invalid", v.Kind().String())
}

func TestValue_Text(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "O'Brien", logo.String("O'Brien").Text())
	assert.Equal(t, "'O'Brien'", logo.String("O'Brien").Literal())
	assert.Equal(t, "12", logo.Int(12).Text())
	assert.Equal(t, "true", logo.Bool(true).Text())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestValueOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      interface{}
		want    logo.Value
		wantErr bool
	}{
		{name: "value", in: logo.Int(3), want: logo.Int(3)},
		{name: "string", in: "A", want: logo.String("A")},
		{name: "bool", in: true, want: logo.Bool(true)},
		{name: "int", in: 5, want: logo.Int(5)},
		{name: "int8", in: int8(-5), want: logo.Int(-5)},
		{name: "int32", in: int32(7), want: logo.Int(7)},
		{name: "int64", in: int64(1 << 40), want: logo.Int64(1 << 40)},
		{name: "uint16", in: uint16(9), want: logo.Int(9)},
		{name: "uint64", in: uint64(11), want: logo.Int(11)},
		{name: "integral float", in: 100.0, want: logo.Int(100)},
		{name: "fractional float", in: 12.5, want: logo.Float(12.5)},
		{name: "float32", in: float32(0.5), want: logo.Float(0.5)},
		{name: "json integer", in: json.Number("500"), want: logo.Int(500)},
		{name: "json decimal", in: json.Number("0.18"), want: logo.Float(0.18)},
		{name: "uint64 overflow", in: uint64(math.MaxUint64), wantErr: true},
		{name: "nil", in: nil, wantErr: true},
		{name: "slice", in: []int{1}, wantErr: true},
		{name: "bad json number", in: json.Number("x1"), wantErr: true},
		{name: "json exponent", in: json.Number("1e3"), want: logo.Int(1000)},
		{name: "nan", in: math.NaN(), wantErr: true},
		{name: "infinity", in: math.Inf(1), wantErr: true},
		{name: "float32 infinity", in: float32(math.Inf(-1)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := logo.ValueOf(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, logo.ErrInvalidValue)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloat_NonFinite(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := logo.Float(f)
		assert.False(t, v.IsValid())

		_, ok := logo.Compile(logo.NewCriteria().Set("a", v))
		assert.False(t, ok)
	}

	q, ok := logo.Compile(logo.NewCriteria().Set("a", logo.AnyOf{logo.Float(math.NaN()), logo.Float(1.5)}))
	require.True(t, ok)
	assert.Equal(t, "(A eq 1.5)", q)
}
