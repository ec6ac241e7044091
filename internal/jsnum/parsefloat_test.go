package jsnum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	for _, tc := range [...]struct {
		name  string
		input string
		want  float64
	}{
		{`integer`, `42`, 42},
		{`decimal`, `42.5`, 42.5},
		{`leading whitespace`, "  \t7.25", 7.25},
		{`trailing garbage`, `42.5abc`, 42.5},
		{`negative`, `-3`, -3},
		{`explicit plus`, `+3.5`, 3.5},
		{`leading dot`, `.5`, 0.5},
		{`trailing dot`, `5.`, 5},
		{`exponent`, `1e3`, 1000},
		{`negative exponent`, `25e-1`, 2.5},
		{`incomplete exponent`, `2e`, 2},
		{`incomplete signed exponent`, `2e+`, 2},
		{`infinity`, `Infinity`, math.Inf(1)},
		{`negative infinity`, `-Infinityx`, math.Inf(-1)},
		{`overflow`, `1e400`, math.Inf(1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseFloat(tc.input))
		})
	}
}

func TestParseFloat_nan(t *testing.T) {
	for _, input := range [...]string{``, `notanumber`, `.`, `-`, `+.`, `e5`, `infinity`, `abc42`} {
		assert.True(t, math.IsNaN(ParseFloat(input)), input)
	}
}

func TestOrZero(t *testing.T) {
	assert.Equal(t, 0.0, OrZero(math.NaN()))
	assert.Equal(t, 0.0, OrZero(math.Copysign(0, -1)))
	assert.False(t, math.Signbit(OrZero(math.Copysign(0, -1))))
	assert.Equal(t, 1.5, OrZero(1.5))
	assert.Equal(t, -2.0, OrZero(-2))
}
