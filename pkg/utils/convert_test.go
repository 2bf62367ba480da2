package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToFloat64(t *testing.T) {
	type tt struct {
		input   interface{}
		wantf64 float64
	}
	cases := []tt{
		{input: float64(1.1), wantf64: 1.1},
		{input: int32(1), wantf64: 1.0},
		{input: int64(1), wantf64: 1.0},
		{input: int(1), wantf64: 1.0},
		{input: uint32(1), wantf64: 1.0},
		{input: uint64(1), wantf64: 1.0},
		{input: "1", wantf64: 1.0},
		{input: "1.5", wantf64: 1.5},
	}
	for i, c := range cases {
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			f, err := ConvertToFloat64(c.input)
			require.NoError(t, err)
			assert.InDelta(t, c.wantf64, f, 1e-9)
		})
	}

	_, err := ConvertToFloat64("not a number")
	require.Error(t, err)
	_, err = ConvertToFloat64(struct{}{})
	require.Error(t, err)
	_, err = ConvertToFloat64(nil)
	require.Error(t, err)
}

func TestConvertToString(t *testing.T) {
	assert.Equal(t, "abc", ConvertToString("abc"))
	assert.Equal(t, "abc", ConvertToString([]byte("abc")))
	assert.Equal(t, "", ConvertToString(nil))
	assert.Equal(t, "42", ConvertToString(42))
}

func TestConvertToInt64(t *testing.T) {
	v, err := ConvertToInt64("17")
	require.NoError(t, err)
	assert.Equal(t, int64(17), v)

	v, err = ConvertToInt64(17.9)
	require.NoError(t, err)
	assert.Equal(t, int64(17), v)
}
