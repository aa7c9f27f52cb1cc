package nodes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMath(t *testing.T) {
	want := map[string]float64{
		"add": 5, "sub": -1, "mul": 6, "div": 2.0 / 3.0,
		"min": 2, "max": 3, "pow": 8,
	}
	for _, op := range MathOps {
		got, err := ApplyMath(op, 2, 3)
		require.NoError(t, err, op)
		assert.InDelta(t, want[op], got, 1e-12, op)
	}
}

func TestApplyMathErrors(t *testing.T) {
	_, err := ApplyMath("div", 1, 0)
	assert.ErrorIs(t, err, ErrDivByZero)

	_, err = ApplyMath("mod", 1, 2)
	assert.EqualError(t, err, `unknown operation "mod"`)

	got, err := ApplyMath("pow", -8, 1.0/3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}
