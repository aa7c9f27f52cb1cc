// Package nodes holds helpers shared by the node plug-ins.
package nodes

import (
	"errors"
	"fmt"
	"math"
)

// ErrDivByZero is returned by ApplyMath for div with a zero divisor.
var ErrDivByZero = errors.New("division by zero")

// MathOps lists the operations accepted by ApplyMath.
var MathOps = []string{"add", "sub", "mul", "div", "min", "max", "pow"}

// ApplyMath applies a named binary operation.
func ApplyMath(op string, a, b float64) (float64, error) {
	switch op {
	case "add":
		return a + b, nil
	case "sub":
		return a - b, nil
	case "mul":
		return a * b, nil
	case "div":
		if b == 0 {
			return 0, ErrDivByZero
		}
		return a / b, nil
	case "min":
		return math.Min(a, b), nil
	case "max":
		return math.Max(a, b), nil
	case "pow":
		return math.Pow(a, b), nil
	}
	return 0, fmt.Errorf("unknown operation %q", op)
}
