// Package script evaluates small numeric Lisp expressions for expression
// nodes. It wraps zygomys in a sandboxed environment; each call gets a
// fresh interpreter with the node's inputs bound as variables.
package script

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultTimeout is the hard limit for a single evaluation.
const DefaultTimeout = 2 * time.Second

// Error is a parse or runtime error in an expression.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates expressions. The zero value is not usable; call New.
type Engine struct {
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds how long one evaluation may run.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New creates an expression engine.
func New(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type result struct {
	val float64
	err error
}

// Eval runs source with vars bound as global symbols and returns the value
// of the last expression as a number. Booleans evaluate to 0 or 1. The
// symbol pi is predefined unless vars overrides it.
//
// A timed-out evaluation keeps running in the background until the
// interpreter returns; its result is discarded.
func (e *Engine) Eval(source string, vars map[string]float64) (float64, error) {
	if strings.TrimSpace(source) == "" {
		return 0, &Error{Message: "empty expression"}
	}
	bound := map[string]float64{"pi": math.Pi}
	for k, v := range vars {
		bound[k] = v
	}
	prelude, err := bindings(bound)
	if err != nil {
		return 0, err
	}

	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		v, err := run(prelude + preprocessSource(source))
		ch <- result{val: v, err: err}
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.val, res.err
	case <-timer.C:
		return 0, fmt.Errorf("evaluation timed out after %s", e.timeout)
	}
}

// run evaluates source in a fresh sandbox. Sandbox mode keeps expressions
// away from the filesystem and syscalls.
func run(source string) (float64, error) {
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env)

	if err := env.LoadString(source); err != nil {
		return 0, parseZygomysError(err)
	}
	out, err := env.Run()
	if err != nil {
		return 0, parseZygomysError(err)
	}
	return toFloat64(out)
}

// bindings renders vars as (def name value) forms on a single line so that
// line numbers in errors still match the user's source.
func bindings(vars map[string]float64) (string, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		if !identPattern.MatchString(name) {
			return "", fmt.Errorf("invalid variable name %q", name)
		}
		lit, err := floatLiteral(vars[name])
		if err != nil {
			return "", fmt.Errorf("variable %s: %w", name, err)
		}
		fmt.Fprintf(&b, "(def %s %s)", name, lit)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	return b.String(), nil
}

var identPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// floatLiteral formats v so that zygomys reads it back as a float.
func floatLiteral(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("value %v is not finite", v)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

// toFloat64 extracts a number from a Sexp.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		if v.Val {
			return 1, nil
		}
		return 0, nil
	}
	if s == nil {
		return 0, &Error{Message: "expression produced no value"}
	}
	return 0, &Error{Message: fmt.Sprintf("expected number, got %s", s.SexpString(nil))}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an *Error, extracting
// the line number when the message carries one.
func parseZygomysError(err error) *Error {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return &Error{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	return &Error{Message: strings.TrimSpace(msg)}
}
