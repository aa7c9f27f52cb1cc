package eval

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"time"
)

// Fault is one failure recorded during a run.
type Fault struct {
	NodeID  int    `json:"nodeId,omitempty"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}

// String formats the fault as "<label>: <message>".
func (f Fault) String() string {
	if f.Label == "" {
		return f.Message
	}
	return f.Label + ": " + f.Message
}

// Result is the outcome of one evaluation run.
type Result struct {
	RunID     string
	Payload   []any
	Faults    []Fault
	Evaluated int
	Elapsed   time.Duration
}

// OK reports whether the run recorded no faults.
func (r *Result) OK() bool { return len(r.Faults) == 0 }

// Error joins every fault with "; ". It is empty when the run was clean.
func (r *Result) Error() string {
	msgs := make([]string, len(r.Faults))
	for i, f := range r.Faults {
		msgs[i] = f.String()
	}
	return strings.Join(msgs, "; ")
}

// EvalTimeMs returns the elapsed wall-clock time in milliseconds.
func (r *Result) EvalTimeMs() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

type wireResult struct {
	Payload    []any   `json:"payload"`
	Error      *string `json:"error"`
	EvalTimeMs float64 `json:"evalTimeMs"`
}

// MarshalJSON emits {payload, error, evalTimeMs}; error is null for a
// clean run.
func (r *Result) MarshalJSON() ([]byte, error) {
	w := wireResult{Payload: r.Payload, EvalTimeMs: r.EvalTimeMs()}
	if !r.OK() {
		msg := r.Error()
		w.Error = &msg
	}
	return json.Marshal(w)
}

// normalizePayload makes the terminal's payload field a list: nil stays
// nil, a slice is filtered of empty entries, and any other value becomes
// a one-element list.
func normalizePayload(v any) []any {
	if isEmpty(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		item := rv.Index(i).Interface()
		if !isEmpty(item) {
			out = append(out, item)
		}
	}
	return out
}

// isEmpty reports whether v is nil, false, zero, NaN or the empty string.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0 || math.IsNaN(x)
	case float32:
		return x == 0 || math.IsNaN(float64(x))
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Slice:
		return rv.IsNil()
	}
	return false
}
