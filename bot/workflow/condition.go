package workflow

import "strconv"

// Op is a comparison operator of the condition language.
type Op string

const (
	OpEq     Op = "eq"
	OpNe     Op = "ne"
	OpGt     Op = "gt"
	OpGte    Op = "gte"
	OpLt     Op = "lt"
	OpLte    Op = "lte"
	OpExists Op = "exists"
)

// Condition is a restricted boolean expression over dot-paths into the
// data bag: a single comparison, or a conjunction/disjunction of nested
// conditions. No function calls, no side effects. A comparison against a
// missing variable is false, never an error.
type Condition struct {
	Path  string `json:"path,omitempty"`
	Op    Op     `json:"op,omitempty"`
	Value any    `json:"value,omitempty"`

	All []Condition `json:"all,omitempty"`
	Any []Condition `json:"any,omitempty"`
}

// Eval evaluates the condition against the data bag.
func (c Condition) Eval(data map[string]any) bool {
	if len(c.All) > 0 {
		for _, sub := range c.All {
			if !sub.Eval(data) {
				return false
			}
		}
		return true
	}
	if len(c.Any) > 0 {
		for _, sub := range c.Any {
			if sub.Eval(data) {
				return true
			}
		}
		return false
	}

	got, ok := lookupPath(data, c.Path)
	if c.Op == OpExists {
		return ok
	}
	if !ok {
		return false
	}
	return compare(got, c.Op, c.Value)
}

func compare(got any, op Op, want any) bool {
	// Numeric comparison whenever both sides coerce to a number; the data
	// bag stores raw user input as strings ("500000"), conditions usually
	// declare literal ints.
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	if gok && wok {
		switch op {
		case OpEq:
			return gf == wf
		case OpNe:
			return gf != wf
		case OpGt:
			return gf > wf
		case OpGte:
			return gf >= wf
		case OpLt:
			return gf < wf
		case OpLte:
			return gf <= wf
		}
		return false
	}

	gs, gok := toString(got)
	ws, wok := toString(want)
	if !gok || !wok {
		return false
	}
	switch op {
	case OpEq:
		return gs == ws
	case OpNe:
		return gs != ws
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}
