package sequence

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Predicate decides a Conditional branch from the run's context at the
// moment execution reaches it.
type Predicate func(ctx *Context) bool

// Op is a comparison operator for Compare.
type Op string

const (
	OpEq     Op = "eq"
	OpNe     Op = "ne"
	OpLt     Op = "lt"
	OpLe     Op = "le"
	OpGt     Op = "gt"
	OpGe     Op = "ge"
	OpTruthy Op = "truthy"
	OpFalsy  Op = "falsy"
	OpExists Op = "exists"
)

var opAliases = map[string]Op{
	"eq": OpEq, "==": OpEq, "=": OpEq,
	"ne": OpNe, "!=": OpNe,
	"lt": OpLt, "<": OpLt,
	"le": OpLe, "<=": OpLe,
	"gt": OpGt, ">": OpGt,
	"ge": OpGe, ">=": OpGe,
	"truthy": OpTruthy,
	"falsy":  OpFalsy,
	"exists": OpExists,
}

// ParseOp resolves an operator name or symbol.
func ParseOp(name string) (Op, error) {
	if op, ok := opAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown operator %q", name)
}

// Compare builds a predicate testing a context variable against value.
// Ordering operators compare numerically when both sides are numbers and
// lexically when both are strings; mismatched types compare false.
func Compare(name string, op Op, value any) Predicate {
	return func(ctx *Context) bool {
		v, ok := ctx.Get(name)
		switch op {
		case OpExists:
			return ok
		case OpTruthy:
			return ok && truthy(v)
		case OpFalsy:
			return !ok || !truthy(v)
		}
		if !ok {
			return op == OpNe
		}
		switch op {
		case OpEq:
			return equal(v, value)
		case OpNe:
			return !equal(v, value)
		}
		c, ok := order(v, value)
		if !ok {
			return false
		}
		switch op {
		case OpLt:
			return c < 0
		case OpLe:
			return c <= 0
		case OpGt:
			return c > 0
		case OpGe:
			return c >= 0
		}
		return false
	}
}

// VarTruthy tests a variable for truthiness.
func VarTruthy(name string) Predicate { return Compare(name, OpTruthy, nil) }

// VarEquals tests a variable for equality.
func VarEquals(name string, value any) Predicate { return Compare(name, OpEq, value) }

// Not negates p.
func Not(p Predicate) Predicate {
	return func(ctx *Context) bool { return !p(ctx) }
}

// All passes when every predicate passes.
func All(ps ...Predicate) Predicate {
	return func(ctx *Context) bool {
		for _, p := range ps {
			if !p(ctx) {
				return false
			}
		}
		return true
	}
}

// Any passes when at least one predicate passes.
func Any(ps ...Predicate) Predicate {
	return func(ctx *Context) bool {
		for _, p := range ps {
			if p(ctx) {
				return true
			}
		}
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func equal(a, b any) bool {
	_, aStr := a.(string)
	_, bStr := b.(string)
	if !aStr || !bStr {
		fa, okA := toFloat(a)
		fb, okB := toFloat(b)
		if okA && okB {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func order(a, b any) (int, bool) {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs), true
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if !okA || !okB {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	default:
		return 0, true
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && x != "false" && x != "0"
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}
	return true
}
