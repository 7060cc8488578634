// Package value defines the runtime value universe shared by the
// evaluator and the interpreter: a small tagged variant over the
// language's dynamic types, with its printable form and structural
// equality defined once here.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	Char
	Array
	Undef
)

// Value is the tagged runtime value. Only the field matching Kind is
// meaningful; values are copied by assignment (Go value semantics give
// us copy-on-read for free). An Array value's backing slice is shared
// on assignment, but nothing mutates an array in place: the array
// built-ins return fresh slices, and pushq/ArrayOf take a shallow copy
// with CloneArray.
type Value struct {
	kind Kind
	i    int32
	f    float32
	b    bool
	c    rune
	arr  []Value
}

// Undefined is the unique UNDEFINED sentinel value.
var Undefined = Value{kind: Undef}

func NewInt(i int32) Value     { return Value{kind: Int, i: i} }
func NewFloat(f float32) Value { return Value{kind: Float, f: f} }
func NewBool(b bool) Value     { return Value{kind: Bool, b: b} }
func NewChar(c rune) Value     { return Value{kind: Char, c: c} }

// NewArray takes ownership of elems; callers that need to keep their own
// copy should clone it first.
func NewArray(elems []Value) Value { return Value{kind: Array, arr: elems} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) Int() int32 { return v.i }
func (v Value) Float() float32 {
	return v.f
}
func (v Value) Bool() bool     { return v.b }
func (v Value) Char() rune     { return v.c }
func (v Value) Array() []Value { return v.arr }

// CloneArray returns a value whose backing array slice is a fresh copy,
// so mutation built-ins (ArrayPush/Pop/Replace) never alias the caller's
// storage. Non-array values are returned unchanged.
func (v Value) CloneArray() Value {
	if v.kind != Array {
		return v
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return Value{kind: Array, arr: cp}
}

// String renders the value the way `say` and array elements print it:
// floats always carry a decimal point, booleans print as TRUE/FALSE,
// and arrays print as a bracketed, comma-separated element list.
func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(int64(v.i), 10)
	case Float:
		s := strconv.FormatFloat(float64(v.f), 'f', -1, 32)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case Bool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case Char:
		return string(v.c)
	case Array:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Undef:
		return "UNDEFINED"
	default:
		return fmt.Sprintf("<invalid value kind %d>", v.kind)
	}
}

// Equal implements this language's structural equality: UNDEFINED ==
// UNDEFINED is true, arrays compare element-wise, mixed numeric kinds
// compare by promoting to float, and anything else across differing
// kinds is unequal.
func Equal(a, b Value) bool {
	if a.kind == Undef && b.kind == Undef {
		return true
	}
	if isNumeric(a.kind) && isNumeric(b.kind) {
		return asFloat(a) == asFloat(b)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Bool:
		return a.b == b.b
	case Char:
		return a.c == b.c
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNumeric(k Kind) bool { return k == Int || k == Float }

func asFloat(v Value) float64 {
	if v.kind == Int {
		return float64(v.i)
	}
	return float64(v.f)
}
