package vm

import (
	"strings"

	"github.com/rickroll-lang/rickroll/langerr"
	"github.com/rickroll-lang/rickroll/value"
)

// Builtin is a native function: it receives whatever arguments the queue
// held at call time and returns a value, exactly like a user Verse.
type Builtin func(interp *Interpreter, args []value.Value) (value.Value, error)

// builtins is the fixed table of native functions every program can
// call. None of them mutate their array arguments; each returns a
// fresh array so a caller's own copy is never touched.
var builtins = map[string]Builtin{
	"ArrayOf":      builtinArrayOf,
	"ArrayLength":  builtinArrayLength,
	"ArrayPush":    builtinArrayPush,
	"ArrayPop":     builtinArrayPop,
	"ArrayReplace": builtinArrayReplace,
	"PutChar":      builtinPutChar,
	"ReadLine":     builtinReadLine,
}

func builtinArrayOf(interp *Interpreter, args []value.Value) (value.Value, error) {
	elems := make([]value.Value, len(args))
	for i, a := range args {
		elems[i] = a.CloneArray()
	}
	return value.NewArray(elems), nil
}

func builtinArrayLength(interp *Interpreter, args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind() != value.Array {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "ArrayLength expects a single array argument")
	}
	return value.NewInt(int32(len(args[0].Array()))), nil
}

// builtinArrayPush inserts a value at a given index (spec arity: array,
// index, value), not an end-append — the name is the language's, not a
// slice-append in the Go sense.
func builtinArrayPush(interp *Interpreter, args []value.Value) (value.Value, error) {
	if len(args) != 3 || args[0].Kind() != value.Array || args[1].Kind() != value.Int {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "ArrayPush expects an array, an index, and a value")
	}
	src := args[0].Array()
	idx := int(args[1].Int())
	if idx < 0 || idx > len(src) {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "array index %d out of range", idx)
	}
	out := make([]value.Value, 0, len(src)+1)
	out = append(out, src[:idx]...)
	out = append(out, args[2])
	out = append(out, src[idx:]...)
	return value.NewArray(out), nil
}

func builtinArrayPop(interp *Interpreter, args []value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind() != value.Array || args[1].Kind() != value.Int {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "ArrayPop expects an array and an index")
	}
	src := args[0].Array()
	idx := int(args[1].Int())
	if idx < 0 || idx >= len(src) {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "array index %d out of range", idx)
	}
	out := make([]value.Value, 0, len(src)-1)
	out = append(out, src[:idx]...)
	out = append(out, src[idx+1:]...)
	return value.NewArray(out), nil
}

func builtinArrayReplace(interp *Interpreter, args []value.Value) (value.Value, error) {
	if len(args) != 3 || args[0].Kind() != value.Array || args[1].Kind() != value.Int {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "ArrayReplace expects an array, an index, and a value")
	}
	src := args[0].Array()
	idx := int(args[1].Int())
	if idx < 0 || idx >= len(src) {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "array index %d out of range", idx)
	}
	out := make([]value.Value, len(src))
	copy(out, src)
	out[idx] = args[2]
	return value.NewArray(out), nil
}

func builtinPutChar(interp *Interpreter, args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind() != value.Char {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "PutChar expects a single char argument")
	}
	// No trailing newline, unlike Say: the caller controls line breaks.
	if _, err := interp.Stdout.Write([]byte(string(args[0].Char()))); err != nil {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "write failed: %v", err)
	}
	return value.Undefined, nil
}

func builtinReadLine(interp *Interpreter, args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "ReadLine takes no arguments")
	}
	line, err := interp.Stdin.ReadString('\n')
	if err != nil && line == "" {
		return value.NewArray(nil), nil
	}
	line = strings.TrimRight(line, "\r\n")
	runes := []rune(line)
	elems := make([]value.Value, len(runes))
	for i, r := range runes {
		elems[i] = value.NewChar(r)
	}
	return value.NewArray(elems), nil
}
