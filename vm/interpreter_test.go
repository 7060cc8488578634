package vm_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickroll-lang/rickroll/compiler"
	"github.com/rickroll-lang/rickroll/lexer"
	"github.com/rickroll-lang/rickroll/value"
	"github.com/rickroll-lang/rickroll/vm"
)

func runFile(t *testing.T, path string, stdin string) string {
	t.Helper()
	src, err := os.ReadFile(path)
	require.NoError(t, err)

	items, err := lexer.Lex(string(src))
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	var out bytes.Buffer
	interp := vm.New(prog, &out, strings.NewReader(stdin))
	require.NoError(t, interp.Run())
	return out.String()
}

func TestChorusAssignScenario(t *testing.T) {
	assert.Equal(t, "FALSE\n", runFile(t, "../testdata/chorus_assign.rr", ""))
}

func TestFibonacciRecursionScenario(t *testing.T) {
	assert.Equal(t, "55\n", runFile(t, "../testdata/fib.rr", ""))
}

func TestCountdownLoopScenario(t *testing.T) {
	assert.Equal(t, "0\n-2\n-4\n", runFile(t, "../testdata/countdown.rr", ""))
}

func TestHelloWorldScenario(t *testing.T) {
	assert.Equal(t, "Hello, World!\n", runFile(t, "../testdata/hello.rr", ""))
}

func TestReadLineScenario(t *testing.T) {
	out := runFile(t, "../testdata/readline.rr", "Hello World!\n")
	assert.Equal(t, "[H, e, l, l, o,  , W, o, r, l, d, !]\n", out)
}

func TestUndefinedVariableScenario(t *testing.T) {
	assert.Equal(t, "UNDEFINED\n", runFile(t, "../testdata/undefined.rr", ""))
}

func TestGlobalScopeFallsBackIntoMain(t *testing.T) {
	src := "[Intro]\n" +
		"Never gonna let shared down\n" +
		"Never gonna give shared 9\n" +
		"[Chorus]\n" +
		"Never gonna say shared\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	var out bytes.Buffer
	interp := vm.New(prog, &out, strings.NewReader(""))
	require.NoError(t, interp.Run())
	assert.Equal(t, "9\n", out.String())
}

func TestGlobalAssignmentIsVisibleAcrossCalls(t *testing.T) {
	src := "[Intro]\n" +
		"Never gonna let counter down\n" +
		"Never gonna give counter 0\n" +
		"[Verse bump]\n" +
		"(Ooh give you up)\n" +
		"Never gonna give counter counter+1\n" +
		"[Chorus]\n" +
		"Never gonna run bump and desert you\n" +
		"Never gonna run bump and desert you\n" +
		"Never gonna say counter\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	var out bytes.Buffer
	interp := vm.New(prog, &out, strings.NewReader(""))
	require.NoError(t, interp.Run())
	assert.Equal(t, "2\n", out.String())
}

func TestRedeclaringLetInSameScopeIsNameError(t *testing.T) {
	src := "[Chorus]\n" +
		"Never gonna let a down\n" +
		"Never gonna let a down\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	interp := vm.New(prog, &bytes.Buffer{}, strings.NewReader(""))
	require.Error(t, interp.Run())
}

func TestAssigningUndeclaredVariableIsNameError(t *testing.T) {
	src := "[Chorus]\n" +
		"Never gonna give a 1\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	interp := vm.New(prog, &bytes.Buffer{}, strings.NewReader(""))
	require.Error(t, interp.Run())
}

func TestRecursionDepthIsBounded(t *testing.T) {
	// loop calls itself with no base case; must fail once depth hits
	// vm.MaxRecursionDepth rather than blowing the Go call stack.
	src := "[Verse loop]\n" +
		"(Ooh give you up)\n" +
		"Never gonna run loop and desert you\n" +
		"[Chorus]\n" +
		"Never gonna run loop and desert you\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	interp := vm.New(prog, &bytes.Buffer{}, strings.NewReader(""))
	err = interp.Run()
	require.Error(t, err)
	// each failed call wraps the error in a Traceback; the depth error
	// itself sits at the bottom of the cause chain.
	root := err
	for errors.Unwrap(root) != nil {
		root = errors.Unwrap(root)
	}
	assert.Contains(t, root.Error(), "recursion depth")
}

func TestCallArgumentIsCopiedNotAliased(t *testing.T) {
	// pushq clones arrays, so a callee mutating its parameter (via
	// ArrayReplace) must never affect the caller's copy.
	src := "[Verse mutate]\n" +
		"(Ooh give you arr)\n" +
		"Never gonna let idx down\n" +
		"Never gonna give idx 0\n" +
		"Never gonna let val down\n" +
		"Never gonna give val 9\n" +
		"Never gonna let ignored down\n" +
		"(Ooh give you ignored) Never gonna run ArrayReplace and desert arr,idx,val\n" +
		"[Chorus]\n" +
		"Never gonna let a down\n" +
		"Never gonna let b down\n" +
		"Never gonna give b 1\n" +
		"(Ooh give you a) Never gonna run ArrayOf and desert b\n" +
		"Never gonna run mutate and desert a\n" +
		"Never gonna say a\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	var out bytes.Buffer
	interp := vm.New(prog, &out, strings.NewReader(""))
	require.NoError(t, interp.Run())
	assert.Equal(t, "[1]\n", out.String())
}

func TestWrongArityCallIsIllegalArgumentError(t *testing.T) {
	src := "[Verse one]\n" +
		"(Ooh give you x)\n" +
		"[Chorus]\n" +
		"Never gonna run one and desert you\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	interp := vm.New(prog, &bytes.Buffer{}, strings.NewReader(""))
	require.Error(t, interp.Run())
}

func TestCallNamedBypassesMainStartup(t *testing.T) {
	src := "[Verse square]\n" +
		"(Ooh give you x)\n" +
		"Never gonna let r down\n" +
		"Never gonna give r x*x\n" +
		"(Ooh) Never gonna give, never gonna give (give you r)\n" +
		"[Chorus]\n" +
		"Never gonna say 0\n"
	items, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := compiler.Compile(items)
	require.NoError(t, err)

	interp := vm.New(prog, &bytes.Buffer{}, strings.NewReader(""))
	v, err := interp.CallNamed("square", []value.Value{value.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, int32(25), v.Int())
}
