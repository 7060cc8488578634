package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickroll-lang/rickroll/eval"
	"github.com/rickroll-lang/rickroll/exprtoken"
	"github.com/rickroll-lang/rickroll/value"
)

type mapResolver map[string]value.Value

func (m mapResolver) Get(name string) (value.Value, error) {
	v, ok := m[name]
	if !ok {
		return value.Undefined, assert.AnError
	}
	return v, nil
}

func evalString(t *testing.T, src string, vars mapResolver) value.Value {
	t.Helper()
	toks, err := exprtoken.Tokenize(src, 1)
	require.NoError(t, err)
	v, err := eval.Eval(toks, vars, 1)
	require.NoError(t, err)
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, int32(14), evalString(t, "2 + 3 * 4", nil).Int())
	assert.Equal(t, int32(20), evalString(t, "(2 + 3) * 4", nil).Int())
}

func TestUnaryDoubleNegation(t *testing.T) {
	v := evalString(t, "- - 5", nil)
	assert.Equal(t, int32(5), v.Int())
}

func TestUnaryInsideParens(t *testing.T) {
	v := evalString(t, "(- 5) + 1", nil)
	assert.Equal(t, int32(-4), v.Int())
}

func TestLeadingUnaryBeforeBinary(t *testing.T) {
	vars := mapResolver{"b": value.NewInt(3)}
	v := evalString(t, "- b * 2", vars)
	assert.Equal(t, int32(-6), v.Int())
}

func TestNotOperator(t *testing.T) {
	v := evalString(t, "!TRUE", nil)
	assert.Equal(t, false, v.Bool())
}

func TestIntFloatPromotion(t *testing.T) {
	v := evalString(t, "3 + 1.5", nil)
	assert.Equal(t, value.Float, v.Kind())
	assert.Equal(t, float32(4.5), v.Float())
}

func TestIntDivisionTruncates(t *testing.T) {
	assert.Equal(t, int32(2), evalString(t, "7 / 3", nil).Int())
	assert.Equal(t, int32(-2), evalString(t, "-7 / 3", nil).Int())
}

func TestModSignFollowsDividend(t *testing.T) {
	assert.Equal(t, int32(-1), evalString(t, "-7 % 3", nil).Int())
}

func TestDivisionByZero(t *testing.T) {
	toks, err := exprtoken.Tokenize("1 / 0", 1)
	require.NoError(t, err)
	_, err = eval.Eval(toks, nil, 1)
	require.Error(t, err)
}

func TestArrayIndexing(t *testing.T) {
	vars := mapResolver{"arr": value.NewArray([]value.Value{value.NewInt(10), value.NewInt(20)})}
	v := evalString(t, "arr:1", vars)
	assert.Equal(t, int32(20), v.Int())
}

func TestArrayIndexOutOfRange(t *testing.T) {
	vars := mapResolver{"arr": value.NewArray([]value.Value{value.NewInt(10)})}
	toks, err := exprtoken.Tokenize("arr:5", 1)
	require.NoError(t, err)
	_, err = eval.Eval(toks, vars, 1)
	require.Error(t, err)
}

func TestCharPlusCharMakesArray(t *testing.T) {
	vars := mapResolver{}
	_ = vars
	toks, err := exprtoken.Tokenize("'a' + 'b'", 1)
	require.NoError(t, err)
	v, err := eval.Eval(toks, nil, 1)
	require.NoError(t, err)
	require.Equal(t, value.Array, v.Kind())
	assert.Equal(t, 'a', v.Array()[0].Char())
	assert.Equal(t, 'b', v.Array()[1].Char())
}

func TestEqualityAcrossKindsNeverErrors(t *testing.T) {
	toks, err := exprtoken.Tokenize("1 == TRUE", 1)
	require.NoError(t, err)
	v, err := eval.Eval(toks, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, false, v.Bool())
}

func TestComparisonAcrossIncompatibleKindsErrors(t *testing.T) {
	toks, err := exprtoken.Tokenize("1 > TRUE", 1)
	require.NoError(t, err)
	_, err = eval.Eval(toks, nil, 1)
	require.Error(t, err)
}

func TestUnboundVariableIsNameError(t *testing.T) {
	toks, err := exprtoken.Tokenize("missing", 1)
	require.NoError(t, err)
	_, err = eval.Eval(toks, mapResolver{}, 1)
	require.Error(t, err)
}
