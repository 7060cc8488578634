package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rickroll-lang/rickroll/value"
)

func TestStringForms(t *testing.T) {
	assert.Equal(t, "42", value.NewInt(42).String())
	assert.Equal(t, "-3", value.NewInt(-3).String())
	assert.Equal(t, "1.0", value.NewFloat(1).String())
	assert.Equal(t, "3.5", value.NewFloat(3.5).String())
	assert.Equal(t, "TRUE", value.NewBool(true).String())
	assert.Equal(t, "FALSE", value.NewBool(false).String())
	assert.Equal(t, "x", value.NewChar('x').String())
	assert.Equal(t, "UNDEFINED", value.Undefined.String())
	arr := value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2)})
	assert.Equal(t, "[1, 2]", arr.String())
}

func TestEqual(t *testing.T) {
	assert.True(t, value.Equal(value.Undefined, value.Undefined))
	assert.True(t, value.Equal(value.NewInt(2), value.NewFloat(2)))
	assert.False(t, value.Equal(value.NewInt(2), value.NewBool(true)))
	assert.True(t, value.Equal(
		value.NewArray([]value.Value{value.NewInt(1)}),
		value.NewArray([]value.Value{value.NewInt(1)}),
	))
	assert.False(t, value.Equal(
		value.NewArray([]value.Value{value.NewInt(1)}),
		value.NewArray([]value.Value{value.NewInt(2)}),
	))
}

func TestCloneArrayDoesNotAlias(t *testing.T) {
	orig := value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2)})
	clone := orig.CloneArray()
	clone.Array()[0] = value.NewInt(99)
	assert.Equal(t, int32(1), orig.Array()[0].Int())
}

func TestCloneArrayNonArrayIsNoop(t *testing.T) {
	v := value.NewInt(5)
	assert.Equal(t, v, v.CloneArray())
}
