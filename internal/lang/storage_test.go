package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Storage_DefineAndGet(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	st.Define("x", NumberValue(1))
	assert.Equal(NumberValue(1), st.Get("x"))
	assert.Equal(NilValue, st.Get("nonexistent"))
}

func Test_Storage_GetOptional(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	st.Define("x", NilValue)

	v, ok := st.GetOptional("x")
	assert.True(ok)
	assert.Equal(NilValue, v)

	_, ok = st.GetOptional("never-defined")
	assert.False(ok)
}

func Test_Storage_ScopeShadowing(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	st.Define("x", NumberValue(1))
	st.PushScope()
	st.Define("x", NumberValue(2))
	assert.Equal(NumberValue(2), st.Get("x"))
	st.PopScope()
	assert.Equal(NumberValue(1), st.Get("x"))
}

func Test_Storage_SetFindsNearestEnclosing(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	st.Define("x", NumberValue(1))
	st.PushScope()
	// no local x defined here
	st.Set("x", NumberValue(99))
	assert.Equal(NumberValue(99), st.Get("x"))
	st.PopScope()
	// the outer x was rewritten, not shadowed
	assert.Equal(NumberValue(99), st.Get("x"))
}

func Test_Storage_SetOnUndeclaredNameCreatesGlobal(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	st.PushScope()
	st.Set("y", StringValue("hi"))
	st.PopScope()
	assert.Equal(StringValue("hi"), st.Get("y"))
}

func Test_Storage_PopGlobalScopePanics(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	assert.Panics(func() { st.PopScope() })
}

func Test_Storage_Has(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	assert.False(st.Has("x"))
	st.Define("x", NilValue)
	assert.True(st.Has("x"))
}

func Test_Storage_GlobalScopeDefineReachesThroughNestedScopes(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	st.PushScope()
	st.PushScope()
	st.GlobalScopeDefine("g", NumberValue(42))
	assert.Equal(NumberValue(42), st.Get("g"))
}

func Test_Storage_ValuesAreClonedNotAliased(t *testing.T) {
	assert := assert.New(t)

	st := NewStorage()
	arr := ArrayValue([]Value{NumberValue(1), NumberValue(2)})
	st.Define("a", arr)

	got := st.Get("a")
	// mutate backing slice of the retrieved copy; original binding must
	// not observe the change
	got.Elements()[0] = NumberValue(999)

	again := st.Get("a")
	assert.Equal(NumberValue(1), again.Elements()[0])
}
