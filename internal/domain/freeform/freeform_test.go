package freeform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	m, err := DecodeObject([]byte(` {"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, float64(1), m["a"])

	for _, raw := range []string{`[]`, `[{"a":1}]`, `null`, `"x"`, `3`, ``} {
		_, err := DecodeObject([]byte(raw))
		assert.ErrorIs(t, err, ErrNotObject, "input %q", raw)
	}

	_, err = DecodeObject([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestPopNumber(t *testing.T) {
	m := map[string]any{"q": "3", "p": 9.5, "bad": "x", "obj": map[string]any{}}

	q, ok, err := PopNumber(m, "q")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.0, q)

	p, ok, err := PopNumber(m, "p")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9.5, p)

	_, _, err = PopNumber(m, "bad")
	assert.Error(t, err)
	_, _, err = PopNumber(m, "obj")
	assert.Error(t, err)

	_, ok, err = PopNumber(m, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, m)
}

func TestTakeNumber(t *testing.T) {
	m := map[string]any{"p": 2.5, "s": "7", "bad": "N/A", "nil": nil}

	p, ok := TakeNumber(m, "p")
	assert.True(t, ok)
	assert.Equal(t, 2.5, p)

	s, ok := TakeNumber(m, "s")
	assert.True(t, ok)
	assert.Equal(t, 7.0, s)

	_, ok = TakeNumber(m, "bad")
	assert.False(t, ok)
	_, ok = TakeNumber(m, "nil")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{"bad": "N/A", "nil": nil}, m)
}

func TestPopString(t *testing.T) {
	m := map[string]any{"id": "abc", "n": float64(12), "b": true}

	s, ok := PopString(m, "id")
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	s, ok = PopString(m, "n")
	assert.True(t, ok)
	assert.Equal(t, "12", s)

	_, ok = PopString(m, "b")
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	src := map[string]any{
		"rating": map[string]any{"rate": 4.5},
		"tags":   []any{"a", map[string]any{"k": "v"}},
	}
	dst := Clone(src)

	dst["rating"].(map[string]any)["rate"] = 1.0
	dst["tags"].([]any)[1].(map[string]any)["k"] = "changed"

	assert.Equal(t, 4.5, src["rating"].(map[string]any)["rate"])
	assert.Equal(t, "v", src["tags"].([]any)[1].(map[string]any)["k"])
}
