package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCache_SetCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	buf := []byte("abc")
	c.Set(ctx, "k", buf)
	buf[0] = 'z'

	got, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)
	c.Set(ctx, "catalog:list", []byte("1"))
	c.Set(ctx, "catalog:product:1", []byte("2"))
	c.Set(ctx, "other", []byte("3"))

	c.DeletePrefix(ctx, "catalog:")

	_, ok := c.Get(ctx, "catalog:list")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "catalog:product:1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "other")
	assert.True(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	type payload struct {
		Name string `json:"name"`
	}
	SetJSON(ctx, c, "p", payload{Name: "lamp"})

	var out payload
	require.True(t, GetJSON(ctx, c, "p", &out))
	assert.Equal(t, "lamp", out.Name)

	c.Set(ctx, "bad", []byte("{not json"))
	assert.False(t, GetJSON(ctx, c, "bad", &out))
	_, ok := c.Get(ctx, "bad")
	assert.False(t, ok, "undecodable entries are evicted")

	assert.False(t, GetJSON(ctx, nil, "p", &out))
}
