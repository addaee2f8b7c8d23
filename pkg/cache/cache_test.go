package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Stable(t *testing.T) {
	assert.Equal(t, Key("content"), Key("content"))
	assert.NotEqual(t, Key("a"), Key("b"))
	assert.Len(t, Key(""), 64)
}

func TestCache_GetAdd(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	key := Key("schema")
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Add(key, "fingerprint")
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "fingerprint", got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Eviction(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Add("a", "1")
	c.Add("b", "2")
	c.Add("c", "3")
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_NilSafe(t *testing.T) {
	var c *Cache
	_, ok := c.Get("x")
	assert.False(t, ok)
	c.Add("x", "y")
	assert.Equal(t, 0, c.Len())
}

func TestNew_DefaultSize(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)
	assert.NotNil(t, c)
}
