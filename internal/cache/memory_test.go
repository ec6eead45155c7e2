package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGetDel(t *testing.T) {
	InitMemory()
	c := Get()

	require.NoError(t, c.Set("request:abc", "payload", 0))
	value, err := c.Get("request:abc")
	require.NoError(t, err)
	assert.Equal(t, "payload", value)

	require.NoError(t, c.Del("request:abc"))
	_, err = c.Get("request:abc")
	assert.Error(t, err)
}

func TestMemoryCacheExpiry(t *testing.T) {
	InitMemory()
	c := Get()

	require.NoError(t, c.Set("pending:form:1:2", "payload", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err := c.Get("pending:form:1:2")
	assert.Error(t, err)
}

func TestMemoryCacheScan(t *testing.T) {
	InitMemory()
	c := Get()

	require.NoError(t, c.Set("request:a", "1", 0))
	require.NoError(t, c.Set("request:b", "2", 0))
	require.NoError(t, c.Set("pending:form:1:2", "3", 0))

	keys, err := c.Scan("request:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"request:a", "request:b"}, keys)
}
