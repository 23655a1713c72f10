package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryInsertionOrder(t *testing.T) {
	c := NewCategory("server",
		NewParameter("host"),
		NewParameter("port"),
		NewParameter("timeout"),
	)

	var names []string
	for _, p := range c.Params() {
		names = append(names, p.Name().String())
	}
	assert.Equal(t, []string{"host", "port", "timeout"}, names)
}

func TestCategoryPutReplacesInPlace(t *testing.T) {
	c := NewCategory("server", NewParameter("host"), NewParameter("port"))

	replacement := NewParameter("host", WithSValue("example.org"))
	c.Put(replacement)

	assert.Equal(t, 2, c.Len())
	got, ok := c.Get("host")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Equal(t, "host", c.Params()[0].Name().String(), "replacement keeps the original position")
}

func TestCategoryDel(t *testing.T) {
	c := NewCategory("server", NewParameter("host"))

	assert.True(t, c.Del("host"))
	assert.False(t, c.Del("host"))
	assert.Equal(t, 0, c.Len())
}

func TestCategoryMatching(t *testing.T) {
	exact := NewParameter("port")
	pattern := NewParameter(`db_\w+`)
	c := NewCategory("server", exact, pattern)

	assert.Equal(t, []*Parameter{exact}, c.Matching("port"))
	assert.Equal(t, []*Parameter{pattern}, c.Matching("db_host"))
	assert.Empty(t, c.Matching("unknown"))
}

func TestCategoryUpdate(t *testing.T) {
	c := NewCategory("server", NewParameter("host", WithSValue("localhost")))
	other := NewCategory("server",
		NewParameter("host", WithSValue("example.org")),
		NewParameter("port", WithSValue("80")),
	)

	c.Update(other)

	host, ok := c.Get("host")
	require.True(t, ok)
	assert.Equal(t, "example.org", host.SValue())
	assert.True(t, host.Local, "existing parameters keep their locality")

	port, ok := c.Get("port")
	require.True(t, ok)
	assert.Equal(t, "80", port.SValue())
	assert.False(t, port.Local, "adopted parameters are foreign")
}

func TestCategoryCopy(t *testing.T) {
	c := NewCategory("server", NewParameter("host", WithSValue("localhost")))

	clone := c.Copy(false)
	clone.Put(NewParameter("port"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, clone.Len())

	cleaned := c.Copy(true)
	host, ok := cleaned.Get("host")
	require.True(t, ok)
	assert.False(t, host.HasSValue())
}
