package confweave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confweave/confweave/model"
)

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, "hcl", registry.Default())
	assert.Equal(t, []string{"hcl", "lua"}, registry.Names())
}

func TestParseFuncEndToEnd(t *testing.T) {
	conf := NewConfiguration(NewCategory("server",
		NewParameter("host", model.WithSValue("localhost")),
		NewParameter("url", model.WithSValue("http://@host/"), model.WithParser(ParseFunc())),
	))

	server, _ := conf.Get("server")
	url, _ := server.Get("url")

	value, err := url.Resolve(&model.ResolveOptions{Conf: conf})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/", value)
}

func TestSerializeDefaults(t *testing.T) {
	svalue, err := Serialize(int64(7))
	require.NoError(t, err)
	assert.Equal(t, "=hcl:7", svalue)
}
