package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/confweave/confweave/model"
)

func TestAssemble(t *testing.T) {
	raw := []RawSection{
		{Name: "server", Items: []RawItem{
			{Key: "host", Value: "localhost"},
			{Key: "port", Value: "80"},
			{Key: "extra", Value: "x"},
		}},
	}

	t.Run("without declaration everything is foreign", func(t *testing.T) {
		conf := Assemble(raw, nil)

		server, ok := conf.Get("server")
		require.True(t, ok)
		assert.Equal(t, 3, server.Len())
		for _, p := range server.Params() {
			assert.False(t, p.Local)
		}
	})

	t.Run("declared parameters keep their declaration", func(t *testing.T) {
		declared := model.NewConfiguration(model.NewCategory("server",
			model.NewParameter("host"),
			model.NewParameter("port", model.WithType(cty.Number)),
		))

		conf := Assemble(raw, declared)
		server, _ := conf.Get("server")

		port, ok := server.Get("port")
		require.True(t, ok)
		assert.True(t, port.Local)
		assert.Equal(t, cty.Number, port.Type)
		assert.Equal(t, "80", port.SValue())

		extra, ok := server.Get("extra")
		require.True(t, ok)
		assert.False(t, extra.Local, "undeclared keys are foreign")
	})

	t.Run("pattern names expand per matching key", func(t *testing.T) {
		declared := model.NewConfiguration(model.NewCategory("env",
			model.NewParameter(`db_\w+`, model.WithType(cty.String)),
		))

		conf := Assemble([]RawSection{
			{Name: "env", Items: []RawItem{
				{Key: "db_host", Value: "h"},
				{Key: "db_port", Value: "p"},
			}},
		}, declared)

		env, _ := conf.Get("env")
		assert.Equal(t, 2, env.Len())

		host, ok := env.Get("db_host")
		require.True(t, ok)
		assert.Equal(t, "h", host.SValue())
		assert.False(t, host.Name().IsPattern(), "expanded copies carry the concrete key")
	})
}

func TestDisassemble(t *testing.T) {
	conf := model.NewConfiguration(model.NewCategory("server",
		model.NewParameter("host", model.WithSValue("localhost")),
		model.NewParameter("empty"),
	))

	sections := Disassemble(conf)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Items, 1, "parameters without a value are skipped")
	assert.Equal(t, RawItem{Key: "host", Value: "localhost"}, sections[0].Items[0])
}

func TestMemDriver(t *testing.T) {
	ctx := context.Background()
	mem := NewMem()
	mem.Put("app.conf", "server", "host", "localhost")
	mem.Put("app.conf", "server", "host", "example.org") // overwrite
	mem.Put("app.conf", "server", "port", "80")

	t.Run("get", func(t *testing.T) {
		conf, err := mem.Get(ctx, "app.conf", nil)
		require.NoError(t, err)

		server, ok := conf.Get("server")
		require.True(t, ok)
		host, _ := server.Get("host")
		assert.Equal(t, "example.org", host.SValue())
		port, _ := server.Get("port")
		assert.Equal(t, "80", port.SValue())
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := mem.Get(ctx, "nope.conf", nil)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("set round-trips", func(t *testing.T) {
		conf := model.NewConfiguration(model.NewCategory("db",
			model.NewParameter("dsn", model.WithSValue("postgres://localhost")),
		))
		require.NoError(t, mem.Set(ctx, "db.conf", conf))

		got, err := mem.Get(ctx, "db.conf", nil)
		require.NoError(t, err)
		db, _ := got.Get("db")
		dsn, _ := db.Get("dsn")
		assert.Equal(t, "postgres://localhost", dsn.SValue())
	})
}
