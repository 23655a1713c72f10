package configurable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/confweave/confweave/driver"
	"github.com/confweave/confweave/model"
	"github.com/confweave/confweave/parser"
	"github.com/confweave/confweave/resolver"
	"github.com/confweave/confweave/resolver/hcllang"
)

func testParser() model.ParseFunc {
	registry := resolver.NewRegistry()
	registry.Register(hcllang.Lang, hcllang.New())
	return parser.New(registry).ParseFunc()
}

func declaredConf() *model.Configuration {
	return model.NewConfiguration(model.NewCategory("server",
		model.NewParameter("host", model.WithSValue("localhost")),
		model.NewParameter("port", model.WithType(cty.Number)),
	))
}

func TestConfMergesSourcesInPriorityOrder(t *testing.T) {
	ctx := context.Background()

	mem := driver.NewMem()
	mem.Put("base.conf", "server", "host", "base.example.org")
	mem.Put("base.conf", "server", "port", "80")
	mem.Put("override.conf", "server", "port", "8080")

	c := New(
		WithConf(declaredConf()),
		WithPaths("base.conf", "override.conf"),
		WithDrivers(mem),
	)

	conf := c.Conf(ctx)
	server, ok := conf.Get("server")
	require.True(t, ok)

	host, _ := server.Get("host")
	assert.Equal(t, "base.example.org", host.SValue())
	port, _ := server.Get("port")
	assert.Equal(t, "8080", port.SValue(), "later paths override earlier ones")
}

func TestConfSkipsUnreadableSources(t *testing.T) {
	c := New(
		WithConf(declaredConf()),
		WithPaths("missing.conf"),
		WithDrivers(driver.NewMem()),
	)

	conf := c.Conf(context.Background())
	server, ok := conf.Get("server")
	require.True(t, ok)
	host, _ := server.Get("host")
	assert.Equal(t, "localhost", host.SValue(), "declared defaults survive a missing source")
}

type serverSettings struct {
	Host    string `conf:"host"`
	Port    int    `conf:"port"`
	Ignored string `conf:"-"`
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	mem := driver.NewMem()
	mem.Put("app.conf", "server", "host", "example.org")
	mem.Put("app.conf", "server", "port", "8080")

	c := New(
		WithConf(declaredConf()),
		WithPaths("app.conf"),
		WithDrivers(mem),
		WithParser(testParser()),
	)

	var settings serverSettings
	require.NoError(t, c.Apply(ctx, Target(&settings)))

	assert.Equal(t, "example.org", settings.Host)
	assert.Equal(t, 8080, settings.Port)
	assert.Empty(t, settings.Ignored)
}

func TestApplyCollectsAssignmentErrors(t *testing.T) {
	ctx := context.Background()

	mem := driver.NewMem()
	mem.Put("app.conf", "server", "host", "example.org")

	c := New(
		WithConf(declaredConf()),
		WithPaths("app.conf"),
		WithDrivers(mem),
		WithParser(testParser()),
	)

	type wrongShape struct {
		Host []int `conf:"host"`
	}
	var target wrongShape
	err := c.Apply(ctx, Target(&target))
	assert.ErrorContains(t, err, "host")
}

func TestApplyExpressionsAndReferences(t *testing.T) {
	ctx := context.Background()

	mem := driver.NewMem()
	mem.Put("app.conf", "server", "port", "8080")
	mem.Put("app.conf", "server", "url", "http://@host:@port/")
	mem.Put("app.conf", "server", "double", "=@port * 2")

	conf := model.NewConfiguration(model.NewCategory("server",
		model.NewParameter("host", model.WithSValue("localhost")),
		model.NewParameter("port", model.WithType(cty.Number)),
		model.NewParameter("url"),
		model.NewParameter("double", model.WithType(cty.Number)),
	))

	c := New(
		WithConf(conf),
		WithPaths("app.conf"),
		WithDrivers(mem),
		WithParser(testParser()),
	)

	type settings struct {
		URL    string `conf:"url"`
		Double int64  `conf:"double"`
	}
	var got settings
	require.NoError(t, c.Apply(ctx, Target(&got)))

	assert.Equal(t, "http://localhost:8080/", got.URL)
	assert.Equal(t, int64(16160), got.Double)
}

func TestTarget(t *testing.T) {
	t.Run("untagged fields match case-insensitively", func(t *testing.T) {
		type s struct{ Host string }
		var v s
		require.NoError(t, Target(&v).SetParam("host", "h"))
		assert.Equal(t, "h", v.Host)
	})

	t.Run("unknown names are ignored", func(t *testing.T) {
		type s struct{ Host string }
		var v s
		assert.NoError(t, Target(&v).SetParam("nothing", 1))
	})

	t.Run("convertible values convert", func(t *testing.T) {
		type s struct{ Port int }
		var v s
		require.NoError(t, Target(&v).SetParam("port", int64(80)))
		assert.Equal(t, 80, v.Port)
	})

	t.Run("nil zeroes the field", func(t *testing.T) {
		type s struct{ Host string }
		v := s{Host: "old"}
		require.NoError(t, Target(&v).SetParam("host", nil))
		assert.Empty(t, v.Host)
	})

	t.Run("non-struct target fails", func(t *testing.T) {
		x := 1
		assert.Error(t, Target(&x).SetParam("p", 1))
		assert.Error(t, Target(nil).SetParam("p", 1))
	})
}

func TestResource(t *testing.T) {
	mem := driver.NewMem()
	mem.Put("ext.conf", "db", "dsn", "postgres://localhost")

	c := New(WithDrivers(mem))

	conf, err := c.Resource("ext.conf")
	require.NoError(t, err)
	db, ok := conf.Get("db")
	require.True(t, ok)
	dsn, _ := db.Get("dsn")
	assert.Equal(t, "postgres://localhost", dsn.SValue())

	_, err = c.Resource("missing.conf")
	assert.Error(t, err)
}
