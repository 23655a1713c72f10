package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confweave/confweave/model"
)

func writeResource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func svalueOf(t *testing.T, conf *model.Configuration, cname, pname string) string {
	t.Helper()
	cat, ok := conf.Get(cname)
	require.True(t, ok, "category %q", cname)
	param, ok := cat.Get(pname)
	require.True(t, ok, "parameter %q", pname)
	return param.SValue()
}

func TestINIDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResource(t, dir, "app.conf", "[server]\nhost = localhost\nport = 80\n")

	d := NewINI(dir)

	conf, err := d.Get(ctx, "app.conf", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", svalueOf(t, conf, "server", "host"))
	assert.Equal(t, "80", svalueOf(t, conf, "server", "port"))

	t.Run("round-trip", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.conf")
		require.NoError(t, d.Set(ctx, target, conf))

		got, err := d.Get(ctx, target, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", svalueOf(t, got, "server", "host"))
		assert.Equal(t, "80", svalueOf(t, got, "server", "port"))
	})
}

func TestJSONDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResource(t, dir, "app.json", `{
		"server": {"host": "localhost", "port": 80, "tags": ["a", "b"]}
	}`)

	d := NewJSON(dir)

	conf, err := d.Get(ctx, "app.json", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", svalueOf(t, conf, "server", "host"))
	assert.Equal(t, "80", svalueOf(t, conf, "server", "port"))
	assert.JSONEq(t, `["a", "b"]`, svalueOf(t, conf, "server", "tags"))

	t.Run("round-trip", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, d.Set(ctx, target, conf))

		got, err := d.Get(ctx, target, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", svalueOf(t, got, "server", "host"))
	})

	t.Run("malformed top level", func(t *testing.T) {
		bad := t.TempDir()
		writeResource(t, bad, "bad.json", `[1, 2]`)
		_, err := NewJSON(bad).Get(ctx, "bad.json", nil)
		assert.Error(t, err)
	})
}

func TestXMLDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResource(t, dir, "app.xml", `<?xml version="1.0"?>
<configuration>
  <category name="server">
    <parameter name="host">localhost</parameter>
  </category>
</configuration>`)

	d := NewXML(dir)

	conf, err := d.Get(ctx, "app.xml", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", svalueOf(t, conf, "server", "host"))

	t.Run("round-trip", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.xml")
		require.NoError(t, d.Set(ctx, target, conf))

		got, err := d.Get(ctx, target, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", svalueOf(t, got, "server", "host"))
	})
}

func TestYAMLDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResource(t, dir, "app.yaml", "server:\n  host: localhost\n  port: 8080\n")

	d := NewYAML(dir)

	conf, err := d.Get(ctx, "app.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", svalueOf(t, conf, "server", "host"))
	assert.Equal(t, "8080", svalueOf(t, conf, "server", "port"))

	t.Run("round-trip", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.yaml")
		require.NoError(t, d.Set(ctx, target, conf))

		got, err := d.Get(ctx, target, nil)
		require.NoError(t, err)
		assert.Equal(t, "8080", svalueOf(t, got, "server", "port"))
	})
}

func TestHCLDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResource(t, dir, "app.hcl", `
category "server" {
  host = "localhost"
  port = 8000 + 80
}
`)

	d := NewHCL(dir)

	conf, err := d.Get(ctx, "app.hcl", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", svalueOf(t, conf, "server", "host"))
	assert.Equal(t, "=hcl:8000 + 80", svalueOf(t, conf, "server", "port"),
		"non-string attributes defer to expression resolution")

	t.Run("write-back is rejected", func(t *testing.T) {
		err := d.Set(ctx, filepath.Join(dir, "out.hcl"), conf)
		assert.ErrorIs(t, err, ErrReadOnly)
	})

	t.Run("unexpected block", func(t *testing.T) {
		bad := t.TempDir()
		writeResource(t, bad, "bad.hcl", `other "x" {}`)
		_, err := NewHCL(bad).Get(ctx, "bad.hcl", nil)
		assert.Error(t, err)
	})
}

func TestDriverSearchPath(t *testing.T) {
	ctx := context.Background()
	low := t.TempDir()
	high := t.TempDir()
	writeResource(t, low, "app.conf", "[server]\nhost = low\nport = 1\n")
	writeResource(t, high, "app.conf", "[server]\nhost = high\n")

	d := NewINI(low, high)

	conf, err := d.Get(ctx, "app.conf", nil)
	require.NoError(t, err)
	assert.Equal(t, "high", svalueOf(t, conf, "server", "host"), "later directories win")
	assert.Equal(t, "1", svalueOf(t, conf, "server", "port"), "earlier-only keys survive")

	t.Run("missing resource", func(t *testing.T) {
		_, err := d.Get(ctx, "nope.conf", nil)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("set targets the highest-priority file", func(t *testing.T) {
		require.NoError(t, d.Set(ctx, "app.conf", conf))
		data, err := os.ReadFile(filepath.Join(high, "app.conf"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "host")

		lowData, err := os.ReadFile(filepath.Join(low, "app.conf"))
		require.NoError(t, err)
		assert.Contains(t, string(lowData), "low", "lower-priority file is untouched")
	})
}

func TestDeclaredConfTypesSurvive(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeResource(t, dir, "app.conf", "[server]\nport = 80\n")

	declared := model.NewConfiguration(model.NewCategory("server",
		model.NewParameter("port"),
	))

	conf, err := NewINI(dir).Get(ctx, "app.conf", declared)
	require.NoError(t, err)

	server, _ := conf.Get("server")
	port, ok := server.Get("port")
	require.True(t, ok)
	assert.True(t, port.Local, "declared parameters stay local")
	assert.Equal(t, "80", port.SValue())
}
