package lualang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confweave/confweave/resolver"
)

func TestResolveArithmetic(t *testing.T) {
	r := New()

	got, err := r.Resolve("1 + 2 * 3", resolver.Options{Safe: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestResolveFloat(t *testing.T) {
	r := New()

	got, err := r.Resolve("3 / 2", resolver.Options{Safe: true})
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)
}

func TestResolveScope(t *testing.T) {
	r := New()

	got, err := r.Resolve(`greeting .. ", " .. name`, resolver.Options{
		Safe:  true,
		Scope: map[string]any{"greeting": "hello", "name": "world"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello, world", got)
}

func TestResolveTable(t *testing.T) {
	r := New()

	t.Run("dense table becomes a slice", func(t *testing.T) {
		got, err := r.Resolve("{1, 2, 3}", resolver.Options{Safe: true})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got)
	})

	t.Run("keyed table becomes a map", func(t *testing.T) {
		got, err := r.Resolve(`{port = 80}`, resolver.Options{Safe: true})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"port": int64(80)}, got)
	})
}

func TestResolveToStr(t *testing.T) {
	r := New()

	got, err := r.Resolve("40 + 2", resolver.Options{Safe: true, ToStr: true})
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestResolveSafeModeStripsOS(t *testing.T) {
	r := New()

	_, err := r.Resolve(`os.getenv("HOME")`, resolver.Options{Safe: true})
	assert.Error(t, err)

	_, err = r.Resolve(`os ~= nil`, resolver.Options{Safe: false})
	assert.NoError(t, err)
}

func TestResolveSafeModeSandboxesRequire(t *testing.T) {
	r := New()
	t.Setenv("CONFWEAVE_TEST_ENV", "leaked")

	t.Run("require cannot reach os", func(t *testing.T) {
		_, err := r.Resolve(`require("os").getenv("CONFWEAVE_TEST_ENV")`,
			resolver.Options{Safe: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available")
	})

	t.Run("package.loaded holds no process tables", func(t *testing.T) {
		got, err := r.Resolve(`package.loaded.io == nil and package.loaded.os == nil`,
			resolver.Options{Safe: true})
		require.NoError(t, err)
		assert.Equal(t, true, got)
	})

	t.Run("module search paths are empty", func(t *testing.T) {
		got, err := r.Resolve(`package.path == "" and package.cpath == ""`,
			resolver.Options{Safe: true})
		require.NoError(t, err)
		assert.Equal(t, true, got)
	})

	t.Run("pure built-ins stay requirable", func(t *testing.T) {
		got, err := r.Resolve(`require("string").upper("ok")`,
			resolver.Options{Safe: true})
		require.NoError(t, err)
		assert.Equal(t, "OK", got)
	})

	t.Run("unsafe mode keeps require intact", func(t *testing.T) {
		got, err := r.Resolve(`require("os").getenv("CONFWEAVE_TEST_ENV")`,
			resolver.Options{Safe: false})
		require.NoError(t, err)
		assert.Equal(t, "leaked", got)
	})
}

func TestResolveSyntaxError(t *testing.T) {
	r := New()

	_, err := r.Resolve("1 +", resolver.Options{Safe: true})
	assert.Error(t, err)
}
