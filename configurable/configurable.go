package configurable

import (
	"context"
	"errors"
	"fmt"

	"github.com/confweave/confweave/driver"
	"github.com/confweave/confweave/internal/ctxlog"
	"github.com/confweave/confweave/model"
)

// Configurable ties a declared configuration to the resources feeding it and
// the targets consuming it.
type Configurable struct {
	conf       *model.Configuration
	paths      []string
	drivers    []driver.Driver
	parser     model.ParseFunc
	scope      map[string]any
	safe       bool
	bestEffort bool
}

// Option configures a Configurable at construction.
type Option func(*Configurable)

// WithConf sets the declared configuration: the parameters the configurable
// expects, with their types, parsers and default serialized values.
func WithConf(conf *model.Configuration) Option {
	return func(c *Configurable) { c.conf = conf }
}

// WithPaths sets the resource paths, in increasing priority order.
func WithPaths(paths ...string) Option {
	return func(c *Configurable) { c.paths = append(c.paths, paths...) }
}

// WithDrivers sets the drivers used to read the resource paths.
func WithDrivers(drivers ...driver.Driver) Option {
	return func(c *Configurable) { c.drivers = append(c.drivers, drivers...) }
}

// WithParser sets the deserializer applied during resolution.
func WithParser(parser model.ParseFunc) Option {
	return func(c *Configurable) { c.parser = parser }
}

// WithScope sets name bindings visible to every expression.
func WithScope(scope map[string]any) Option {
	return func(c *Configurable) { c.scope = scope }
}

// Unsafe evaluates expressions in an unrestricted context.
func Unsafe() Option {
	return func(c *Configurable) { c.safe = false }
}

// NoBestEffort disables dynamic binding of unknown expression names.
func NoBestEffort() Option {
	return func(c *Configurable) { c.bestEffort = false }
}

// New creates a Configurable. Defaults: empty declared configuration, safe,
// best-effort.
func New(opts ...Option) *Configurable {
	c := &Configurable{
		conf:       model.NewConfiguration(),
		safe:       true,
		bestEffort: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeclaredConf returns the declared configuration.
func (c *Configurable) DeclaredConf() *model.Configuration { return c.conf }

// Paths returns the resource paths.
func (c *Configurable) Paths() []string { return append([]string(nil), c.paths...) }

// Conf assembles the effective configuration: a copy of the declaration
// filled from every (path, driver) pair in priority order, later sources
// overriding earlier ones. A source that cannot be read is logged and
// skipped.
func (c *Configurable) Conf(ctx context.Context) *model.Configuration {
	logger := ctxlog.FromContext(ctx)

	result := c.conf.Copy(false)
	for _, path := range c.paths {
		for _, drv := range c.drivers {
			got, err := drv.Get(ctx, path, c.conf)
			if err != nil {
				logger.Debug("Resource source skipped.", "path", path, "error", err)
				continue
			}
			result.Fill(got, true)
		}
	}
	return result
}

// Apply assembles, resolves and unifies the configuration, then assigns
// every resolved parameter onto the targets. Resolution errors are logged
// per parameter, assignment errors are collected; neither aborts the pass.
func (c *Configurable) Apply(ctx context.Context, targets ...Settable) error {
	logger := ctxlog.FromContext(ctx)

	conf := c.Conf(ctx)
	conf.Resolve(ctx, c.resolveOptions())
	unified := conf.Unify(false)

	var errs []error
	for _, cname := range []string{model.Values, model.Foreigns} {
		cat, ok := unified.Get(cname)
		if !ok {
			continue
		}
		for _, param := range cat.Params() {
			name := param.Name().String()
			for _, target := range targets {
				if err := target.SetParam(name, param.Value()); err != nil {
					errs = append(errs, fmt.Errorf("assign %q: %w", name, err))
				}
			}
		}
	}

	if cat, ok := unified.Get(model.Errors); ok {
		for _, param := range cat.Params() {
			logger.Warn("Parameter did not resolve.",
				"parameter", param.Name().String(), "error", param.Error())
		}
	}

	return errors.Join(errs...)
}

// Resource loads the configuration behind an external resource path, trying
// each driver in order. It implements model.ResourceLoader, backing
// path-qualified references.
func (c *Configurable) Resource(path string) (*model.Configuration, error) {
	var errs []error
	for _, drv := range c.drivers {
		got, err := drv.Get(context.Background(), path, nil)
		if err == nil {
			return got, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		errs = append(errs, model.ErrNotFound)
	}
	return nil, fmt.Errorf("resource %q: %w", path, errors.Join(errs...))
}

func (c *Configurable) resolveOptions() *model.ResolveOptions {
	return &model.ResolveOptions{
		Loader:     c,
		Scope:      c.scope,
		Parser:     c.parser,
		Safe:       model.Flag(c.safe),
		BestEffort: model.Flag(c.bestEffort),
	}
}
