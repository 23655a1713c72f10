package resolver

import (
	"errors"
	"fmt"
)

// ErrUnknownResolver reports a lookup for a language name that is not
// registered. It indicates a wiring mistake, not bad configuration data,
// and is therefore raised to the caller instead of captured per-parameter.
var ErrUnknownResolver = errors.New("unknown expression resolver")

// Options carries the evaluation flags shared by every resolver.
type Options struct {
	// Safe restricts evaluation to a pure context without I/O.
	Safe bool
	// ToStr renders the result as its string representation.
	ToStr bool
	// Scope holds the name bindings visible to the expression.
	Scope map[string]any
	// BestEffort lets the resolver bind unknown names dynamically before
	// giving up.
	BestEffort bool
}

// Resolver evaluates one expression of its language.
type Resolver interface {
	Resolve(expr string, opts Options) (any, error)
}

// Func adapts a plain function to the Resolver interface.
type Func func(expr string, opts Options) (any, error)

// Resolve implements Resolver.
func (f Func) Resolve(expr string, opts Options) (any, error) {
	return f(expr, opts)
}

// Registry maps language names to resolvers. Registration order is kept;
// the first registered resolver becomes the default until SetDefault
// changes it. The zero value is ready to use.
type Registry struct {
	names     []string
	resolvers map[string]Resolver
	def       string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]Resolver)}
}

// Register adds or overwrites the resolver for name. The first registered
// name becomes the default.
func (r *Registry) Register(name string, res Resolver) {
	if r.resolvers == nil {
		r.resolvers = make(map[string]Resolver)
	}
	if _, ok := r.resolvers[name]; !ok {
		r.names = append(r.names, name)
	}
	r.resolvers[name] = res
	if r.def == "" {
		r.def = name
	}
}

// Default returns the default language name, empty for an empty registry.
func (r *Registry) Default() string { return r.def }

// SetDefault changes the default language name.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.resolvers[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownResolver)
	}
	r.def = name
	return nil
}

// Names returns the registered language names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Resolve evaluates expr with the named resolver, or the default one when
// name is empty.
func (r *Registry) Resolve(expr, name string, opts Options) (any, error) {
	if name == "" {
		name = r.def
	}
	res, ok := r.resolvers[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownResolver)
	}
	return res.Resolve(expr, opts)
}
