package model

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/confweave/confweave/internal/ctyval"
)

// ResourceLoader loads the configuration behind a resource path. It backs
// path-qualified references such as `@etc/app.conf/server.port`.
type ResourceLoader interface {
	Resource(path string) (*Configuration, error)
}

// ParseRequest carries everything a parser needs to turn a serialized value
// into a typed one.
type ParseRequest struct {
	SValue     string
	Conf       *Configuration // enclosing configuration, for references
	Loader     ResourceLoader // external configurations, for path references
	Scope      map[string]any
	Type       cty.Type
	Safe       bool
	BestEffort bool
}

// ParseFunc turns a serialized parameter value into a typed value. The
// canonical implementation lives in the parser package; the model carries
// only the contract so parameters stay free of expression syntax.
type ParseFunc func(req ParseRequest) (any, error)

// SerializeFunc renders a typed value back into a serialized form drivers
// can write to a resource.
type SerializeFunc func(value any) (string, error)

// Factory is the shape a resolved value must have for the parameter's Conf
// to be applied: the unified value map of Conf becomes its argument.
type Factory func(args map[string]any) (any, error)

// Parameter is a single named, typed configuration entry. It holds both the
// serialized string form read from a resource and the lazily resolved typed
// value. Resolution failures are captured on the parameter rather than
// propagated, so one bad entry never aborts a whole configuration pass.
type Parameter struct {
	// Type constrains and coerces the resolved value. cty.NilType accepts
	// anything.
	Type cty.Type

	// Parser deserializes svalue. When nil, the svalue is taken verbatim.
	Parser ParseFunc

	// Serializer renders the cached value when no svalue is present.
	Serializer SerializeFunc

	// Conf, when set, is applied as the argument of a Factory value.
	Conf *Configuration

	// Local distinguishes parameters declared on the configurable itself
	// from those discovered in an external resource.
	Local bool

	// Scope holds name bindings visible during expression evaluation.
	Scope map[string]any

	// Safe restricts expression evaluation to a pure context.
	Safe bool

	// BestEffort lets resolvers bind unknown expression names dynamically.
	BestEffort bool

	name      Name
	svalue    string
	hasSValue bool
	value     any
	err       error
}

// ParameterOption configures a Parameter at construction.
type ParameterOption func(*Parameter)

// WithType sets the expected value type.
func WithType(t cty.Type) ParameterOption {
	return func(p *Parameter) { p.Type = t }
}

// WithSValue sets the initial serialized value.
func WithSValue(s string) ParameterOption {
	return func(p *Parameter) { p.svalue, p.hasSValue = s, true }
}

// WithValue sets the initial resolved value. The value is assigned without
// type validation; use SetValue for the checked path.
func WithValue(v any) ParameterOption {
	return func(p *Parameter) { p.value = v }
}

// WithParser sets the deserializer.
func WithParser(f ParseFunc) ParameterOption {
	return func(p *Parameter) { p.Parser = f }
}

// WithSerializer sets the serializer used for write-back.
func WithSerializer(f SerializeFunc) ParameterOption {
	return func(p *Parameter) { p.Serializer = f }
}

// WithScope sets the default evaluation scope.
func WithScope(scope map[string]any) ParameterOption {
	return func(p *Parameter) { p.Scope = scope }
}

// WithConf sets the factory configuration.
func WithConf(conf *Configuration) ParameterOption {
	return func(p *Parameter) { p.Conf = conf }
}

// Foreign marks the parameter as discovered in an external resource.
func Foreign() ParameterOption {
	return func(p *Parameter) { p.Local = false }
}

// Unsafe allows expression evaluation in an unrestricted context.
func Unsafe() ParameterOption {
	return func(p *Parameter) { p.Safe = false }
}

// NoBestEffort disables dynamic binding of unknown expression names.
func NoBestEffort() ParameterOption {
	return func(p *Parameter) { p.BestEffort = false }
}

// NewParameter creates a parameter. Defaults: local, safe, best-effort, no
// type constraint.
func NewParameter(name string, opts ...ParameterOption) *Parameter {
	p := &Parameter{
		name:       NewName(name),
		Local:      true,
		Safe:       true,
		BestEffort: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the parameter name.
func (p *Parameter) Name() Name { return p.name }

// Rename changes the parameter name. Drivers use it when expanding a
// pattern name into the concrete keys found in a resource.
func (p *Parameter) Rename(name string) { p.name = NewName(name) }

// Error returns the error captured by the last failed resolution or
// assignment, or nil.
func (p *Parameter) Error() error { return p.err }

// HasSValue reports whether a serialized value is present.
func (p *Parameter) HasSValue() bool { return p.hasSValue }

// SValue returns the serialized form. When none was set, a string value
// serves as its own serialization, and any other cached value is rendered
// through the Serializer if one is installed.
func (p *Parameter) SValue() string {
	if p.hasSValue {
		return p.svalue
	}
	if s, ok := p.value.(string); ok {
		return s
	}
	if p.value != nil && p.Serializer != nil {
		if s, err := p.Serializer(p.value); err == nil {
			return s
		}
	}
	return ""
}

// SetSValue installs a new serialized value and discards the cached value
// and any captured error, forcing re-resolution.
func (p *Parameter) SetSValue(s string) {
	p.value = nil
	p.err = nil
	p.svalue = s
	p.hasSValue = true
}

// Value returns the resolved value. It does not trigger resolution; call
// Resolve first for parameters holding only a serialized value.
func (p *Parameter) Value() any { return p.value }

// SetValue assigns a resolved value directly. A value that does not conform
// to the declared type is rejected: the error is both captured on the
// parameter and returned, and the previous value is kept.
func (p *Parameter) SetValue(v any) error {
	if v == nil {
		p.value = nil
		return nil
	}
	if !ctyval.Conforms(v, p.Type) {
		err := &TypeError{Name: p.name.String(), Want: p.Type.FriendlyName(), Got: v}
		p.err = err
		return err
	}
	p.value = v
	p.err = nil
	return nil
}

// ResolveOptions overrides parts of a parameter's own resolution state.
// Zero-valued fields fall back to the parameter; Safe and BestEffort use
// pointers so that an explicit false can override a parameter's true.
type ResolveOptions struct {
	Conf       *Configuration
	Loader     ResourceLoader
	Scope      map[string]any
	Parser     ParseFunc
	Type       cty.Type
	Safe       *bool
	BestEffort *bool
}

// Flag is a convenience for ResolveOptions' optional booleans.
func Flag(v bool) *bool { return &v }

// Resolve computes the typed value from the serialized one, memoizing the
// result: while the svalue is unchanged, repeated calls return the cached
// value without re-invoking the parser. Failures are captured in Error and
// returned wrapped in a *ParameterError.
func (p *Parameter) Resolve(opts *ResolveOptions) (any, error) {
	if p.value != nil || !p.hasSValue {
		return p.value, nil
	}
	if opts == nil {
		opts = &ResolveOptions{}
	}

	p.err = nil

	parser := opts.Parser
	if parser == nil {
		parser = p.Parser
	}

	if parser == nil {
		// No parser: the serialized form is the value, subject to the
		// declared type.
		if err := p.SetValue(p.svalue); err != nil {
			return nil, p.fail(err)
		}
		return p.value, nil
	}

	req := ParseRequest{
		SValue:     p.svalue,
		Conf:       opts.Conf,
		Loader:     opts.Loader,
		Scope:      mergeScope(p.Scope, opts.Scope),
		Type:       p.Type,
		Safe:       p.Safe,
		BestEffort: p.BestEffort,
	}
	if opts.Type != cty.NilType {
		req.Type = opts.Type
	}
	if opts.Safe != nil {
		req.Safe = *opts.Safe
	}
	if opts.BestEffort != nil {
		req.BestEffort = *opts.BestEffort
	}

	value, err := parser(req)
	if err != nil {
		return nil, p.fail(err)
	}

	if p.Conf != nil {
		var factory Factory
		switch f := value.(type) {
		case Factory:
			factory = f
		case func(map[string]any) (any, error):
			factory = f
		}
		if factory != nil {
			value, err = p.applyConf(factory)
			if err != nil {
				return nil, p.fail(err)
			}
		}
	}

	if err := p.SetValue(value); err != nil {
		return nil, p.fail(err)
	}
	return p.value, nil
}

// applyConf instantiates a factory value with the unified values of the
// parameter's own configuration.
func (p *Parameter) applyConf(factory Factory) (any, error) {
	args := make(map[string]any)
	for _, cat := range p.Conf.Unify(false).Categories() {
		if cat.Name() == Errors {
			continue
		}
		for _, param := range cat.Params() {
			args[param.Name().String()] = param.Value()
		}
	}
	value, err := factory(args)
	if err != nil {
		return nil, fmt.Errorf("factory with conf %v: %w", args, err)
	}
	return value, nil
}

func (p *Parameter) fail(err error) error {
	p.err = err
	p.value = nil
	return &ParameterError{Name: p.name.String(), SValue: p.svalue, Err: err}
}

// Clean discards the cached value, the serialized value and any captured
// error.
func (p *Parameter) Clean() {
	p.value = nil
	p.svalue = ""
	p.hasSValue = false
	p.err = nil
}

// Copy returns a structurally independent clone. With cleaned set, the
// svalue, value and error are stripped.
func (p *Parameter) Copy(cleaned bool) *Parameter {
	out := &Parameter{
		name:       p.name,
		Type:       p.Type,
		Parser:     p.Parser,
		Serializer: p.Serializer,
		Conf:       p.Conf,
		Local:      p.Local,
		Safe:       p.Safe,
		BestEffort: p.BestEffort,
	}
	if p.Scope != nil {
		out.Scope = make(map[string]any, len(p.Scope))
		for k, v := range p.Scope {
			out.Scope[k] = v
		}
	}
	if !cleaned {
		out.svalue = p.svalue
		out.hasSValue = p.hasSValue
		out.value = p.value
		out.err = p.err
	}
	return out
}

// Adopt takes the svalue and value of other, keeping this parameter's own
// declaration (type, parser, scope, locality).
func (p *Parameter) Adopt(other *Parameter) {
	if other.hasSValue {
		p.SetSValue(other.svalue)
	}
	if other.value != nil {
		// Value adoption is best effort: a type mismatch keeps the svalue
		// pending for this parameter's own resolution.
		_ = p.SetValue(other.value)
	}
}

func (p *Parameter) String() string {
	return fmt.Sprintf("Parameter(%s, %v, %q, %v)", p.name, p.value, p.svalue, p.err)
}

func mergeScope(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
