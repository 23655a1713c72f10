// Package confweave resolves typed, hierarchical configuration from
// heterogeneous resources. Parameters declare a name, a type and a parser;
// serialized values may embed expressions in registered languages and
// references to other parameters; drivers feed the model from INI, JSON,
// XML, YAML and HCL files; the configurable package binds resolved values
// onto application state.
//
// This package is the front door: it wires the default expression languages
// and re-exports the model's entry points. Everything here can be assembled
// by hand from the subpackages when the defaults do not fit.
package confweave

import (
	"github.com/confweave/confweave/model"
	"github.com/confweave/confweave/parser"
	"github.com/confweave/confweave/resolver"
	"github.com/confweave/confweave/resolver/hcllang"
	"github.com/confweave/confweave/resolver/lualang"
)

// Re-exported model types, for callers that only need the defaults.
type (
	Configuration = model.Configuration
	Category      = model.Category
	Parameter     = model.Parameter
)

// Re-exported model constructors.
var (
	NewConfiguration = model.NewConfiguration
	NewCategory      = model.NewCategory
	NewParameter     = model.NewParameter
)

// DefaultRegistry returns a registry with the built-in expression
// languages: hcl (the default) and lua.
func DefaultRegistry() *resolver.Registry {
	registry := resolver.NewRegistry()
	registry.Register(hcllang.Lang, hcllang.New())
	registry.Register(lualang.Lang, lualang.New())
	return registry
}

// NewParser returns a parser over DefaultRegistry.
func NewParser() *parser.Parser {
	return parser.New(DefaultRegistry())
}

// ParseFunc returns the default deserializer, ready to install on a
// parameter or pass through resolve options.
func ParseFunc() model.ParseFunc {
	return NewParser().ParseFunc()
}

// Serialize renders a typed value back into its serialized form.
func Serialize(value any) (string, error) {
	return parser.Serialize(value)
}
