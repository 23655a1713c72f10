package hcllang

import "math"

// SymbolSource resolves root names that an expression references but the
// scope does not define. It replaces the original design's dynamic runtime
// import: applications register the objects their expressions may name.
type SymbolSource interface {
	Lookup(name string) (any, bool)
}

// MapSymbols is a SymbolSource backed by a plain map. Namespaces are
// modelled as nested maps, so `math.pi` resolves through the "math" entry.
type MapSymbols map[string]any

// Lookup implements SymbolSource.
func (m MapSymbols) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// DefaultSymbols returns the symbol table installed by New: a small math
// namespace, enough for arithmetic expressions to work out of the box.
func DefaultSymbols() MapSymbols {
	return MapSymbols{
		"math": map[string]any{
			"pi":  math.Pi,
			"e":   math.E,
			"phi": math.Phi,
		},
	}
}
