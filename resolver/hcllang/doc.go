// Package hcllang is the default expression resolver: it evaluates a single
// HCL expression against a scope of go-cty values and a curated function
// table. Unknown names can be bound best-effort from a SymbolSource, with a
// strict iteration bound so resolution always terminates.
package hcllang
