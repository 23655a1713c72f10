package hcllang

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/confweave/confweave/internal/ctyval"
	"github.com/confweave/confweave/resolver"
)

// Lang is the name this resolver registers under.
const Lang = "hcl"

// maxRounds bounds best-effort retries. The missing-name set must also
// strictly shrink each round, so resolution always terminates.
const maxRounds = 8

// ErrResolutionDepth reports a best-effort loop that hit its iteration
// bound without resolving every name.
var ErrResolutionDepth = errors.New("expression resolution depth exceeded")

// Resolver evaluates HCL expressions. The zero value is not usable; call
// New.
type Resolver struct {
	symbols SymbolSource
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSymbols replaces the best-effort symbol table.
func WithSymbols(src SymbolSource) Option {
	return func(r *Resolver) { r.symbols = src }
}

// New creates an HCL expression resolver with the default symbol table.
func New(opts ...Option) *Resolver {
	r := &Resolver{symbols: DefaultSymbols()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements resolver.Resolver.
func (r *Resolver) Resolve(expr string, opts resolver.Options) (any, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(expr), "<expr>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %q: %w", expr, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value),
		Functions: functionTable(opts.Safe),
	}
	for name, value := range opts.Scope {
		cv, err := ctyval.FromGo(value)
		if err != nil {
			// A scope entry with no cty shape stays unbound; the
			// expression fails only if it actually references it.
			continue
		}
		evalCtx.Variables[name] = cv
	}

	val, err := r.eval(parsed, evalCtx, opts)
	if err != nil {
		return nil, err
	}

	if opts.ToStr {
		return stringify(val)
	}
	return ctyval.ToGo(val), nil
}

// eval evaluates the parsed expression, retrying with best-effort symbol
// binding while unknown-name diagnostics remain. Two guards bound the
// retries: a round that binds nothing means the missing set can no longer
// shrink and surfaces the original diagnostics, and maxRounds caps the
// total rounds even against a symbol source that keeps feeding names.
func (r *Resolver) eval(parsed hclsyntax.Expression, evalCtx *hcl.EvalContext, opts resolver.Options) (cty.Value, error) {
	for round := 0; ; round++ {
		val, diags := parsed.Value(evalCtx)
		if !diags.HasErrors() {
			return val, nil
		}
		if !opts.BestEffort {
			return cty.NilVal, diags
		}
		if round >= maxRounds {
			return cty.NilVal, fmt.Errorf("%w: %v", ErrResolutionDepth, diags)
		}

		missing := missingRoots(parsed, evalCtx)
		if len(missing) == 0 {
			// The failure is not about unknown names; retrying cannot help.
			return cty.NilVal, diags
		}

		bound := 0
		for _, name := range missing {
			value, ok := r.symbols.Lookup(name)
			if !ok {
				continue
			}
			cv, err := ctyval.FromGo(value)
			if err != nil {
				continue
			}
			evalCtx.Variables[name] = cv
			bound++
		}
		if bound == 0 {
			// The missing set can no longer shrink; surface the original
			// error instead of looping.
			return cty.NilVal, diags
		}
	}
}

// missingRoots lists the traversal root names the expression references but
// the context does not define.
func missingRoots(parsed hclsyntax.Expression, evalCtx *hcl.EvalContext) []string {
	seen := make(map[string]bool)
	var out []string
	for _, traversal := range parsed.Variables() {
		root := traversal.RootName()
		if seen[root] {
			continue
		}
		seen[root] = true
		if _, ok := evalCtx.Variables[root]; !ok {
			out = append(out, root)
		}
	}
	return out
}

func stringify(val cty.Value) (string, error) {
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return fmt.Sprintf("%v", ctyval.ToGo(val)), nil
	}
	if converted.IsNull() {
		return "", nil
	}
	return converted.AsString(), nil
}

// functionTable returns the curated go-cty stdlib functions. Safe mode
// excludes everything that reaches outside the process.
func functionTable(safe bool) map[string]function.Function {
	funcs := map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"ceil":       stdlib.CeilFunc,
		"coalesce":   stdlib.CoalesceFunc,
		"concat":     stdlib.ConcatFunc,
		"contains":   stdlib.ContainsFunc,
		"floor":      stdlib.FloorFunc,
		"format":     stdlib.FormatFunc,
		"join":       stdlib.JoinFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"keys":       stdlib.KeysFunc,
		"length":     stdlib.LengthFunc,
		"lower":      stdlib.LowerFunc,
		"max":        stdlib.MaxFunc,
		"min":        stdlib.MinFunc,
		"range":      stdlib.RangeFunc,
		"reverse":    stdlib.ReverseListFunc,
		"split":      stdlib.SplitFunc,
		"strlen":     stdlib.StrlenFunc,
		"substr":     stdlib.SubstrFunc,
		"trim":       stdlib.TrimFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"upper":      stdlib.UpperFunc,
		"values":     stdlib.ValuesFunc,
	}
	if !safe {
		funcs["env"] = envFunc
	}
	return funcs
}

// envFunc reads an environment variable. Only available in unsafe mode.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})
