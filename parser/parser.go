package parser

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"

	"github.com/confweave/confweave/internal/ctyval"
	"github.com/confweave/confweave/model"
	"github.com/confweave/confweave/resolver"
)

// Serialized value grammar. The reference and format patterns are combined
// with the escape pattern so that a replacement pass sees escapes first.
const (
	refPattern    = `@(?:(?P<path>(?:[^@]|\\@)+)/)?(?:(?P<cname>\w+)\.)?(?P<history>\.*)(?P<pname>\w+)`
	formatPattern = `%(?:(?P<lang>\w+):)?(?P<expr>(?:[^%]|\\%)*[^\\])%`
	escapePattern = `\\(?P<escape>[@%\\])`
)

var (
	// exprRe matches a full-expression value `=[lang:]expr`.
	exprRe = regexp.MustCompile(`^=(?:(?P<lang>\w+):)?(?P<expr>.*)$`)
	// strRe matches escapes, references and inline expressions inside a
	// plain string.
	strRe = regexp.MustCompile(`(?s)(?:` + escapePattern + `)|(?:` + refPattern + `)|(?:` + formatPattern + `)`)
	// exprRefRe matches escapes and references inside a full expression.
	exprRefRe = regexp.MustCompile(`(?:` + escapePattern + `)|(?:` + refPattern + `)`)
)

// Parser drives serialized-value parsing through an injected resolver
// registry.
type Parser struct {
	Registry *resolver.Registry
}

// New creates a parser bound to a registry.
func New(registry *resolver.Registry) *Parser {
	return &Parser{Registry: registry}
}

// ParseFunc adapts the parser to the model's pluggable parser contract.
func (p *Parser) ParseFunc() model.ParseFunc {
	return p.Parse
}

// Parse classifies and evaluates one serialized value. The result is
// coerced to req.Type when it does not already conform; a failed coercion
// is non-fatal and keeps the un-coerced value.
func (p *Parser) Parse(req model.ParseRequest) (any, error) {
	scope := make(map[string]any, len(req.Scope))
	for k, v := range req.Scope {
		scope[k] = v
	}

	var result any
	var err error

	if m := exprRe.FindStringSubmatch(req.SValue); m != nil {
		lang := m[exprRe.SubexpIndex("lang")]
		expr := m[exprRe.SubexpIndex("expr")]
		result, err = p.evalExpr(expr, lang, req, scope, false)
	} else {
		result, err = p.parseStr(req, scope)
	}
	if err != nil {
		return nil, err
	}

	if coerced, cerr := ctyval.Coerce(result, req.Type); cerr == nil {
		result = coerced
	}
	return result, nil
}

// evalExpr rewrites references into generated scope bindings and hands the
// expression to the registry.
func (p *Parser) evalExpr(expr, lang string, req model.ParseRequest, scope map[string]any, tostr bool) (any, error) {
	var refErr error
	refCount := 0

	rewritten := exprRefRe.ReplaceAllStringFunc(expr, func(match string) string {
		groups := submatches(exprRefRe, match)
		if esc := groups["escape"]; esc != "" {
			return esc
		}
		if refErr != nil {
			return match
		}

		param, err := p.ref(req, groups)
		if err != nil {
			refErr = err
			return match
		}

		value, err := param.Resolve(&model.ResolveOptions{
			Conf:       req.Conf,
			Loader:     req.Loader,
			Scope:      scope,
			Safe:       model.Flag(req.Safe),
			BestEffort: model.Flag(req.BestEffort),
		})
		if err != nil {
			refErr = err
			return match
		}

		binding := fmt.Sprintf("__ref_%d", refCount)
		refCount++
		scope[binding] = value
		return binding
	})
	if refErr != nil {
		return nil, refErr
	}

	return p.Registry.Resolve(rewritten, lang, resolver.Options{
		Safe:       req.Safe,
		ToStr:      tostr,
		Scope:      scope,
		BestEffort: req.BestEffort,
	})
}

// parseStr handles the plain-string form: escapes are unescaped, inline
// expressions evaluated and stringified, references replaced by the
// referenced parameter's serialized value. The assembled string is then
// coerced by the target type.
func (p *Parser) parseStr(req model.ParseRequest, scope map[string]any) (any, error) {
	var subErr error

	assembled := strRe.ReplaceAllStringFunc(req.SValue, func(match string) string {
		groups := submatches(strRe, match)
		if esc := groups["escape"]; esc != "" {
			return esc
		}
		if subErr != nil {
			return match
		}

		if expr := groups["expr"]; expr != "" {
			out, err := p.evalExpr(expr, groups["lang"], req, scope, true)
			if err != nil {
				subErr = err
				return match
			}
			return fmt.Sprintf("%v", out)
		}

		param, err := p.ref(req, groups)
		if err != nil {
			subErr = err
			return match
		}
		return param.SValue()
	})
	if subErr != nil {
		return nil, subErr
	}

	return coercePlain(assembled, req.Type)
}

// ref locates the parameter behind a reference match.
func (p *Parser) ref(req model.ParseRequest, groups map[string]string) (*model.Parameter, error) {
	conf := req.Conf

	if path := groups["path"]; path != "" {
		if req.Loader == nil {
			return nil, fmt.Errorf("reference to %q: no resource loader for path %q", groups["pname"], path)
		}
		external, err := req.Loader.Resource(strings.ReplaceAll(path, `\@`, "@"))
		if err != nil {
			return nil, fmt.Errorf("reference to %q: resource %q: %w", groups["pname"], path, err)
		}
		conf = external
	}
	if conf == nil {
		return nil, fmt.Errorf("reference to %q: no configuration in scope", groups["pname"])
	}

	history := 0
	if h := groups["history"]; h != "" {
		history = len(h) - 1
	}

	return conf.Param(groups["pname"], groups["cname"], history)
}

// coercePlain applies the plain-value coercions: bool from the literal
// true tokens, numbers, comma-separated collections and JSON maps.
func coercePlain(s string, want cty.Type) (any, error) {
	switch {
	case want == cty.NilType || want == cty.String:
		return s, nil

	case want == cty.Bool:
		return s == "1" || s == "true" || s == "True", nil

	case want == cty.Number:
		if i, err := cast.ToInt64E(s); err == nil {
			return i, nil
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", s)
		}
		return f, nil

	case want.IsListType() || want.IsSetType() || want.IsTupleType():
		if s == "" {
			return []any{}, nil
		}
		items := strings.Split(s, ",")
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, strings.TrimSpace(item))
		}
		return out, nil

	case want.IsMapType() || want.IsObjectType():
		var out map[string]any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("not a JSON map: %q: %w", s, err)
		}
		return out, nil
	}

	return s, nil
}

// submatches maps the named groups of re onto their values in match.
func submatches(re *regexp.Regexp, match string) map[string]string {
	values := re.FindStringSubmatch(match)
	out := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(values) {
			out[name] = values[i]
		}
	}
	return out
}
