package file

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/confweave/confweave/driver"
)

// NewHCL creates the HCL file driver. Each `category "name" { ... }` block
// contributes one category; its attributes are parameters. String literals
// become plain serialized values, anything else keeps its source text as a
// full expression in the hcl language, resolved later with the rest of the
// configuration in scope. The driver is read-only: HCL files are authored,
// not written back.
func NewHCL(dirs ...string) *Driver {
	return &Driver{Dirs: dirs, name: "hcl", codec: hclCodec{}}
}

type hclCodec struct{}

func (hclCodec) decode(data []byte) ([]driver.RawSection, error) {
	f, diags := hclparse.NewParser().ParseHCL(data, "<resource>")
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", f.Body)
	}

	var out []driver.RawSection
	for _, block := range body.Blocks {
		if block.Type != "category" || len(block.Labels) != 1 {
			return nil, fmt.Errorf("unexpected block %q at %s", block.Type, block.DefRange().String())
		}
		raw := driver.RawSection{Name: block.Labels[0]}
		for _, name := range attributeOrder(block.Body) {
			attr := block.Body.Attributes[name]
			raw.Items = append(raw.Items, driver.RawItem{
				Key:   name,
				Value: svalueFor(attr.Expr, data),
			})
		}
		out = append(out, raw)
	}
	return out, nil
}

func (hclCodec) encode([]driver.RawSection) ([]byte, error) {
	return nil, ErrReadOnly
}

// svalueFor renders an attribute expression as a serialized value. A
// self-contained string literal serializes plainly; everything else keeps
// its source text as a deferred hcl expression.
func svalueFor(expr hclsyntax.Expression, src []byte) string {
	val, diags := expr.Value(&hcl.EvalContext{})
	if !diags.HasErrors() && val.Type() == cty.String && !val.IsNull() {
		return val.AsString()
	}
	return "=hcl:" + string(expr.Range().SliceBytes(src))
}

// attributeOrder returns attribute names sorted by source position, since
// hclsyntax stores them in a map.
func attributeOrder(body *hclsyntax.Body) []string {
	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0; j-- {
			a := body.Attributes[names[j-1]]
			b := body.Attributes[names[j]]
			if a.SrcRange.Start.Byte <= b.SrcRange.Start.Byte {
				break
			}
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}
