package driver

import (
	"context"

	"github.com/confweave/confweave/model"
)

// Driver feeds raw resource data into the configuration model and writes
// configurations back.
type Driver interface {
	// Get reads the resource at path into a Configuration of serialized
	// values, matched against the placeholders declared in conf (which may
	// be nil). An unreadable resource yields (nil, error); callers treat
	// that as a missing source, not a fatal condition.
	Get(ctx context.Context, path string, conf *model.Configuration) (*model.Configuration, error)

	// Set writes every category and parameter of conf to the resource at
	// path.
	Set(ctx context.Context, path string, conf *model.Configuration) error
}

// RawItem is one serialized key/value pair found in a resource.
type RawItem struct {
	Key   string
	Value string
}

// RawSection is one named group of items found in a resource.
type RawSection struct {
	Name  string
	Items []RawItem
}

// Assemble turns raw sections into a Configuration. Discovered keys that
// match a parameter declared in conf (exact or pattern name) produce a
// structural copy of that declaration carrying the discovered serialized
// value; keys with no declaration become plain foreign parameters.
func Assemble(raw []RawSection, conf *model.Configuration) *model.Configuration {
	out := model.NewConfiguration()

	for _, section := range raw {
		cat := model.NewCategory(section.Name)

		var declared *model.Category
		if conf != nil {
			if c, ok := conf.Get(section.Name); ok {
				declared = c
			}
		}

		for _, item := range section.Items {
			var matches []*model.Parameter
			if declared != nil {
				matches = declared.Matching(item.Key)
			}
			if len(matches) == 0 {
				cat.Put(model.NewParameter(item.Key,
					model.WithSValue(item.Value), model.Foreign()))
				continue
			}
			for _, decl := range matches {
				expanded := decl.Copy(true)
				expanded.Rename(item.Key)
				expanded.SetSValue(item.Value)
				cat.Put(expanded)
			}
		}

		out.Put(cat)
	}

	return out
}

// Disassemble renders a Configuration back into raw sections for
// write-back. Parameters with neither a serialized value nor a
// serializable cached value are skipped.
func Disassemble(conf *model.Configuration) []RawSection {
	var out []RawSection
	for _, cat := range conf.Categories() {
		section := RawSection{Name: cat.Name()}
		for _, param := range cat.Params() {
			svalue := param.SValue()
			if svalue == "" && !param.HasSValue() {
				continue
			}
			section.Items = append(section.Items, RawItem{
				Key:   param.Name().String(),
				Value: svalue,
			})
		}
		out = append(out, section)
	}
	return out
}
