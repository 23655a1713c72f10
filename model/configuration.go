package model

import (
	"context"
	"fmt"

	"github.com/confweave/confweave/internal/ctxlog"
)

// Reserved category names produced by Unify.
const (
	// Values holds local parameters that resolved without error.
	Values = "_VALUES"
	// Foreigns holds resolved parameters sourced outside the local scope.
	Foreigns = "_FOREIGN"
	// Errors holds parameters whose resolution failed.
	Errors = "_ERRORS"
)

// Configuration is an insertion-ordered collection of categories. Later
// categories override earlier ones when parameters share a name.
type Configuration struct {
	cats orderedMap[*Category]
}

// NewConfiguration creates a configuration holding the given categories.
func NewConfiguration(cats ...*Category) *Configuration {
	c := &Configuration{cats: newOrderedMap[*Category]()}
	for _, cat := range cats {
		c.Put(cat)
	}
	return c
}

// Put inserts or replaces a category, keyed by its name.
func (c *Configuration) Put(cat *Category) {
	c.cats.put(cat.Name(), cat)
}

// Get returns the category with the given name.
func (c *Configuration) Get(name string) (*Category, bool) {
	return c.cats.get(name)
}

// GetOrPut returns the named category, creating an empty one if missing.
func (c *Configuration) GetOrPut(name string) *Category {
	if cat, ok := c.cats.get(name); ok {
		return cat
	}
	cat := NewCategory(name)
	c.Put(cat)
	return cat
}

// Del removes the category with the given name.
func (c *Configuration) Del(name string) bool {
	return c.cats.del(name)
}

// Len returns the number of categories.
func (c *Configuration) Len() int { return c.cats.len() }

// Categories returns the categories in insertion order.
func (c *Configuration) Categories() []*Category { return c.cats.values() }

// Resolve resolves every parameter of every category against this
// configuration. Individual failures are captured on their parameter and
// logged; a single bad entry never aborts the pass.
func (c *Configuration) Resolve(ctx context.Context, opts *ResolveOptions) {
	logger := ctxlog.FromContext(ctx)

	merged := ResolveOptions{Conf: c}
	if opts != nil {
		merged = *opts
		merged.Conf = c
	}

	for _, cat := range c.Categories() {
		for _, param := range cat.Params() {
			if _, err := param.Resolve(&merged); err != nil {
				logger.Debug("Parameter resolution failed.",
					"category", cat.Name(), "parameter", param.Name().String(), "error", err)
			}
		}
	}
}

// Param finds a parameter for reference resolution. Categories are searched
// in definition order; with no category name the last definition wins.
// history skips that many matches further back from the selected category,
// so `history=1` addresses the definition shadowed by the current one.
func (c *Configuration) Param(pname, cname string, history int) (*Parameter, error) {
	var holders []*Category
	found := false

	for _, cat := range c.Categories() {
		if _, ok := cat.Get(pname); !ok {
			continue
		}
		holders = append(holders, cat)
		if cname == "" || cname == cat.Name() {
			found = true
			if cname != "" {
				break
			}
		}
	}

	if !found {
		if cname != "" {
			return nil, fmt.Errorf("category %q with parameter %q: %w", cname, pname, ErrNotFound)
		}
		return nil, fmt.Errorf("parameter %q: %w", pname, ErrNotFound)
	}

	idx := len(holders) - 1 - history
	if idx < 0 {
		return nil, fmt.Errorf("parameter %q with history %d: %w", pname, history, ErrNotFound)
	}

	param, _ := holders[idx].Get(pname)
	return param, nil
}

// Unify partitions every parameter into exactly three categories: VALUES
// (local, resolved), FOREIGNS (resolved, sourced externally) and ERRORS
// (resolution failed). Later categories override earlier ones, and no
// parameter name appears in more than one partition.
func (c *Configuration) Unify(copy bool) *Configuration {
	values := NewCategory(Values)
	foreigns := NewCategory(Foreigns)
	errors := NewCategory(Errors)

	for _, cat := range c.Categories() {
		for _, param := range cat.Params() {
			value := param.Value()
			if value == nil && param.Error() == nil && param.HasSValue() {
				// Lazily resolve entries nobody resolved yet; failures are
				// captured on the parameter.
				value, _ = param.Resolve(&ResolveOptions{Conf: c})
			}
			if value == nil && param.Error() == nil {
				continue
			}

			dest := values
			if param.Error() != nil {
				dest = errors
			} else if !param.Local {
				dest = foreigns
			}

			name := param.Name().String()
			for _, other := range []*Category{values, foreigns, errors} {
				if other != dest {
					other.Del(name)
				}
			}

			if copy {
				dest.Put(param.Copy(false))
			} else {
				dest.Put(param)
			}
		}
	}

	return NewConfiguration(values, foreigns, errors)
}

// Update merges other into this configuration as a non-destructive upsert:
// categories and parameters present in other but missing here are added
// (marked foreign), while existing entries are left untouched.
func (c *Configuration) Update(other *Configuration) {
	for _, ocat := range other.Categories() {
		cat, ok := c.Get(ocat.Name())
		if !ok {
			adopted := ocat.Copy(false)
			for _, p := range adopted.Params() {
				p.Local = false
			}
			c.Put(adopted)
			continue
		}
		for _, op := range ocat.Params() {
			if _, ok := cat.Get(op.Name().String()); ok {
				continue
			}
			adopted := op.Copy(false)
			adopted.Local = false
			cat.Put(adopted)
		}
	}
}

// Fill merges other into this configuration for the binding layer: missing
// categories and parameters are added as in Update, and existing parameters
// additionally adopt other's serialized value when override is set or they
// hold none themselves. Resource values loaded later thereby take priority
// over declared defaults.
func (c *Configuration) Fill(other *Configuration, override bool) {
	for _, ocat := range other.Categories() {
		cat, ok := c.Get(ocat.Name())
		if !ok {
			adopted := ocat.Copy(false)
			for _, p := range adopted.Params() {
				p.Local = false
			}
			c.Put(adopted)
			continue
		}
		for _, op := range ocat.Params() {
			existing, ok := cat.Get(op.Name().String())
			if !ok {
				adopted := op.Copy(false)
				adopted.Local = false
				cat.Put(adopted)
				continue
			}
			if op.HasSValue() && (override || !existing.HasSValue()) {
				existing.SetSValue(op.SValue())
			}
		}
	}
}

// Copy returns a structurally independent clone; cleaned strips cached
// values.
func (c *Configuration) Copy(cleaned bool) *Configuration {
	out := NewConfiguration()
	for _, cat := range c.Categories() {
		out.Put(cat.Copy(cleaned))
	}
	return out
}

func (c *Configuration) String() string {
	return fmt.Sprintf("Configuration(%d categories)", c.Len())
}
