package model

import "fmt"

// Category is a named, insertion-ordered group of parameters, analogous to
// an INI section. Lookup by name is O(1); re-putting an existing name
// replaces the parameter in place (last write wins).
type Category struct {
	name   string
	Local  bool
	params orderedMap[*Parameter]
}

// NewCategory creates a category holding the given parameters.
func NewCategory(name string, params ...*Parameter) *Category {
	c := &Category{name: name, Local: true, params: newOrderedMap[*Parameter]()}
	for _, p := range params {
		c.Put(p)
	}
	return c
}

// Name returns the category name.
func (c *Category) Name() string { return c.name }

// Rename changes the category name.
func (c *Category) Rename(name string) { c.name = name }

// Put inserts or replaces a parameter, keyed by its name.
func (c *Category) Put(p *Parameter) {
	c.params.put(p.Name().String(), p)
}

// Get returns the parameter with the given exact name.
func (c *Category) Get(name string) (*Parameter, bool) {
	return c.params.get(name)
}

// Del removes the parameter with the given name, reporting whether it was
// present.
func (c *Category) Del(name string) bool {
	return c.params.del(name)
}

// Len returns the number of parameters.
func (c *Category) Len() int { return c.params.len() }

// Params returns the parameters in insertion order.
func (c *Category) Params() []*Parameter { return c.params.values() }

// Matching returns the parameters whose name addresses the concrete key.
// Exact names match by equality, pattern names by full regexp match.
func (c *Category) Matching(key string) []*Parameter {
	var out []*Parameter
	for _, p := range c.Params() {
		if p.Name().Match(key) {
			out = append(out, p)
		}
	}
	return out
}

// Update merges other into this category parameter-wise: existing
// parameters adopt other's svalue and value, missing ones are added as
// foreign copies.
func (c *Category) Update(other *Category) {
	for _, op := range other.Params() {
		if p, ok := c.Get(op.Name().String()); ok {
			p.Adopt(op)
			continue
		}
		adopted := op.Copy(false)
		adopted.Local = false
		c.Put(adopted)
	}
}

// Copy returns a structurally independent clone; cleaned strips cached
// values from the copied parameters.
func (c *Category) Copy(cleaned bool) *Category {
	out := NewCategory(c.name)
	out.Local = c.Local
	for _, p := range c.Params() {
		out.Put(p.Copy(cleaned))
	}
	return out
}

func (c *Category) String() string {
	return fmt.Sprintf("Category(%s, %d params)", c.name, c.Len())
}
