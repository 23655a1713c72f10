package model

// orderedMap is a name-keyed collection preserving insertion order.
// Re-putting an existing key replaces the value but keeps its position.
type orderedMap[T any] struct {
	keys  []string
	items map[string]T
}

func newOrderedMap[T any]() orderedMap[T] {
	return orderedMap[T]{items: make(map[string]T)}
}

func (m *orderedMap[T]) put(key string, item T) {
	if m.items == nil {
		m.items = make(map[string]T)
	}
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = item
}

func (m *orderedMap[T]) get(key string) (T, bool) {
	item, ok := m.items[key]
	return item, ok
}

func (m *orderedMap[T]) del(key string) bool {
	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

func (m *orderedMap[T]) len() int {
	return len(m.keys)
}

// values returns the items in insertion order. The slice is freshly
// allocated, so callers may mutate the collection while ranging over it.
func (m *orderedMap[T]) values() []T {
	out := make([]T, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.items[k])
	}
	return out
}
