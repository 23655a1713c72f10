package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/confweave/confweave/internal/ctxlog"
	"github.com/confweave/confweave/model"
)

// Mem is an in-memory driver: resources are plain section/key/value maps
// keyed by path. It backs programmatic configuration sources and tests, and
// is safe for concurrent use so watchers can poll while callers mutate.
type Mem struct {
	mu        sync.RWMutex
	resources map[string][]RawSection
}

// NewMem creates an empty in-memory driver.
func NewMem() *Mem {
	return &Mem{resources: make(map[string][]RawSection)}
}

// Put stores one serialized value under path/section/key, creating the
// resource and section as needed.
func (m *Mem) Put(path, section, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sections := m.resources[path]
	for i := range sections {
		if sections[i].Name != section {
			continue
		}
		for j := range sections[i].Items {
			if sections[i].Items[j].Key == key {
				sections[i].Items[j].Value = value
				return
			}
		}
		sections[i].Items = append(sections[i].Items, RawItem{Key: key, Value: value})
		return
	}
	m.resources[path] = append(sections, RawSection{
		Name:  section,
		Items: []RawItem{{Key: key, Value: value}},
	})
}

// Get implements Driver.
func (m *Mem) Get(ctx context.Context, path string, conf *model.Configuration) (*model.Configuration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sections, ok := m.resources[path]
	if !ok {
		return nil, fmt.Errorf("mem resource %q: %w", path, model.ErrNotFound)
	}
	ctxlog.FromContext(ctx).Debug("Reading in-memory resource.", "path", path, "sections", len(sections))
	return Assemble(sections, conf), nil
}

// Set implements Driver.
func (m *Mem) Set(ctx context.Context, path string, conf *model.Configuration) error {
	m.mu.Lock()
	m.resources[path] = Disassemble(conf)
	m.mu.Unlock()
	ctxlog.FromContext(ctx).Debug("Stored in-memory resource.", "path", path)
	return nil
}
