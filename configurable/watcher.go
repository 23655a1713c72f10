package configurable

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/agilira/argus"

	"github.com/confweave/confweave/driver"
	"github.com/confweave/confweave/driver/file"
	"github.com/confweave/confweave/internal/ctxlog"
	"github.com/confweave/confweave/model"
)

// Watcher re-applies a Configurable's configuration when its resources
// change. File-backed resources are watched through argus; resources behind
// other drivers, which argus cannot reach, are polled instead. Either
// signal is checked against a fingerprint of the assembled serialized
// values, so a rewrite that leaves every value identical does not trigger.
type Watcher struct {
	// Interval is the polling period, also used as the argus poll interval.
	// Zero means a minute.
	Interval time.Duration

	configurable *Configurable
	targets      []Settable
}

// NewWatcher creates a watcher re-applying onto the given targets.
func NewWatcher(c *Configurable, targets ...Settable) *Watcher {
	return &Watcher{configurable: c, targets: targets}
}

// Run watches until ctx is cancelled, applying the configuration whenever
// its fingerprint changes. The initial state counts as already applied;
// call Apply first for the initial load.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	interval := w.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	changed := make(chan string, 8)

	files, polled := w.sources()
	if len(files) > 0 {
		fw := argus.New(argus.Config{
			PollInterval: interval,
			ErrorHandler: func(err error, path string) {
				logger.Warn("Resource watch error.", "path", path, "error", err)
			},
		})
		for _, path := range files {
			path := path
			if err := fw.Watch(path, func(event argus.ChangeEvent) {
				select {
				case changed <- path:
				default:
				}
			}); err != nil {
				return fmt.Errorf("watch %q: %w", path, err)
			}
		}
		if err := fw.Start(); err != nil {
			return fmt.Errorf("start resource watcher: %w", err)
		}
		defer fw.Close()
	}

	// Poll only for resources argus cannot see.
	var tick <-chan time.Time
	if polled || len(files) == 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	last := fingerprint(w.configurable.Conf(ctx))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-changed:
			logger.Debug("Resource file changed.", "path", path)
		case <-tick:
		}

		current := fingerprint(w.configurable.Conf(ctx))
		if current == last {
			continue
		}
		last = current
		logger.Info("Configuration changed, re-applying.")
		if err := w.configurable.Apply(ctx, w.targets...); err != nil {
			logger.Warn("Re-apply finished with errors.", "error", err)
		}
	}
}

// sources partitions the configurable's resources into files argus can
// watch and a flag for drivers that need fingerprint polling.
func (w *Watcher) sources() (files []string, polled bool) {
	for _, drv := range w.configurable.drivers {
		fd, ok := drv.(*file.Driver)
		if !ok {
			polled = true
			continue
		}
		for _, path := range w.configurable.paths {
			files = append(files, fd.Locate(path)...)
		}
	}
	return files, polled
}

func fingerprint(conf *model.Configuration) uint64 {
	h := fnv.New64a()
	for _, section := range driver.Disassemble(conf) {
		h.Write([]byte(section.Name))
		h.Write([]byte{0})
		for _, item := range section.Items {
			h.Write([]byte(item.Key))
			h.Write([]byte{1})
			h.Write([]byte(item.Value))
			h.Write([]byte{2})
		}
	}
	return h.Sum64()
}
