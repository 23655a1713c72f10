// Package file implements the format drivers reading and writing
// configuration files: INI, JSON, XML, YAML and HCL. Relative resource
// paths are resolved against the conventional configuration directories
// plus an optional directory named by the CONFWEAVE_CONF_DIR environment
// variable; every existing match contributes, later matches overriding
// earlier ones.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/confweave/confweave/driver"
	"github.com/confweave/confweave/internal/ctxlog"
	"github.com/confweave/confweave/model"
)

// ConfDirEnv names the environment variable adding one extra search
// directory.
const ConfDirEnv = "CONFWEAVE_CONF_DIR"

// ErrReadOnly is returned by Set on formats without write-back support.
var ErrReadOnly = errors.New("driver is read-only")

// DefaultDirs returns the directories a relative resource path is searched
// in, in increasing priority order.
func DefaultDirs() []string {
	dirs := []string{"/etc", "/usr/local/etc"}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, xdg)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config"), filepath.Join(home, "etc"))
	}
	dirs = append(dirs, ".")
	if extra := os.Getenv(ConfDirEnv); extra != "" {
		dirs = append(dirs, extra)
	}
	return dirs
}

// codec reads and writes one file format as raw sections.
type codec interface {
	decode(data []byte) ([]driver.RawSection, error)
	encode(sections []driver.RawSection) ([]byte, error)
}

// Driver reads and writes configuration files of one format.
type Driver struct {
	// Dirs are the search directories for relative paths; nil means
	// DefaultDirs.
	Dirs []string

	name  string
	codec codec
}

// Locate returns the existing resource files behind path, in increasing
// priority order. Absolute paths locate themselves.
func (d *Driver) Locate(path string) []string {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return nil
		}
		return []string{path}
	}

	dirs := d.Dirs
	if dirs == nil {
		dirs = DefaultDirs()
	}

	var out []string
	for _, dir := range dirs {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			out = append(out, candidate)
		}
	}
	return out
}

// Get implements driver.Driver: every located resource file contributes,
// later ones overriding earlier ones. An unreadable or malformed file is
// logged and skipped, keeping the pass best-effort.
func (d *Driver) Get(ctx context.Context, path string, conf *model.Configuration) (*model.Configuration, error) {
	logger := ctxlog.FromContext(ctx)

	located := d.Locate(path)
	if len(located) == 0 {
		return nil, fmt.Errorf("%s resource %q: %w", d.name, path, model.ErrNotFound)
	}

	var result *model.Configuration
	for _, rscpath := range located {
		data, err := os.ReadFile(rscpath)
		if err != nil {
			logger.Warn("Cannot read resource.", "driver", d.name, "path", rscpath, "error", err)
			continue
		}
		sections, err := d.codec.decode(data)
		if err != nil {
			logger.Warn("Cannot decode resource.", "driver", d.name, "path", rscpath, "error", err)
			continue
		}
		assembled := driver.Assemble(sections, conf)
		if result == nil {
			result = assembled
		} else {
			result.Fill(assembled, true)
		}
	}

	if result == nil {
		return nil, fmt.Errorf("%s resource %q: no readable file", d.name, path)
	}
	return result, nil
}

// Set implements driver.Driver, writing to the highest-priority located
// file, or creating the file at path when none exists yet.
func (d *Driver) Set(ctx context.Context, path string, conf *model.Configuration) error {
	data, err := d.codec.encode(driver.Disassemble(conf))
	if err != nil {
		return fmt.Errorf("%s encode %q: %w", d.name, path, err)
	}

	target := path
	if located := d.Locate(path); len(located) > 0 {
		target = located[len(located)-1]
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("%s write %q: %w", d.name, target, err)
	}
	ctxlog.FromContext(ctx).Debug("Wrote resource.", "driver", d.name, "path", target)
	return nil
}
