package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	"github.com/confweave/confweave"
	"github.com/confweave/confweave/configurable"
	"github.com/confweave/confweave/driver"
	"github.com/confweave/confweave/driver/file"
	"github.com/confweave/confweave/internal/cli"
	"github.com/confweave/confweave/internal/ctxlog"
	"github.com/confweave/confweave/model"
)

// main is the entrypoint for the confweave tool.
func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the tool logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	ctx := ctxlog.WithLogger(context.Background(), newLogger(cfg))

	opts := []configurable.Option{
		configurable.WithPaths(cfg.Paths...),
		configurable.WithDrivers(driversFor(cfg)...),
		configurable.WithParser(confweave.ParseFunc()),
	}
	if cfg.Unsafe {
		opts = append(opts, configurable.Unsafe())
	}
	if cfg.NoBestEffort {
		opts = append(opts, configurable.NoBestEffort())
	}
	c := configurable.New(opts...)

	conf := c.Conf(ctx)
	if conf.Len() == 0 {
		return &cli.ExitError{Code: 1, Message: "no configuration found"}
	}
	conf.Resolve(ctx, &model.ResolveOptions{
		Loader:     c,
		Parser:     confweave.ParseFunc(),
		Safe:       model.Flag(!cfg.Unsafe),
		BestEffort: model.Flag(!cfg.NoBestEffort),
	})

	return printUnified(outW, conf.Unify(false))
}

// newLogger builds the slog logger the whole run logs through.
func newLogger(cfg *cli.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler)
}

// driversFor instantiates the format drivers matching the selected format,
// with the extra search directory appended at highest priority.
func driversFor(cfg *cli.Config) []driver.Driver {
	var dirs []string
	if cfg.Dir != "" {
		dirs = append(file.DefaultDirs(), cfg.Dir)
	}

	constructors := map[string]func(...string) *file.Driver{
		"ini":  file.NewINI,
		"json": file.NewJSON,
		"xml":  file.NewXML,
		"yaml": file.NewYAML,
		"hcl":  file.NewHCL,
	}

	if cfg.Format != "auto" {
		return []driver.Driver{constructors[cfg.Format](dirs...)}
	}
	var out []driver.Driver
	for _, format := range cli.Formats {
		if ctor, ok := constructors[format]; ok {
			out = append(out, ctor(dirs...))
		}
	}
	return out
}

// printUnified renders the unified partitions as JSON on stdout.
func printUnified(outW io.Writer, unified *model.Configuration) error {
	doc := make(map[string]map[string]any, unified.Len())
	for _, cat := range unified.Categories() {
		section := make(map[string]any, cat.Len())
		for _, param := range cat.Params() {
			if cat.Name() == model.Errors {
				section[param.Name().String()] = fmt.Sprintf("%v", param.Error())
				continue
			}
			section[param.Name().String()] = param.Value()
		}
		doc[cat.Name()] = section
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(outW, string(data))
	return nil
}
