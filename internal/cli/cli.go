package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Formats lists the supported resource formats. "auto" tries every format
// driver per resource.
var Formats = []string{"auto", "ini", "json", "xml", "yaml", "hcl"}

// Config is the runtime configuration assembled from the command line.
type Config struct {
	// Paths are the resource paths to load, in increasing priority order.
	Paths []string
	// Format selects the resource format driver.
	Format string
	// Dir is an extra search directory for relative resource paths.
	Dir string
	// LogFormat is "text" or "json".
	LogFormat string
	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string
	// Unsafe evaluates expressions in an unrestricted context.
	Unsafe bool
	// NoBestEffort disables dynamic binding of unknown expression names.
	NoBestEffort bool
}

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("confweave", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
confweave - resolve configuration resources and print their unified values.

Usage:
  confweave [options] RESOURCE_PATH [RESOURCE_PATH...]

Arguments:
  RESOURCE_PATH
    Path to a configuration resource. Relative paths are searched in the
    conventional configuration directories. Later paths override earlier
    ones.

Options:
`)
		flagSet.PrintDefaults()
	}

	formatFlag := flagSet.String("format", "auto", "Resource format. Options: 'auto', 'ini', 'json', 'xml', 'yaml' or 'hcl'.")
	dirFlag := flagSet.String("dir", "", "Extra search directory for relative resource paths.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	unsafeFlag := flagSet.Bool("unsafe", false, "Evaluate expressions in an unrestricted context.")
	noBestEffortFlag := flagSet.Bool("no-best-effort", false, "Fail on unknown expression names instead of binding them dynamically.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	format := strings.ToLower(*formatFlag)
	valid := false
	for _, f := range Formats {
		if format == f {
			valid = true
			break
		}
	}
	if !valid {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid format: must be one of %s", strings.Join(Formats, ", "))}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &Config{
		Paths:        flagSet.Args(),
		Format:       format,
		Dir:          *dirFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Unsafe:       *unsafeFlag,
		NoBestEffort: *noBestEffortFlag,
	}, false, nil
}
