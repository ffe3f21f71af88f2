// Package cli contains the command line interface for bcalc.
//
// # Usage
//
//	bcalc [flags] [command]
//
// With no command, bcalc starts the interactive REPL. The other commands
// are run, eval, fmt, ast, init and version.
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.json in the
// configuration directory (see [pkg.ConfigDir]). YAML keys are flag names,
// and flags given on the command line override them. The init command
// writes the current flag values as config.yaml.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (text, json)
//   - --log-time-layout: timestamp layout, or a time package constant name
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorize text output
//
// Logging flags are applied before any other argument is parsed.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
//
//   - --pprof-mode: enable profiling (cpu, mem, block, ...)
//   - --pprof-dir: profile output directory
package cli
