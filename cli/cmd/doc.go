// Package cmd implements the bcalc subcommands.
//
// Commands receive everything they share through the [context.Context] passed
// to their Run methods: the parsed [kong.Context], the output and input
// streams, the prelude scripts, and the options used to create the
// [lang.Session] each command evaluates in.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the YAML configuration file.
	ConfigIdentifier = "config"
)
