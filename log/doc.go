// Package log is a thin layer over [log/slog] with a Trace level, named
// time layouts, and a colorized text handler.
//
// A [Logger] is an immutable value. Options are applied when it is made
// with [Make] or derived with [Logger.Wrap]:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Info("session started", slog.Int("bindings", n))
//
// The zero Logger discards everything.
//
// # Default Logger
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger that starts out writing text to [os.Stderr]. [Config]
// reconfigures it.
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn], and [LevelError].
// Messages below the configured level are discarded.
//
// # Time Layouts
//
// [WithTimeLayout] accepts the name of any [time] package layout, matched
// ignoring case and punctuation (so "RFC3339", "rfc-3339", and "Rfc3339"
// agree), "none" to omit timestamps, or a custom layout string.
//
// # Output Formats
//
// [FormatText] (the default) and [FormatJSON]. Text output is colorized
// when [WithPretty] is enabled and the destination is a terminal.
package log
