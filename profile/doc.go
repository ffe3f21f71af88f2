// Package profile provides optional runtime profiling for bcalc, built on
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o bcalc .
//	./bcalc --pprof-mode cpu run fib.bc
//	go tool pprof -http=: ~/.cache/bcalc/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a Stopper
// that does nothing, so callers need no build tags of their own.
//
// Supported modes with the tag: allocs, block, clock, cpu, goroutine, heap,
// mem, mutex, thread, and trace. The tag also registers the
// [net/http/pprof] handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag that enables profiling, and the name of the
// subdirectory that profiles are written to by default.
const Tag = `pprof`
