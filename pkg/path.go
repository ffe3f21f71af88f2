package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Prefix returns the base prefix string used to construct the path to the
// configuration directory and the prefix for environment variable identifiers.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with [Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // dlv default output
			regexp.MustCompile(`^\.+`):             "",   // leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			return Name
		}

		return id
	},
)

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), Prefix())
	},
)

// CacheDir returns the cache directory path used for transient files such as
// REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), Prefix())
	},
)

// userDir falls back to a hidden directory in $HOME, and then to the working
// directory, when the platform directory is unknown.
func userDir(platform func() (string, error), hidden string) string {
	if dir, err := platform(); err == nil {
		return dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, hidden)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}

// PathEnv is the environment variable listing script directories, formatted
// like PATH.
var PathEnv = strings.ToUpper(Name) + "_PATH"

// SearchPath returns the script search path: the directories in dirs,
// followed by those listed in [PathEnv], followed by the working directory.
// Empty and duplicate entries are removed, keeping the first occurrence, and
// the working directory is always searched last.
func SearchPath(dirs ...string) []string {
	joined := mung.Make(
		mung.WithSubjectItems(filepath.SplitList(os.Getenv(PathEnv))...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(func(dir string) bool { return strings.TrimSpace(dir) != "" }),
	).String()

	var path []string

	for _, dir := range filepath.SplitList(joined) {
		if dir = filepath.Clean(dir); dir != "." && !slices.Contains(path, dir) {
			path = append(path, dir)
		}
	}

	return append(path, ".")
}

// FindScript resolves name against the search path. Names containing a path
// separator, and the name "-", are returned unchanged.
// The bool result reports whether a regular file was found.
func FindScript(name string, path []string) (string, bool) {
	if name == "-" {
		return name, true
	}

	if strings.ContainsRune(name, os.PathSeparator) || filepath.IsAbs(name) {
		info, err := os.Stat(name)

		return name, err == nil && info.Mode().IsRegular()
	}

	for _, dir := range path {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}

	return name, false
}
