package pkg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestMetadata(t *testing.T) {
	if Name != "bcalc" {
		t.Errorf("Name = %q", Name)
	}

	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool { return a.Name == "ardnew" }) {
		t.Errorf("Author = %v", Author)
	}
}

func TestDirs_UsePrefix(t *testing.T) {
	for name, dir := range map[string]string{
		"config": ConfigDir(),
		"cache":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s dir %q does not end in %q", name, dir, Prefix())
		}
	}
}

func TestSearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)

	tests := []struct {
		name string
		env  string
		dirs []string
		want []string
	}{
		{"empty", "", nil, []string{"."}},
		{"flags first", "/env/a", []string{"/flag"}, []string{"/flag", "/env/a", "."}},
		{"dedup", "/a" + sep + sep + "/b" + sep + "/a/", []string{"/b"}, []string{"/b", "/a", "."}},
		{"dot last", "." + sep + "/x", nil, []string{"/x", "."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(PathEnv, tt.env)

			if got := SearchPath(tt.dirs...); !slices.Equal(got, tt.want) {
				t.Errorf("SearchPath(%v) with %s=%q = %v, want %v", tt.dirs, PathEnv, tt.env, got, tt.want)
			}
		})
	}
}

func TestFindScript(t *testing.T) {
	lib := t.TempDir()
	script := filepath.Join(lib, "fib.bc")

	if err := os.WriteFile(script, []byte("1"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		want  string
		found bool
	}{
		{"fib.bc", script, true},
		{"-", "-", true},
		{"missing.bc", "missing.bc", false},
		{script, script, true},
		{filepath.Join(lib, "nope.bc"), filepath.Join(lib, "nope.bc"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FindScript(tt.name, []string{t.TempDir(), lib})
			if got != tt.want || found != tt.found {
				t.Errorf("FindScript(%q) = %q, %v; want %q, %v", tt.name, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestError_Chain(t *testing.T) {
	err := ErrDecodeConfig.Wrap(fs.ErrNotExist).Wrapf("config.yaml")

	if got, want := err.Error(), "invalid configuration file: file does not exist: config.yaml"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrDecodeConfig) || !errors.Is(err, fs.ErrNotExist) {
		t.Error("chain does not match its members")
	}

	if errors.Is(err, ErrCreateDir) {
		t.Error("chain matches an unrelated sentinel")
	}

	if len(ErrDecodeConfig) != 1 {
		t.Error("Wrap mutated the sentinel")
	}
}
