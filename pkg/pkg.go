//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the bcalc module embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command and module identifier, used in help text, the
	// configuration directory, and environment variable names.
	Name = "bcalc"
	// Description is a short summary of the project used in help output.
	Description = "Arithmetic calculator language"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
