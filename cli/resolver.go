package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/bcalc/pkg"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files, such
// as the one written by the init command:
//
//	log-level: debug
//	log-pretty: false
//	max-depth: 200
//	path:
//	  - ~/lib/bcalc
//
// Keys are flag names. Underscores may be used in place of hyphens. Scalars
// are handed to Kong as strings so that its own decoders apply, and
// sequences become lists of strings. Command-line flags override file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrDecodeConfig.Wrap(err)
	}

	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, pkg.ErrDecodeConfig.Wrap(err)
	}

	cfg := make(config, len(raw))

	for key, value := range raw {
		cfg[strings.ReplaceAll(key, "_", "-")] = flagValue(value)
	}

	return cfg, nil
}

// config implements [kong.Resolver] over decoded YAML keyed by flag name.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}

// flagValue converts a decoded YAML value to the form Kong expects.
func flagValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		list := make([]any, len(v))
		for i, item := range v {
			list[i] = flagValue(item)
		}

		return list
	default:
		return fmt.Sprint(v)
	}
}
