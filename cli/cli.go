package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/bcalc/cli/cmd"
	"github.com/ardnew/bcalc/lang"
	"github.com/ardnew/bcalc/log"
	"github.com/ardnew/bcalc/pkg"
)

// CLI is the top-level command-line interface for bcalc.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Source   []string `help:"Prelude script(s) evaluated before the command, or '-' for stdin" name:"source" short:"s" type:"existingfile"`
	MaxDepth int      `default:"${maxDepth}"                                                   help:"Maximum function call depth"`
	Path     []string `help:"Directory searched for scripts given to run (also ${pathEnv})"   type:"path"`

	Repl    cmd.Repl    `cmd:"" default:"1" help:"Start an interactive session"`
	Run     cmd.Run     `cmd:""             help:"Evaluate script files"`
	Eval    cmd.Eval    `cmd:""             help:"Evaluate an expression"`
	Fmt     cmd.Fmt     `cmd:""             help:"Format a script"`
	AST     cmd.AST     `cmd:"" name:"ast"  help:"Print the syntax tree of a script"`
	Init    cmd.Init    `cmd:""             help:"Initialize configuration file"`
	Version cmd.Version `cmd:""             help:"Print version"`
}

// vars returns the interpolation variables shared by every flag and command.
func (c *CLI) vars() kong.Vars {
	return kong.Vars{
		cmd.ConfigIdentifier: configPath(baseConfig + ".yaml"),
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"chunkSize":          strconv.Itoa(lang.DefaultChunkSize),
		"pathEnv":            pkg.PathEnv,
	}.
		CloneWith(c.Log.vars()).
		CloneWith(c.Pprof.vars())
}

// Run executes the bcalc CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	vars := cli.vars()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before Kong parses anything, wherever they
	// appear on the command line.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve, vars[cmd.ConfigIdentifier]),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSourceFiles(ctx, cli.Source)
	ctx = cmd.WithSearchPath(ctx, pkg.SearchPath(cli.Path...))

	// Applies the flags that have no TextUnmarshaler, such as the time layout.
	defer cli.Log.start(ctx)()

	ctx = cmd.WithSessionOptions(ctx,
		lang.WithMaxDepth(cli.MaxDepth),
		lang.WithLogger(log.Default()),
	)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
