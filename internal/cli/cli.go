package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/sjatkinson/opskit/internal/commands"
	"github.com/sjatkinson/opskit/internal/config"
	"github.com/sjatkinson/opskit/internal/logging"
)

type Config struct {
	AppName string
	Out     io.Writer
	Err     io.Writer
	In      io.Reader

	// Ctx is cancelled on interrupt.
	Ctx context.Context

	Version string

	// DotEnv is loaded before the config file; empty means ".env".
	DotEnv string

	Verbose bool
	Debug   bool

	// Backends overrides the remote clients (tests).
	Backends commands.Backends
}

func Run(argv []string, cfg Config) int {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	if cfg.AppName == "" {
		cfg.AppName = "opskit"
	}
	if cfg.Version == "" {
		cfg.Version = "0.0.0-dev"
	}
	if cfg.DotEnv == "" {
		cfg.DotEnv = ".env"
	}

	// ---- Global flags ----
	global := flag.NewFlagSet(cfg.AppName, flag.ContinueOnError)
	global.SetOutput(cfg.Err)
	global.SetInterspersed(false)

	var (
		flgHelp    bool
		flgVersion bool
		flgConfig  string
	)
	global.BoolVarP(&flgHelp, "help", "h", false, "show help")
	global.BoolVar(&flgVersion, "version", false, "print version and exit")
	global.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose output")
	global.BoolVar(&cfg.Debug, "debug", false, "debug output")
	global.StringVar(&flgConfig, "config", "", "config file path")

	global.Usage = func() { fmt.Fprintln(cfg.Err, usage(cfg.AppName)) }

	if err := global.Parse(argv); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(cfg.Err)
		fmt.Fprintln(cfg.Err, usage(cfg.AppName))
		return 2
	}

	if flgVersion {
		fmt.Fprintf(cfg.Out, "%s %s\n", cfg.AppName, cfg.Version)
		return 0
	}

	rest := global.Args()
	if flgHelp || len(rest) == 0 {
		fmt.Fprintln(cfg.Err, usage(cfg.AppName))
		return 0
	}

	cmd := rest[0]
	args := rest[1:]
	verbose := cfg.Verbose || cfg.Debug

	if err := config.LoadDotEnv(cfg.DotEnv); err != nil && verbose {
		fmt.Fprintf(cfg.Err, "Warning: %v\n", err)
	}

	conf, confErr := config.Load(flgConfig)
	if confErr != nil && verbose {
		fmt.Fprintf(cfg.Err, "Warning: failed to load config: %v\n", confErr)
	}

	// Resolve alias: built-in commands take precedence
	if conf != nil && getCommand(cmd) == nil && cmd != "help" {
		aliases := validateAliases(conf.Alias, verbose, cfg.Err)
		if target, ok := aliases[cmd]; ok {
			cmd = target
		}
	}

	if cmd == "help" {
		if len(args) == 0 {
			fmt.Fprintln(cfg.Err, usage(cfg.AppName))
			return 0
		}
		fmt.Fprintln(cfg.Err, commandUsage(cfg.AppName, args[0]))
		return 0
	}

	info := getCommand(cmd)
	if info == nil {
		fmt.Fprintf(cfg.Err, "unknown command: %q\n\n", cmd)
		fmt.Fprintln(cfg.Err, usage(cfg.AppName))
		return 2
	}
	if confErr != nil && info.NeedsConfig {
		fmt.Fprintf(cfg.Err, "Error: %v\n", confErr)
		return 1
	}

	level := zerolog.InfoLevel
	if conf != nil {
		l, err := logging.ParseLevel(conf.LogLevel)
		if err != nil {
			fmt.Fprintf(cfg.Err, "Warning: %v, using info\n", err)
		}
		level = l
	}
	switch {
	case cfg.Debug:
		level = zerolog.TraceLevel
	case cfg.Verbose && level > zerolog.DebugLevel:
		level = zerolog.DebugLevel
	}

	return info.Runner(args, commands.CommandContext{
		AppName:    cfg.AppName,
		Out:        cfg.Out,
		Err:        cfg.Err,
		In:         cfg.In,
		Ctx:        cfg.Ctx,
		Config:     conf,
		ConfigPath: flgConfig,
		Log:        logging.New(cfg.Err, level),
		Backends:   cfg.Backends,
	})
}

func usage(app string) string {
	var b strings.Builder
	for _, c := range getAllCommands() {
		fmt.Fprintf(&b, "  %-15s %s\n", c.Name, c.Description)
	}
	fmt.Fprintf(&b, "  %-15s %s\n", "help", "Help for a command")

	return fmt.Sprintf(`%s: AWS SSM, Azure Key Vault and Grafana maintenance tasks

Usage:
  %s [global flags] <command> [command flags] [args]

Global flags:
  -h, --help           show help
      --version        print version and exit
  -v, --verbose        verbose output
      --debug          debug output
      --config <file>  config file (default $XDG_CONFIG_HOME/opskit/config.toml)

Commands:
%s
Run:
  %s help <command>
`, app, app, b.String(), app)
}

func commandUsage(app, cmd string) string {
	if info := getCommand(cmd); info != nil {
		return info.Usage(app)
	}
	return fmt.Sprintf("Unknown command %q\n\n%s", cmd, usage(app))
}

// validateAliases filters and validates aliases:
// - Removes aliases that conflict with built-in commands (built-in wins)
// - Removes aliases that point to non-existent commands
// - Removes aliases that point to other aliases (no recursion)
// Returns a validated map of alias -> built-in command.
func validateAliases(raw config.Aliases, verbose bool, errOut io.Writer) config.Aliases {
	builtIn := builtInCommands()
	valid := make(config.Aliases)

	for alias, target := range raw {
		if builtIn[alias] {
			if verbose {
				fmt.Fprintf(errOut, "Warning: alias %q conflicts with built-in command, ignoring\n", alias)
			}
			continue
		}

		if !builtIn[target] {
			if _, isAlias := raw[target]; isAlias {
				if verbose {
					fmt.Fprintf(errOut, "Warning: alias %q points to another alias %q (recursion not allowed), ignoring\n", alias, target)
				}
				continue
			}
			if verbose {
				fmt.Fprintf(errOut, "Warning: alias %q points to non-existent command %q, ignoring\n", alias, target)
			}
			continue
		}

		valid[alias] = target
	}

	return valid
}
