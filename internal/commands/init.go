package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/sjatkinson/opskit/internal/config"
	"github.com/sjatkinson/opskit/internal/grafana"
	"github.com/sjatkinson/opskit/internal/paramstore"
	"github.com/sjatkinson/opskit/internal/vault"
)

// CommandContext provides the context needed for command execution.
// This avoids import cycles between cli and commands packages.
type CommandContext struct {
	AppName string
	Out     io.Writer
	Err     io.Writer
	In      io.Reader

	Ctx        context.Context
	Config     *config.Config
	ConfigPath string // value of the global --config flag
	Log        zerolog.Logger

	// Backends creates the remote clients; zero fields use the real ones.
	Backends Backends
}

// Backends builds the clients for the remote systems a command talks to.
type Backends struct {
	ParamStore   func(ctx context.Context, profile, region string) (paramstore.Store, error)
	SecretSource func(ctx context.Context, vaultName string) (vault.Source, error)
	Grafana      func(host, apiKey string, timeout time.Duration) grafana.API
}

// DefaultBackends returns the AWS, Azure and Grafana implementations.
func DefaultBackends() Backends {
	return Backends{
		ParamStore: func(ctx context.Context, profile, region string) (paramstore.Store, error) {
			return paramstore.NewSSM(ctx, profile, region)
		},
		SecretSource: func(_ context.Context, vaultName string) (vault.Source, error) {
			return vault.NewAzureVault(vaultName)
		},
		Grafana: func(host, apiKey string, timeout time.Duration) grafana.API {
			return grafana.NewClient(host, apiKey, grafana.WithTimeout(timeout))
		},
	}
}

func (c CommandContext) backends() Backends {
	b := c.Backends
	def := DefaultBackends()
	if b.ParamStore == nil {
		b.ParamStore = def.ParamStore
	}
	if b.SecretSource == nil {
		b.SecretSource = def.SecretSource
	}
	if b.Grafana == nil {
		b.Grafana = def.Grafana
	}
	return b
}

func (c CommandContext) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c CommandContext) config() *config.Config {
	if c.Config == nil {
		return &config.Config{Grafana: config.GrafanaConfig{Dir: config.DefaultGrafanaDir}}
	}
	return c.Config
}

func (c CommandContext) input() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func RunInit(args []string, ctx CommandContext) int {
	fs := flag.NewFlagSet(ctx.AppName+" init", flag.ContinueOnError)
	fs.SetOutput(ctx.Err)
	fs.Usage = func() {
		fmt.Fprintln(ctx.Err, InitUsage(ctx.AppName))
	}

	var path string
	var force bool
	fs.StringVar(&path, "path", ctx.ConfigPath, "custom config file path")
	fs.BoolVar(&force, "force", false, "overwrite an existing config file")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(ctx.Err)
		fmt.Fprintln(ctx.Err, InitUsage(ctx.AppName))
		return 2
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(ctx.Err, InitUsage(ctx.AppName))
		return 2
	}

	res, err := config.InitConfig(config.InitOptions{CustomPath: path, Force: force})
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 1
	}

	if res.Existed {
		fmt.Fprintf(ctx.Out, "Overwrote config at %s\n", res.Path)
	} else {
		fmt.Fprintf(ctx.Out, "Wrote config to %s\n", res.Path)
	}
	return 0
}

func InitUsage(app string) string {
	return fmt.Sprintf(`Usage:
  %s init [--path <file>] [--force]

Write a commented config.toml template.

Flags:
  --path <file>   custom config file path
  --force         overwrite an existing config file

`, app)
}
