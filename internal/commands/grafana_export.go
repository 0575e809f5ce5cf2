package commands

import (
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/sjatkinson/opskit/internal/grafana"
	"github.com/sjatkinson/opskit/internal/logging"
	"github.com/sjatkinson/opskit/internal/store"
)

const defaultGrafanaTimeout = 30 * time.Second

func RunGrafanaExport(args []string, ctx CommandContext) int {
	fs := flag.NewFlagSet(ctx.AppName+" grafana-export", flag.ContinueOnError)
	fs.SetOutput(ctx.Err)
	fs.Usage = func() {
		fmt.Fprintln(ctx.Err, GrafanaExportUsage(ctx.AppName))
	}

	cfg := ctx.config()
	var (
		host    string
		apiKey  string
		dir     string
		timeout time.Duration
	)
	fs.StringVar(&host, "host", cfg.Grafana.Host, "Grafana base URL")
	fs.StringVar(&apiKey, "api-key", cfg.Grafana.APIKey, "Grafana API key")
	fs.StringVar(&dir, "dir", cfg.Grafana.Dir, "output directory")
	fs.DurationVar(&timeout, "timeout", defaultGrafanaTimeout, "HTTP timeout per request")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(ctx.Err)
		fmt.Fprintln(ctx.Err, GrafanaExportUsage(ctx.AppName))
		return 2
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintf(ctx.Err, "Error: unexpected arguments\n")
		fmt.Fprintln(ctx.Err, GrafanaExportUsage(ctx.AppName))
		return 2
	}
	if host == "" || apiKey == "" {
		fmt.Fprintf(ctx.Err, "Error: Grafana host and API key are required (--host/--api-key or GRAFANA_API_URL/GRAFANA_API_KEY)\n")
		return 2
	}
	if dir == "" {
		fmt.Fprintf(ctx.Err, "Error: --dir must not be empty\n")
		return 2
	}

	log := logging.Component(ctx.Log, "grafana-export")
	api := ctx.backends().Grafana(host, apiKey, timeout)
	fstore := store.NewFileStore(dir)

	log.Info().Str("host", host).Str("dir", fstore.Root()).Msg("exporting dashboards")
	res, err := grafana.NewExporter(api, fstore, log).Export(ctx.context())
	if err != nil {
		var se *grafana.StatusError
		if errors.As(err, &se) {
			fmt.Fprintf(ctx.Err, "Error: Grafana returned %d for %s\n", se.Code, se.URL)
		} else {
			fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		}
		return 1
	}

	fmt.Fprintf(ctx.Out, "Exported %d dashboards into %d folders under %s (%d skipped, %d renamed on collision)\n",
		res.Exported, res.Folders, fstore.Root(), res.Skipped, res.Collisions)
	return 0
}

func GrafanaExportUsage(app string) string {
	return fmt.Sprintf(`Usage:
  %s grafana-export [flags]

Export every Grafana dashboard as JSON, mirroring the folder tree.

Flags:
  --host <url>          Grafana base URL (env GRAFANA_API_URL, config grafana.host)
  --api-key <key>       API key (env GRAFANA_API_KEY, config grafana.api_key)
  --dir <path>          output directory (default ./grafana-dash-backup/)
  --timeout <duration>  HTTP timeout per request (default 30s)

`, app)
}
