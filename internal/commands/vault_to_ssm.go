package commands

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/sjatkinson/opskit/internal/logging"
	"github.com/sjatkinson/opskit/internal/paramstore"
	"github.com/sjatkinson/opskit/internal/vault"
)

func RunVaultToSSM(args []string, ctx CommandContext) int {
	fs := flag.NewFlagSet(ctx.AppName+" vault-to-ssm", flag.ContinueOnError)
	fs.SetOutput(ctx.Err)
	fs.Usage = func() {
		fmt.Fprintln(ctx.Err, VaultToSSMUsage(ctx.AppName))
	}

	cfg := ctx.config()
	var (
		prefix     string
		profile    string
		region     string
		dryRun     bool
		csvFile    string
		showValues bool
	)
	fs.StringVar(&prefix, "prefix", "", "parameter name prefix (e.g. /myapp/prod)")
	fs.StringVar(&profile, "profile", cfg.AWS.Profile, "AWS shared config profile")
	fs.StringVar(&region, "region", cfg.AWS.Region, "AWS region")
	fs.BoolVar(&dryRun, "dry-run", false, "write a CSV report instead of storing anything")
	fs.StringVar(&csvFile, "csv-file", "migration_output.csv", "dry-run report file")
	fs.BoolVar(&showValues, "show-values", false, "include plaintext values in the dry-run report")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(ctx.Err)
		fmt.Fprintln(ctx.Err, VaultToSSMUsage(ctx.AppName))
		return 2
	}
	if len(fs.Args()) != 1 {
		fmt.Fprintf(ctx.Err, "Error: expected exactly one vault name\n")
		fmt.Fprintln(ctx.Err, VaultToSSMUsage(ctx.AppName))
		return 2
	}
	vaultName := fs.Arg(0)
	if vaultName == "" {
		fmt.Fprintf(ctx.Err, "Error: vault name must not be empty\n")
		return 2
	}
	log := logging.Component(ctx.Log, "vault-to-ssm")
	c := ctx.context()
	b := ctx.backends()

	src, err := b.SecretSource(c, vaultName)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: connecting to vault %s: %v\n", vaultName, err)
		return 1
	}

	log.Info().Str("vault", vaultName).Msg("listing secrets")
	secrets, err := src.ListSecrets(c)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: listing secrets: %v\n", err)
		return 1
	}

	plan, unreadable := vault.Plan(secrets, prefix, log)
	code := 0
	if len(unreadable) > 0 {
		for _, s := range unreadable {
			fmt.Fprintf(ctx.Err, "failed: %s: %v\n", s.Name, s.Err)
		}
		code = 1
	}
	if len(plan) == 0 {
		log.Info().Msg("no readable enabled secrets to migrate")
		return code
	}
	log.Info().Int("count", len(plan)).Int("unreadable", len(unreadable)).Msg("secrets to migrate")

	if dryRun {
		if err := vault.WriteReportFile(csvFile, plan, showValues); err != nil {
			fmt.Fprintf(ctx.Err, "Error: %v\n", err)
			return 1
		}
		rows := make([][]string, 0, len(plan))
		for _, m := range plan {
			rows = append(rows, []string{m.Secret.Name, m.ParamName})
		}
		renderTable(ctx.Out, []string{"Secret", "Parameter"}, rows)
		fmt.Fprintf(ctx.Out, "Dry run complete. Report saved to %s\n", csvFile)
		return code
	}

	st, err := b.ParamStore(c, profile, region)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: creating SSM client: %v\n", err)
		return 1
	}

	res, err := vault.Migrate(c, st, plan, log)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(ctx.Out, "Stored %d/%d secrets as %s parameters\n", res.Stored, len(plan), paramstore.TypeSecureString)
	for _, m := range res.Failed {
		fmt.Fprintf(ctx.Err, "failed: %s -> %s\n", m.Secret.Name, m.ParamName)
		code = 1
	}
	return code
}

func VaultToSSMUsage(app string) string {
	return fmt.Sprintf(`Usage:
  %s vault-to-ssm <vault-name> [flags]

Copy every enabled Azure Key Vault secret into SSM as a SecureString.

Flags:
  --prefix <path>      parameter name prefix (e.g. /myapp/prod)
  --profile <name>     AWS profile (config aws.profile)
  --region <region>    AWS region (config aws.region; default from the AWS profile)
  --dry-run            write a CSV report and preview only
  --csv-file <file>    report file (default migration_output.csv)
  --show-values        include plaintext values in the report

`, app)
}
