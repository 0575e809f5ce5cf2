package commands

import (
	"bufio"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/sjatkinson/opskit/internal/logging"
	"github.com/sjatkinson/opskit/internal/paramstore"
)

// confirmPreview is how many mappings the confirmation prompt lists.
const confirmPreview = 5

func RunSSMRename(args []string, ctx CommandContext) int {
	fs := flag.NewFlagSet(ctx.AppName+" ssm-rename", flag.ContinueOnError)
	fs.SetOutput(ctx.Err)
	fs.Usage = func() {
		fmt.Fprintln(ctx.Err, SSMRenameUsage(ctx.AppName))
	}

	cfg := ctx.config()
	var (
		profile    string
		region     string
		oldPattern string
		newPattern string
		pathPrefix string
		dryRun     bool
		csvFile    string
		deleteOld  bool
		overwrite  bool
		yes        bool
	)
	fs.StringVar(&profile, "profile", cfg.AWS.Profile, "AWS shared config profile")
	fs.StringVar(&region, "region", cfg.AWS.Region, "AWS region")
	fs.StringVar(&oldPattern, "old-pattern", "", "pattern to replace (e.g. supex/crm)")
	fs.StringVar(&newPattern, "new-pattern", "", "replacement (e.g. supex-crm)")
	fs.StringVar(&pathPrefix, "path-prefix", "", "path to search (default: old pattern)")
	fs.BoolVar(&dryRun, "dry-run", false, "write a CSV report instead of changing anything")
	fs.StringVar(&csvFile, "csv-file", "parameter_rename_report.csv", "dry-run report file")
	fs.BoolVar(&deleteOld, "delete-old", false, "delete old parameters after creating new ones")
	fs.BoolVar(&overwrite, "overwrite", false, "overwrite existing parameters")
	fs.BoolVarP(&yes, "confirm", "y", false, "skip confirmation prompts")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(ctx.Err)
		fmt.Fprintln(ctx.Err, SSMRenameUsage(ctx.AppName))
		return 2
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintf(ctx.Err, "Error: unexpected arguments\n")
		fmt.Fprintln(ctx.Err, SSMRenameUsage(ctx.AppName))
		return 2
	}
	if region == "" {
		fmt.Fprintf(ctx.Err, "Error: --region is required (or set aws.region in config)\n")
		return 2
	}
	if oldPattern == "" || !fs.Changed("new-pattern") {
		fmt.Fprintf(ctx.Err, "Error: --old-pattern and --new-pattern are required\n")
		return 2
	}

	if pathPrefix == "" {
		pathPrefix = oldPattern
	}
	pathPrefix = paramstore.NormalizePath(pathPrefix)

	log := logging.Component(ctx.Log, "ssm-rename")
	log.Info().Str("prefix", pathPrefix).Msg("searching for parameters")
	log.Info().Str("old", oldPattern).Str("new", newPattern).Msg("pattern transformation")

	c := ctx.context()
	st, err := ctx.backends().ParamStore(c, profile, region)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: creating SSM client: %v\n", err)
		return 1
	}

	params, err := st.ListByPath(c, pathPrefix)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: retrieving parameters: %v\n", err)
		return 1
	}
	if len(params) == 0 {
		log.Info().Msg("no parameters found matching the path prefix")
		return 0
	}
	log.Info().Int("count", len(params)).Msg("found parameters to process")

	plan := paramstore.PlanRenames(params, oldPattern, newPattern, log)
	if len(plan) == 0 {
		log.Info().Msg("no parameters would be transformed with the given pattern")
		return 0
	}

	if dryRun {
		log.Info().Msg("dry run: no changes will be made")
		if err := paramstore.WriteRenameReportFile(csvFile, plan); err != nil {
			fmt.Fprintf(ctx.Err, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(ctx.Out, "\nParameter Transformation Preview:")
		renderTable(ctx.Out, []string{"Old Name", "New Name", "Type"}, renameRows(plan))
		fmt.Fprintf(ctx.Out, "Dry run complete. Report saved to %s\n", csvFile)
		return 0
	}

	in := bufio.NewReader(ctx.input())
	if !yes {
		fmt.Fprintf(ctx.Out, "\nAbout to process %d parameters:\n", len(plan))
		for _, r := range plan[:min(confirmPreview, len(plan))] {
			fmt.Fprintf(ctx.Out, "  %s -> %s (%s)\n", r.Old.Name, r.NewName, r.Old.Type)
		}
		if len(plan) > confirmPreview {
			fmt.Fprintf(ctx.Out, "  ... and %d more\n", len(plan)-confirmPreview)
		}
		if deleteOld {
			fmt.Fprintln(ctx.Out, "\nWARNING: Old parameters will be DELETED after new ones are created!")
		}
		if !confirm(in, ctx.Out, "Proceed?") {
			log.Info().Msg("operation cancelled by user")
			return 0
		}
	}

	res, err := paramstore.ApplyRenames(c, st, plan, overwrite, log)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(ctx.Out, "Created %d/%d new parameters\n", len(res.Created), len(plan))

	code := 0
	if len(res.Failed) > 0 {
		code = 1
	}

	if deleteOld && len(res.Created) > 0 {
		if !yes && !confirm(in, ctx.Out, fmt.Sprintf("Delete %d old parameters?", len(res.Created))) {
			log.Info().Msg("deletion cancelled by user")
			return code
		}
		deleted, failed, err := paramstore.DeleteOld(c, st, res.Created, log)
		if err != nil {
			fmt.Fprintf(ctx.Err, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(ctx.Out, "Deleted %d/%d old parameters\n", deleted, len(res.Created))
		if failed > 0 {
			code = 1
		}
	}

	if code == 0 {
		log.Info().Msg("operation completed successfully")
	}
	return code
}

func renameRows(plan []paramstore.Rename) [][]string {
	rows := make([][]string, 0, len(plan))
	for _, r := range plan {
		rows = append(rows, []string{r.Old.Name, r.NewName, r.Old.Type})
	}
	return rows
}

func SSMRenameUsage(app string) string {
	return fmt.Sprintf(`Usage:
  %s ssm-rename --old-pattern <p> --new-pattern <p> [flags]

Copy SSM parameters to names where <old-pattern> is replaced by <new-pattern>.

Flags:
  --profile <name>       AWS profile (config aws.profile)
  --region <region>      AWS region (config aws.region; required)
  --old-pattern <p>      pattern to replace (e.g. supex/crm)
  --new-pattern <p>      replacement (e.g. supex-crm; may be empty)
  --path-prefix <path>   path to search (default: old pattern)
  --dry-run              write a CSV report and preview only
  --csv-file <file>      report file (default parameter_rename_report.csv)
  --delete-old           delete old parameters after creating new ones
  --overwrite            overwrite existing parameters
  -y, --confirm          skip confirmation prompts

`, app)
}
