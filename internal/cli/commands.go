package cli

import (
	"github.com/sjatkinson/opskit/internal/commands"
)

// commandInfo describes a built-in command.
type commandInfo struct {
	Name        string
	Description string
	Usage       func(app string) string
	Runner      func(args []string, ctx commands.CommandContext) int

	// NeedsConfig commands fail when the config file cannot be loaded.
	NeedsConfig bool
}

// registry is in the order shown by usage().
var registry = []commandInfo{
	{
		Name:        "init",
		Description: "Write a commented config file",
		Usage:       commands.InitUsage,
		Runner:      commands.RunInit,
	},
	{
		Name:        "ssm-rename",
		Description: "Copy (and optionally delete) SSM parameters under new names",
		Usage:       commands.SSMRenameUsage,
		Runner:      commands.RunSSMRename,
		NeedsConfig: true,
	},
	{
		Name:        "vault-to-ssm",
		Description: "Copy Azure Key Vault secrets into SSM as SecureString",
		Usage:       commands.VaultToSSMUsage,
		Runner:      commands.RunVaultToSSM,
		NeedsConfig: true,
	},
	{
		Name:        "grafana-export",
		Description: "Export Grafana dashboards into a folder tree",
		Usage:       commands.GrafanaExportUsage,
		Runner:      commands.RunGrafanaExport,
		NeedsConfig: true,
	},
}

func getCommand(name string) *commandInfo {
	for i := range registry {
		if registry[i].Name == name {
			return &registry[i]
		}
	}
	return nil
}

func getAllCommands() []commandInfo {
	return registry
}

// builtInCommands returns the names aliases may not shadow, "help" included.
func builtInCommands() map[string]bool {
	m := map[string]bool{"help": true}
	for _, c := range registry {
		m[c.Name] = true
	}
	return m
}
