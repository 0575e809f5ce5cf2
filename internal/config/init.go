package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type InitOptions struct {
	CustomPath string
	Force      bool
}

type InitResult struct {
	Path    string
	Existed bool // true if a config file was already there before init
}

// Template is the file written by InitConfig.
const Template = `# opskit configuration
#
# Values here are the lowest-precedence source: environment variables
# override them and command-line flags override both.

# trace, debug, info, warn or error (env OPSKIT_LOG_LEVEL)
log_level = "info"

[aws]
# shared config profile and region (env AWS_PROFILE, AWS_REGION)
profile = ""
region = ""

[grafana]
# base URL, e.g. https://grafana.example.com (env GRAFANA_API_URL)
host = ""
# prefer env GRAFANA_API_KEY over storing the key here
api_key = ""
# export root (env GRAFANA_BACKUP_DIR)
dir = "./grafana-dash-backup/"

[alias]
# rename = "ssm-rename"
# backup = "grafana-export"
`

func InitConfig(opts InitOptions) (InitResult, error) {
	path, _, err := ResolvePath(opts.CustomPath)
	if err != nil {
		return InitResult{}, err
	}

	existed := fileExists(path)

	// If the file exists, refuse unless --force
	if existed && !opts.Force {
		return InitResult{}, fmt.Errorf(
			"config file %s already exists (use --force to overwrite)",
			path,
		)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return InitResult{}, err
	}

	// 0600: the file may end up holding an API key
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		return InitResult{}, err
	}

	return InitResult{
		Path:    path,
		Existed: existed,
	}, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
