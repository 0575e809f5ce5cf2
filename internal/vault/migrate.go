package vault

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sjatkinson/opskit/internal/paramstore"
)

// Migration is one secret and the parameter it will be written to.
type Migration struct {
	Secret    Secret
	ParamName string
}

// ParamName builds the fully qualified parameter name for secret under
// prefix. The result always starts with '/' and never contains "//".
func ParamName(prefix, secret string) string {
	name := "/" + secret
	if prefix != "" {
		name = prefix + "/" + secret
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	for strings.Contains(name, "//") {
		name = strings.ReplaceAll(name, "//", "/")
	}
	return name
}

// Plan maps secrets to parameter names. Disabled secrets are skipped.
// Secrets whose value could not be read are logged and returned as
// unreadable instead of being planned.
func Plan(secrets []Secret, prefix string, log zerolog.Logger) (plan []Migration, unreadable []Secret) {
	plan = make([]Migration, 0, len(secrets))
	for _, s := range secrets {
		if !s.Enabled {
			log.Warn().Str("secret", s.Name).Msg("skipping disabled secret")
			continue
		}
		if s.Err != nil {
			log.Error().Err(s.Err).Str("secret", s.Name).Msg("failed to read secret")
			unreadable = append(unreadable, s)
			continue
		}
		plan = append(plan, Migration{Secret: s, ParamName: ParamName(prefix, s.Name)})
	}
	return plan, unreadable
}

// Result counts migrated and failed secrets.
type Result struct {
	Stored int
	Failed []Migration
}

// Migrate writes each secret as a SecureString, overwriting existing values.
// A failed write is logged and the run continues.
func Migrate(ctx context.Context, st paramstore.Store, plan []Migration, log zerolog.Logger) (Result, error) {
	var res Result
	for _, m := range plan {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p := paramstore.Parameter{
			Name:  m.ParamName,
			Type:  paramstore.TypeSecureString,
			Value: m.Secret.Value,
		}
		if err := st.Put(ctx, p, true); err != nil {
			log.Error().Err(err).Str("secret", m.Secret.Name).Str("param", m.ParamName).Msg("failed to store secret")
			res.Failed = append(res.Failed, m)
			continue
		}
		log.Info().Str("secret", m.Secret.Name).Str("param", m.ParamName).Msg("stored secret")
		res.Stored++
	}
	return res, nil
}
