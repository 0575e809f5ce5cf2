package paramstore

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Rename maps an existing parameter to its new name.
type Rename struct {
	Old     Parameter
	NewName string
}

// Transform replaces every occurrence of oldPattern in name with newPattern.
// It reports false when oldPattern does not occur.
func Transform(name, oldPattern, newPattern string) (string, bool) {
	if oldPattern == "" || !strings.Contains(name, oldPattern) {
		return name, false
	}
	return strings.ReplaceAll(name, oldPattern, newPattern), true
}

// PlanRenames computes the renames for params. Parameters that the pattern
// leaves unchanged are skipped, as is any parameter whose new name was
// already claimed by an earlier one.
func PlanRenames(params []Parameter, oldPattern, newPattern string, log zerolog.Logger) []Rename {
	var plan []Rename
	claimed := make(map[string]string)

	for _, p := range params {
		newName, ok := Transform(p.Name, oldPattern, newPattern)
		if !ok {
			log.Warn().Str("name", p.Name).Str("pattern", oldPattern).Msg("pattern not found")
		}
		if newName == p.Name {
			log.Warn().Str("name", p.Name).Msg("skipping, no transformation applied")
			continue
		}
		if prev, dup := claimed[newName]; dup {
			log.Warn().Str("name", p.Name).Str("new_name", newName).Str("claimed_by", prev).Msg("skipping, new name already planned")
			continue
		}
		claimed[newName] = p.Name
		plan = append(plan, Rename{Old: p, NewName: newName})
	}
	return plan
}

// ApplyResult records which renames were created.
type ApplyResult struct {
	Created []Rename
	Failed  []Rename
}

// ApplyRenames creates each new parameter with the old type, value and
// description. Failures are logged and collected; the run continues.
func ApplyRenames(ctx context.Context, st Store, plan []Rename, overwrite bool, log zerolog.Logger) (ApplyResult, error) {
	var res ApplyResult
	for _, r := range plan {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		desc, err := st.Describe(ctx, r.Old.Name)
		if err != nil {
			log.Error().Err(err).Str("name", r.Old.Name).Msg("error retrieving parameter")
			res.Failed = append(res.Failed, r)
			continue
		}

		np := Parameter{
			Name:        r.NewName,
			Type:        r.Old.Type,
			Value:       r.Old.Value,
			Description: desc,
		}
		if err := st.Put(ctx, np, overwrite); err != nil {
			log.Error().Err(err).Str("name", r.NewName).Msg("error creating parameter")
			res.Failed = append(res.Failed, r)
			continue
		}
		log.Info().Str("name", r.NewName).Msg("created parameter")
		res.Created = append(res.Created, r)
	}
	return res, nil
}

// DeleteOld removes the old name of every created rename and returns how many
// were deleted and how many failed.
func DeleteOld(ctx context.Context, st Store, created []Rename, log zerolog.Logger) (deleted, failed int, err error) {
	for _, r := range created {
		if err := ctx.Err(); err != nil {
			return deleted, failed, err
		}
		if err := st.Delete(ctx, r.Old.Name); err != nil {
			log.Error().Err(err).Str("name", r.Old.Name).Msg("error deleting parameter")
			failed++
			continue
		}
		log.Info().Str("name", r.Old.Name).Msg("deleted parameter")
		deleted++
	}
	return deleted, failed, nil
}
