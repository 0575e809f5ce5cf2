package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/sjatkinson/opskit/internal/store"
)

// ExportResult summarizes one export run.
type ExportResult struct {
	Folders    int
	Exported   int
	Skipped    int
	Collisions int
	Files      []string
}

// Exporter mirrors Grafana's folder tree into a FileStore.
type Exporter struct {
	api   API
	store *store.FileStore
	log   zerolog.Logger
}

// NewExporter wires an API client to an output store.
func NewExporter(api API, st *store.FileStore, log zerolog.Logger) *Exporter {
	return &Exporter{api: api, store: st, log: log}
}

// Export lists everything, creates one directory per folder and writes each
// dashboard as indented JSON. Per-folder and per-dashboard failures are
// logged and counted; only listing and output-root errors abort the run.
func (e *Exporter) Export(ctx context.Context) (ExportResult, error) {
	var res ExportResult

	if err := e.store.EnsureRoot(); err != nil {
		return res, err
	}

	items, err := e.api.Search(ctx)
	if err != nil {
		return res, fmt.Errorf("list folders and dashboards: %w", err)
	}
	folders, dashboards := Split(items)
	e.log.Info().Int("folders", len(folders)).Int("dashboards", len(dashboards)).Msg("search complete")

	resolver := NewPathResolver(folders)

	for _, f := range folders {
		parts, err := resolver.Resolve(f.UID)
		if err != nil {
			e.log.Warn().Err(err).Str("folder_uid", f.UID).Msg("skipping folder")
			continue
		}
		if _, err := e.store.EnsureDir(parts); err != nil {
			e.log.Error().Err(err).Str("folder_uid", f.UID).Msg("skipping folder")
			continue
		}
		res.Folders++
	}

	written := make(map[string]string)
	for _, d := range dashboards {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path, collided, err := e.exportOne(ctx, resolver, d, written)
		if err != nil {
			res.Skipped++
			continue
		}
		if collided {
			res.Collisions++
		}
		res.Exported++
		res.Files = append(res.Files, path)
	}

	return res, nil
}

func (e *Exporter) exportOne(ctx context.Context, resolver *PathResolver, d Dashboard, written map[string]string) (string, bool, error) {
	log := e.log.With().Str("dashboard_uid", d.UID).Str("title", d.Title).Logger()

	parts, err := resolver.Resolve(d.FolderUID)
	if err != nil {
		log.Warn().Err(err).Str("folder_uid", d.FolderUID).Msg("skipping dashboard")
		return "", false, err
	}

	log.Info().Msg("saving dashboard")
	raw, err := e.api.Dashboard(ctx, d.UID)
	if err != nil {
		if errors.Is(err, ErrNoDashboard) {
			log.Warn().Msg("dashboard not found in response, skipping")
		} else {
			log.Warn().Err(err).Msg("failed to fetch dashboard, skipping")
		}
		return "", false, err
	}

	data, title, err := formatDashboard(raw)
	if err != nil {
		log.Warn().Err(err).Msg("failed to format dashboard, skipping")
		return "", false, err
	}
	if title == "" {
		title = d.Title
	}

	dir := store.DirPath(e.store.Root(), parts)
	name := store.FileName(title, d.UID)
	collided := false
	if prev, taken := written[writtenKey(filepath.Join(dir, name))]; taken {
		collided = true
		name = store.CollisionName(title, d.UID)
		for n := 2; isTaken(written, filepath.Join(dir, name)); n++ {
			name = strings.TrimSuffix(store.CollisionName(title, d.UID), ".json") + "-" + strconv.Itoa(n) + ".json"
		}
		log.Warn().Str("conflicts_with", prev).Str("file", name).Msg("file name already used in this export")
	}

	path, err := e.store.Write(parts, name, data)
	if err != nil {
		log.Error().Err(err).Msg("failed to write dashboard")
		return "", false, err
	}
	written[writtenKey(path)] = d.UID
	return path, collided, nil
}

// writtenKey folds case so names that differ only in case collide, as they
// do on the default macOS and Windows filesystems.
func writtenKey(path string) string {
	return strings.ToLower(path)
}

func isTaken(written map[string]string, path string) bool {
	_, ok := written[writtenKey(path)]
	return ok
}

// formatDashboard re-encodes a dashboard model with sorted keys and a
// four-space indent, followed by a newline. Numbers are kept verbatim and
// non-ASCII characters are written as \uXXXX escapes, so output matches
// backups taken with Python's json.dumps defaults.
func formatDashboard(raw json.RawMessage) ([]byte, string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var model any
	if err := dec.Decode(&model); err != nil {
		return nil, "", fmt.Errorf("decode dashboard: %w", err)
	}

	var title string
	if m, ok := model.(map[string]any); ok {
		title, _ = m["title"].(string)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(model); err != nil {
		return nil, "", fmt.Errorf("encode dashboard: %w", err)
	}
	return escapeNonASCII(buf.Bytes()), title, nil
}

// escapeNonASCII rewrites every rune from DEL upward as a \uXXXX escape,
// using surrogate pairs above the BMP. Such runes only occur inside
// JSON strings, so the result is equivalent JSON.
func escapeNonASCII(b []byte) []byte {
	if !hasNonASCII(b) {
		return b
	}
	out := make([]byte, 0, len(b)+len(b)/4)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		switch {
		case r < 0x7f:
			out = append(out, byte(r))
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}

func hasNonASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x7f {
			return true
		}
	}
	return false
}
