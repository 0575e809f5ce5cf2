package grafana

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// fakeGrafana serves /api/search (paged) and /api/dashboards/uid/{uid}.
type fakeGrafana struct {
	token      string
	hits       []map[string]any
	dashboards map[string]string // uid -> raw response body
	searches   int
}

func (f *fakeGrafana) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeGrafana) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		http.Error(w, `{"message":"invalid API key"}`, http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/api/search":
		f.searches++
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if limit <= 0 {
			limit = len(f.hits)
		}
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * limit
		end := start + limit
		if start > len(f.hits) {
			start = len(f.hits)
		}
		if end > len(f.hits) {
			end = len(f.hits)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.hits[start:end])

	case strings.HasPrefix(r.URL.Path, "/api/dashboards/uid/"):
		uid := strings.TrimPrefix(r.URL.Path, "/api/dashboards/uid/")
		body, ok := f.dashboards[uid]
		if !ok {
			http.Error(w, `{"message":"Dashboard not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))

	default:
		http.NotFound(w, r)
	}
}

func folderHit(uid, title, parent string) map[string]any {
	h := map[string]any{"uid": uid, "title": title, "type": "dash-folder"}
	if parent != "" {
		h["parentUid"] = parent
	}
	return h
}

func dashHit(uid, title, folder string) map[string]any {
	h := map[string]any{"uid": uid, "title": title, "type": "dash-db"}
	if folder != "" {
		h["folderUid"] = folder
	}
	return h
}

func dashBody(uid, title string) string {
	return `{"meta":{"slug":"x"},"dashboard":{"uid":"` + uid + `","title":"` + title + `","version":3,"panels":[{"id":1,"gridPos":{"w":12,"h":8}}],"schemaVersion":39}}`
}
