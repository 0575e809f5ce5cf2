package grafana

import "encoding/json"

// Search hit types as returned by /api/search.
const (
	hitTypeFolder    = "dash-folder"
	hitTypeDashboard = "dash-db"
)

// Item is a search result that exporting cares about: a Folder or a Dashboard.
type Item interface {
	itemUID() string
}

// Folder is a container node in the dashboard hierarchy. An empty ParentUID
// means the folder sits at the root.
type Folder struct {
	UID       string
	Title     string
	ParentUID string
}

// Dashboard is a leaf in the hierarchy. An empty FolderUID means the
// dashboard lives in the General (root) folder.
type Dashboard struct {
	UID       string
	Title     string
	FolderUID string
}

func (f Folder) itemUID() string    { return f.UID }
func (d Dashboard) itemUID() string { return d.UID }

// searchHit mirrors the fields of a /api/search result we read.
type searchHit struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	FolderUID string `json:"folderUid"`
	ParentUID string `json:"parentUid"`
}

// item converts a raw hit into its variant. Unknown types return nil.
func (h searchHit) item() Item {
	switch h.Type {
	case hitTypeFolder:
		parent := h.ParentUID
		if parent == "" {
			// nested folders report their parent as folderUid on newer servers
			parent = h.FolderUID
		}
		return Folder{UID: h.UID, Title: h.Title, ParentUID: parent}
	case hitTypeDashboard:
		return Dashboard{UID: h.UID, Title: h.Title, FolderUID: h.FolderUID}
	default:
		return nil
	}
}

// Split partitions items into folders and dashboards, keeping input order.
func Split(items []Item) ([]Folder, []Dashboard) {
	var folders []Folder
	var dashboards []Dashboard
	for _, it := range items {
		switch v := it.(type) {
		case Folder:
			folders = append(folders, v)
		case Dashboard:
			dashboards = append(dashboards, v)
		}
	}
	return folders, dashboards
}

// dashboardEnvelope is the body of /api/dashboards/uid/{uid}. Meta is ignored.
type dashboardEnvelope struct {
	Dashboard json.RawMessage `json:"dashboard"`
}
