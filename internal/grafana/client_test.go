package grafana

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SearchPaginates(t *testing.T) {
	fake := &fakeGrafana{
		token: "secret",
		hits: []map[string]any{
			folderHit("f1", "Ops", ""),
			dashHit("d1", "CPU", "f1"),
			{"uid": "x", "title": "Snap", "type": "snapshot"},
			folderHit("f2", "Nested", "f1"),
			dashHit("d2", "Home", ""),
		},
	}
	srv := fake.start(t)

	c := NewClient(srv.URL+"/", "secret", WithPageSize(2))
	assert.Equal(t, srv.URL, c.Host())

	items, err := c.Search(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, fake.searches)
	assert.Equal(t, []Item{
		Folder{UID: "f1", Title: "Ops"},
		Dashboard{UID: "d1", Title: "CPU", FolderUID: "f1"},
		Folder{UID: "f2", Title: "Nested", ParentUID: "f1"},
		Dashboard{UID: "d2", Title: "Home"},
	}, items)
}

func TestClient_SearchUnauthorized(t *testing.T) {
	fake := &fakeGrafana{token: "secret"}
	srv := fake.start(t)

	_, err := NewClient(srv.URL, "wrong").Search(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 401, se.Code)
	assert.Contains(t, se.Error(), "invalid API key")
}

func TestClient_Dashboard(t *testing.T) {
	fake := &fakeGrafana{
		token: "k",
		dashboards: map[string]string{
			"good":  dashBody("good", "Good"),
			"empty": `{"meta":{}}`,
		},
	}
	srv := fake.start(t)
	c := NewClient(srv.URL, "k")

	raw, err := c.Dashboard(context.Background(), "good")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"title":"Good"`)

	_, err = c.Dashboard(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrNoDashboard)

	_, err = c.Dashboard(context.Background(), "missing")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Code)
}
