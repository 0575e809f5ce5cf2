package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		title    string
		fallback string
		want     string
	}{
		{"CPU Usage", "uid1", "CPUUsage.json"},
		{"a/b:c d", "uid1", "abcd.json"},
		{"Home", "", "Home.json"},
		{"  ", "uid1", "uid1.json"},
		{"/:", "u/id", "uid.json"},
		{"..", "uid1", "uid1.json"},
	}
	for _, tt := range tests {
		if got := FileName(tt.title, tt.fallback); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.title, tt.fallback, got, tt.want)
		}
	}
}

func TestCollisionName(t *testing.T) {
	if got := CollisionName("CPU Usage", "abc"); got != "CPUUsage-abc.json" {
		t.Errorf("CollisionName() = %q", got)
	}
}

func TestSegment(t *testing.T) {
	tests := map[string]string{
		"Ops":        "Ops",
		"Team/Ops":   "Team-Ops",
		" padded ":   " padded ",
		"Ops ":       "Ops ",
		"":           "_",
		".":          "_",
		"..":         "__",
		"With Space": "With Space",
	}
	for in, want := range tests {
		if got := Segment(in); got != want {
			t.Errorf("Segment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDirPath(t *testing.T) {
	got := DirPath("/backup", []string{"Ops", "a/b", ".."})
	want := filepath.Join("/backup", "Ops", "a-b", "__")
	if got != want {
		t.Errorf("DirPath() = %q, want %q", got, want)
	}
	if got := DirPath("/backup", nil); got != "/backup" {
		t.Errorf("DirPath(root) = %q", got)
	}
}

func TestFileStore_Write(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	st := NewFileStore(root + "/")

	if st.Root() != root {
		t.Fatalf("Root() = %q, want %q", st.Root(), root)
	}
	if err := st.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}

	path, err := st.Write([]string{"Ops", "Nested"}, "x.json", []byte("{}\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if want := filepath.Join(root, "Ops", "Nested", "x.json"); path != want {
		t.Errorf("Write() path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("content = %q", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	// overwrite in place
	if _, err := st.Write([]string{"Ops", "Nested"}, "x.json", []byte("[]\n")); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "[]\n" {
		t.Errorf("content after overwrite = %q", data)
	}
}
