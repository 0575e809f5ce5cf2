package paramstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// PreviewLen is how many characters of a value the rename report shows.
const PreviewLen = 50

// Preview truncates v to PreviewLen characters, marking the cut with "...".
func Preview(v string) string {
	r := []rune(v)
	if len(r) <= PreviewLen {
		return v
	}
	return string(r[:PreviewLen]) + "..."
}

// WriteRenameReport writes the dry-run CSV for plan.
func WriteRenameReport(w io.Writer, plan []Rename) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Old Name", "New Name", "Type", "Value Preview"}); err != nil {
		return err
	}
	for _, r := range plan {
		if err := cw.Write([]string{r.Old.Name, r.NewName, r.Old.Type, Preview(r.Old.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRenameReportFile writes the dry-run CSV to path.
func WriteRenameReportFile(path string, plan []Rename) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := WriteRenameReport(f, plan); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}
