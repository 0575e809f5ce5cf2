package vault

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Masked replaces secret values in reports unless values are requested.
const Masked = "********"

// WriteReport writes the dry-run CSV for plan.
func WriteReport(w io.Writer, plan []Migration, showValues bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Secret Name", "SSM Param name", "Value"}); err != nil {
		return err
	}
	for _, m := range plan {
		value := Masked
		if showValues {
			value = m.Secret.Value
		}
		if err := cw.Write([]string{m.Secret.Name, m.ParamName, value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportFile writes the dry-run CSV to path, readable by the owner only.
func WriteReportFile(path string, plan []Migration, showValues bool) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := WriteReport(f, plan, showValues); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}
