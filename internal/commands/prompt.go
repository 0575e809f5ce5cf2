package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// confirm asks question on out and reads one answer line from r.
// Only "y" and "yes" (any case) count as agreement; EOF is a no.
func confirm(r *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "\n%s (yes/no): ", question)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// renderTable prints rows under header as a table.
func renderTable(out io.Writer, header []string, rows [][]string) {
	data := pterm.TableData{header}
	data = append(data, rows...)

	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		// plain fallback
		fmt.Fprintln(out, strings.Join(header, "\t"))
		for _, r := range rows {
			fmt.Fprintln(out, strings.Join(r, "\t"))
		}
		return
	}
	fmt.Fprintln(out, s)
}
