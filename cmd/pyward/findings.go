package main

import (
	"strconv"
	"strings"

	"github.com/HendryAvila/pyward/internal/extract"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// finding is a naming inconsistency found while tracking a file.
type finding struct {
	File       string       `json:"file"`
	Line       int          `json:"line"`
	Identifier string       `json:"identifier"`
	Type       tracker.Kind `json:"type"`
	Issue      string       `json:"issue"`
	Existing   []string     `json:"existing"`
	Suggestion string       `json:"suggestion"`
}

// trackFile checks each identifier against tr and then tracks it, so a
// file's own definitions are compared with everything seen before it.
func trackFile(tr *tracker.Tracker, file string, ids []extract.Identifier) []finding {
	var out []finding
	for _, id := range ids {
		if c := tr.CheckConsistency(id.Name); c != nil {
			out = append(out, finding{
				File:       file,
				Line:       id.Line,
				Identifier: id.Name,
				Type:       id.Kind,
				Issue:      c.Message,
				Existing:   c.Existing,
				Suggestion: c.Suggestion,
			})
		}
		tr.Track(id.Name, id.Kind, tracker.WithFile(file), tracker.WithSignature(id.Signature))
	}
	return out
}

func renderFindings(findings []finding) string {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{
			f.File,
			strconv.Itoa(f.Line),
			f.Identifier,
			strings.Join(f.Existing, ", "),
			f.Suggestion,
		})
	}
	return renderTable("Naming inconsistencies",
		[]string{"File", "Line", "Identifier", "Existing", "Suggestion"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}
