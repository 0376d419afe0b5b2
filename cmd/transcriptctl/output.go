package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"transcript-analyzer/internal/transcripts"
)

var (
	colorBold   = color.New(color.Bold)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
	colorFaint  = color.New(color.Faint)
)

// printAnalyses writes results as text or JSON. asList forces a JSON array
// even for a single result so batch output keeps one shape.
func printAnalyses(w io.Writer, asJSON, asList bool, analyses ...transcripts.Analysis) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if asList || len(analyses) != 1 {
			return enc.Encode(analyses)
		}
		return enc.Encode(analyses[0])
	}
	for i, a := range analyses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", colorBold.Sprint("ID:"), a.ID)
		if !a.CreatedAt.IsZero() {
			fmt.Fprintf(w, "%s %s\n", colorBold.Sprint("Created:"), colorFaint.Sprint(a.CreatedAt.Format("2006-01-02 15:04:05 MST")))
		}
		fmt.Fprintf(w, "%s %s\n", colorBold.Sprint("Summary:"), a.Summary)
		fmt.Fprintln(w, colorBold.Sprint("Action items:"))
		if len(a.ActionItems) == 0 {
			fmt.Fprintf(w, "  %s\n", colorYellow.Sprint("(none)"))
			continue
		}
		for _, item := range a.ActionItems {
			fmt.Fprintf(w, "  %s %s\n", colorGreen.Sprint("-"), item)
		}
	}
	return nil
}
