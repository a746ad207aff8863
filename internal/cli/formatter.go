package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/idelchi/nmclean/internal/match"
	"github.com/idelchi/nmclean/internal/nmclean"
	"github.com/idelchi/nmclean/internal/prune"
	"github.com/idelchi/nmclean/internal/report"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// UnknownSize is displayed in place of a size that could not be resolved.
	UnknownSize = "?"
)

// styles holds the colors used for summary lines. Rendering adapts to the
// destination writer, so non-terminals receive plain text.
type styles struct {
	warn, ok, fail lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		warn: r.NewStyle().Foreground(lipgloss.Color("214")),
		ok:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		fail: r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Deletion is the JSON form of a deletion summary.
type Deletion struct {
	DryRun   bool      `json:"dry_run"`
	Deleted  int       `json:"deleted"`
	Missing  int       `json:"missing"`
	Freed    uint64    `json:"freed"`
	Failures []Failure `json:"failures"`
}

// Failure is the JSON form of a failed deletion.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewDeletion converts a deletion summary for JSON output.
func NewDeletion(s prune.Summary, dryRun bool) *Deletion {
	out := &Deletion{
		DryRun:   dryRun,
		Deleted:  s.Deleted,
		Missing:  s.Missing,
		Freed:    s.Freed,
		Failures: make([]Failure, 0, len(s.Failures)),
	}

	for _, f := range s.Failures {
		out.Failures = append(out.Failures, Failure{Path: f.Path, Error: f.Err.Error()})
	}

	return out
}

// PrintJSON outputs the report, and the deletion outcome if any, in JSON format.
func PrintJSON(rep *nmclean.Report, deletion *Deletion, writer io.Writer) error {
	out := struct {
		*nmclean.Report

		Deletion *Deletion `json:"deletion,omitempty"`
	}{Report: rep, Deletion: deletion}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// displayPath shows path relative to cwd when it lies inside it, absolute otherwise.
func displayPath(cwd, path string) string {
	if cwd == "" {
		return path
	}

	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return filepath.ToSlash(rel)
}

// formatRecordSize renders a record's size, or UnknownSize.
func formatRecordSize(r match.Record) string {
	n, ok := r.Size()
	if !ok {
		return UnknownSize
	}

	return report.FormatSize(n)
}

// PrintTable outputs the report in human-readable table format.
func PrintTable(rep *nmclean.Report, writer io.Writer) error {
	st := newStyles(writer)
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
	now := time.Now()

	cwd, _ := os.Getwd()

	if len(rep.Matches) == 0 {
		fmt.Fprintf(w, "\nNo %s directories found.\n", rep.Target)
	} else {
		fmt.Fprintf(w, "\n%s directories:\t\t\n", rep.Target)

		for i, r := range rep.Matches {
			fmt.Fprintf(w, "  %d) '%s'\t%s\t%s\n",
				i+1, displayPath(cwd, r.Path), report.FormatAge(r.ModifiedAt, now), formatRecordSize(r))
		}
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Matched:\t%d of %d found\n", len(rep.Matches), rep.Found)

	total := report.FormatSize(rep.TotalBytes)
	if rep.Unknown > 0 {
		total += fmt.Sprintf(" (+%d of unknown size)", rep.Unknown)
	}

	fmt.Fprintf(w, "Total size:\t%s\n", total)
	fmt.Fprintf(w, "Scanned:\t%s directories\n", humanize.Comma(rep.Visited))

	if rep.Errors > 0 {
		fmt.Fprintf(w, "Unreadable:\t%d\n", rep.Errors)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", rep.Elapsed.Round(time.Millisecond))

	if err := w.Flush(); err != nil {
		return err
	}

	if rep.Partial {
		fmt.Fprintln(writer, st.warn.Render("Scan was interrupted; results are partial."))
	}

	return nil
}

// PrintSummary outputs the outcome of a deletion.
func PrintSummary(s prune.Summary, dryRun bool, writer io.Writer) error {
	st := newStyles(writer)

	verb := "Deleted"
	if dryRun {
		verb = "Would delete"
	}

	line := fmt.Sprintf("%s %d directories, freeing %s", verb, s.Deleted, report.FormatSize(s.Freed))
	if _, err := fmt.Fprintln(writer, "\n"+st.ok.Render(line)); err != nil {
		return err
	}

	if s.Missing > 0 {
		fmt.Fprintln(writer, st.warn.Render(fmt.Sprintf("%d already gone", s.Missing)))
	}

	for _, f := range s.Failures {
		fmt.Fprintln(writer, st.fail.Render(fmt.Sprintf("Failed to delete '%s': %v", f.Path, f.Err)))
	}

	return nil
}
