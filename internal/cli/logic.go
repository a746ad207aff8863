package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/nmclean/internal/nmclean"
	"github.com/idelchi/nmclean/internal/report"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

// confirm asks question on out and reads a yes/no answer from in.
// Anything other than "y" or "yes" is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

//nolint:funlen // Sequential pipeline
func logic(cmd *cobra.Command, options nmclean.Options) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	jsonOutput := options.Output == "json"

	enableProgress := !jsonOutput && !options.Debug && isTerminal(stderr)

	ctx := cmd.Context()

	// Simple progress callback that prints directly to stderr
	var progressHook func(visited, found int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(visited, found int64) {
			msg := fmt.Sprintf("Scanning… %s directories, %s found",
				humanize.Comma(visited), humanize.Comma(found))
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	rep, err := nmclean.Run(ctx, options, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if !jsonOutput {
		if err := PrintTable(rep, stdout); err != nil {
			return err
		}
	}

	if !options.Delete || len(rep.Matches) == 0 {
		if jsonOutput {
			return PrintJSON(rep, nil, stdout)
		}

		return nil
	}

	if !options.Yes {
		question := fmt.Sprintf("Delete %d directories (%s)?", len(rep.Matches), report.FormatSize(rep.TotalBytes))

		ok, err := confirm(cmd.InOrStdin(), stderr, question)
		if err != nil {
			return err
		}

		if !ok {
			fmt.Fprintln(stderr, "Aborted, nothing deleted.")

			if jsonOutput {
				return PrintJSON(rep, nil, stdout)
			}

			return nil
		}
	}

	var deleteHook func(done, total int, path string)

	if enableProgress {
		deleteHook = func(done, total int, _ string) {
			fmt.Fprintf(stderr, "\r\033[2KDeleting… %d/%d\r", done, total)
		}
	}

	summary := nmclean.Prune(ctx, options, rep.Matches, deleteHook)

	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if jsonOutput {
		return PrintJSON(rep, NewDeletion(summary, options.DryRun), stdout)
	}

	return PrintSummary(summary, options.DryRun, stdout)
}
