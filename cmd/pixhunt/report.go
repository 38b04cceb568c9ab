package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"pixhunt/internal/results"
)

const noMatchesNotice = "No similar images identified. Try adjusting the threshold or adding more reference images."

// writeReport prints the final match report: every reference with at
// least one match, each match with its score, or a single notice when
// nothing matched anywhere. Terminals get a rendered table; pipes and
// files get plain grouped text.
func writeReport(w io.Writer, set *results.Set) {
	if !set.HasMatches() {
		fmt.Fprintln(w, noMatchesNotice)
		return
	}

	fmt.Fprintln(w, "Final report:")
	if writerIsTerminal(w) {
		fmt.Fprintln(w, renderMatchTable(set))
		return
	}
	writePlainReport(w, set)
}

func writePlainReport(w io.Writer, set *results.Set) {
	for _, referenceID := range set.ReferenceIDs() {
		matches := set.Matches(referenceID)
		if len(matches) == 0 {
			continue
		}
		fmt.Fprintf(w, "For reference image %s:\n", referenceID)
		for _, match := range matches {
			fmt.Fprintf(w, "\t%-80s difference: %s\n", match.Path, formatScore(match.Score))
		}
	}
}

func renderMatchTable(set *results.Set) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Reference", "Candidate", "Difference"})

	for _, referenceID := range set.ReferenceIDs() {
		for _, match := range set.Matches(referenceID) {
			tw.AppendRow(table.Row{referenceID, match.Path, formatScore(match.Score)})
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
