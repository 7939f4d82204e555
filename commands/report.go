package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/uhppoted/sheets2json/pipeline"
	"github.com/uhppoted/sheets2json/publish"
)

type palette struct {
	created   *color.Color
	updated   *color.Color
	unchanged *color.Color
	failed    *color.Color
	added     *color.Color
	removed   *color.Color
}

func newPalette(colour bool) palette {
	p := palette{
		created:   color.New(color.FgGreen, color.Bold),
		updated:   color.New(color.FgYellow, color.Bold),
		unchanged: color.New(color.Faint),
		failed:    color.New(color.FgRed, color.Bold),
		added:     color.New(color.FgGreen),
		removed:   color.New(color.FgRed),
	}

	for _, c := range []*color.Color{p.created, p.updated, p.unchanged, p.failed, p.added, p.removed} {
		if colour {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// isTerminal returns true if output to w should be coloured.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

func (p palette) outcome(r publish.Result) string {
	s := r.Outcome.String()
	if r.Outcome == publish.Failed && r.Err != nil {
		s = fmt.Sprintf("FAILED(%v)", r.Err)
	}

	switch r.Outcome {
	case publish.Created:
		return p.created.Sprint(s)
	case publish.Updated:
		return p.updated.Sprint(s)
	case publish.Unchanged:
		return p.unchanged.Sprint(s)
	default:
		return p.failed.Sprint(s)
	}
}

// printReport writes one line per branch, e.g.
//
//	gh-pages      UPDATED    3f2a7c1e09b4
func printReport(w io.Writer, report *pipeline.Report, p palette) {
	if report == nil {
		return
	}

	fmt.Fprintf(w, "  records:%v  skipped:%v  bytes:%v\n", report.Records, report.Skipped, report.Document.Len())

	if report.Persisted != "" {
		fmt.Fprintf(w, "  saved:%v\n", report.Persisted)
	}

	if len(report.Results) > 0 {
		fmt.Fprintln(w)
	}

	for _, r := range report.Results {
		ref := r.Ref
		if len(ref) > 12 {
			ref = ref[:12]
		}

		suffix := ""
		if r.DryRun {
			suffix = " (dry run)"
		}

		line := fmt.Sprintf("  %-12v  %v  %v%v", r.Branch, p.outcome(r), ref, suffix)

		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	fmt.Fprintln(w)
}
