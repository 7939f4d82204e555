package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/uhppoted/sheets2json/pipeline"
	"github.com/uhppoted/sheets2json/publish"
	"github.com/uhppoted/sheets2json/store"
)

var CompareCmd = Compare{}

type Compare struct {
}

func (cmd *Compare) Name() string {
	return "compare"
}

func (cmd *Compare) Description() string {
	return "Compares the JSON for a Google Sheets worksheet with the published JSON files"
}

func (cmd *Compare) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:   cmd.Name(),
		Short: cmd.Description(),
		Long: `Builds the JSON file for the worksheet and prints the line differences from the JSON file on
each repository branch. Nothing is written to the repository or to the local file system.`,
		Example: `  sheets2json compare --repository uhppoted/site --branch gh-pages --branch main`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), c, options)
		},
	}

	sourceFlags(c.Flags())
	publishFlags(c.Flags())

	return c
}

func (cmd *Compare) Execute(ctx context.Context, c *cobra.Command, options *Options) error {
	cfg, err := load(c, options)
	if err != nil {
		return err
	}

	cfg.Document.LocalJSON = false
	cfg.Publish.DryRun = true

	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := pipelineConfig(cfg)
	if err != nil {
		return err
	}

	source, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}

	repository, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("unable to connect to %v repository (%w)", cfg.Publish.Target, err)
	}

	report, err := pipeline.New(source, repository).Run(ctx, p)
	if report == nil || report.Results == nil {
		return err
	}

	palette := newPalette(isTerminal(os.Stdout))

	for _, r := range report.Results {
		if err := compare(ctx, os.Stdout, repository, report, r, palette); err != nil {
			return err
		}
	}

	return err
}

func compare(ctx context.Context, w io.Writer, repository store.Store, report *pipeline.Report, r publish.Result, p palette) error {
	fmt.Fprintf(w, "%v  %v:%v  %v\n", repository, r.Branch, r.Path, p.outcome(r))

	switch r.Outcome {
	case publish.Created:
		diff(w, "", report.Document.String(), p)

	case publish.Updated:
		current, err := repository.Read(ctx, r.Branch, r.Path)
		if errors.Is(err, store.ErrNotFound) {
			diff(w, "", report.Document.String(), p)
		} else if err != nil {
			return err
		} else {
			diff(w, string(current.Content), report.Document.String(), p)
		}
	}

	fmt.Fprintln(w)

	return nil
}

// diff prints the line differences between two texts, in unified style without context.
func diff(w io.Writer, from, to string, p palette) {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")

		for _, line := range strings.Split(text, "\n") {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				p.added.Fprintf(w, "+ %v\n", line)

			case diffmatchpatch.DiffDelete:
				p.removed.Fprintf(w, "- %v\n", line)
			}
		}
	}
}
