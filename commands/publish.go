package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uhppoted/sheets2json/log"
	"github.com/uhppoted/sheets2json/pipeline"
	"github.com/uhppoted/sheets2json/store"
)

var PublishCmd = Publish{}

type Publish struct {
}

func (cmd *Publish) Name() string {
	return "publish"
}

func (cmd *Publish) Description() string {
	return "Converts a Google Sheets worksheet to JSON and publishes it to a repository if it has changed"
}

func (cmd *Publish) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:   cmd.Name(),
		Short: cmd.Description(),
		Long: `Retrieves the rows of a Google Sheets worksheet (or all worksheets), applies the optional
field rules and converts the rows to a JSON array of objects keyed by the column headers.

The JSON file is saved locally (unless --local-json=false) and, with --commit, written to each of
the repository branches on which the content differs. Unchanged branches are not written.`,
		Example: `  sheets2json publish --spreadsheet "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \
                      --repository uhppoted/site --branch gh-pages --commit

  sheets2json --env .env publish --all --exclude Archive --rules rules.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), c, options)
		},
	}

	flags := c.Flags()

	sourceFlags(flags)
	publishFlags(flags)

	flags.Bool("commit", false, "Publishes the JSON file to the repository branches")
	flags.Bool("dry-run", false, "Reports the changes that would be published without writing anything")
	flags.Bool("local-json", true, "Saves a local copy of the JSON file")
	flags.String("file", "", "Local JSON file (defaults to <workdir>/data.json)")

	return c
}

func (cmd *Publish) Execute(ctx context.Context, c *cobra.Command, options *Options) error {
	cfg, err := load(c, options)
	if err != nil {
		return err
	}

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

	var repository store.Store
	if p.Publish.Enabled {
		if repository, err = newStore(ctx, cfg); err != nil {
			return fmt.Errorf("unable to connect to %v repository (%w)", cfg.Publish.Target, err)
		}
	} else {
		log.Infof("--commit not set, skipping publish")
	}

	report, err := pipeline.New(source, repository).Run(ctx, p)

	printReport(os.Stdout, report, newPalette(isTerminal(os.Stdout)))

	return err
}
