package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uhppoted/sheets2json/log"
	"github.com/uhppoted/sheets2json/pipeline"
)

var GetCmd = Get{}

type Get struct {
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves a Google Sheets worksheet and stores it as JSON to a local file"
}

func (cmd *Get) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:   cmd.Name(),
		Short: cmd.Description(),
		Example: `  sheets2json get --spreadsheet "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \
                  --worksheet Doors --file doors.json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), c, options)
		},
	}

	sourceFlags(c.Flags())

	c.Flags().String("file", "", "JSON file (defaults to <workdir>/data.json)")

	return c
}

func (cmd *Get) Execute(ctx context.Context, c *cobra.Command, options *Options) error {
	cfg, err := load(c, options)
	if err != nil {
		return err
	}

	cfg.Document.LocalJSON = true
	cfg.Publish.Commit = false
	cfg.Publish.DryRun = false

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

	report, err := pipeline.New(source, nil).Run(ctx, p)
	if err != nil {
		return err
	}

	log.Infof("retrieved %v records to %v", report.Records, report.Persisted)
	fmt.Printf("%v\n", report.Persisted)

	return nil
}
