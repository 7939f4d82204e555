package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/sheets2json/config"
	"github.com/uhppoted/sheets2json/document"
	"github.com/uhppoted/sheets2json/log"
	"github.com/uhppoted/sheets2json/pipeline"
	"github.com/uhppoted/sheets2json/record"
	"github.com/uhppoted/sheets2json/sheet"
	"github.com/uhppoted/sheets2json/store"
	"github.com/uhppoted/sheets2json/store/gcs"
	"github.com/uhppoted/sheets2json/store/github"
	"github.com/uhppoted/sheets2json/store/localfs"
)

const APP = "sheets2json"

// Options are the global command line options, shared by all commands.
type Options struct {
	Debug bool
	Env   string
}

func sourceFlags(flags *pflag.FlagSet) {
	flags.String("spreadsheet", "", "Spreadsheet URL or ID (defaults to GOOGLE_SPREADSHEET_KEY)")
	flags.String("worksheet", "", "Worksheet name (defaults to the first worksheet)")
	flags.Bool("all", false, "Merges the rows of all worksheets")
	flags.StringSlice("exclude", nil, "Worksheets to exclude when merging all worksheets")
	flags.String("rules", "", "YAML file with the field rules applied to each row")
	flags.String("credentials", "", "Google service account key or OAuth client credentials file")
	flags.String("tokens", "", "Directory for cached OAuth tokens")
	flags.String("workdir", config.DEFAULT_WORKDIR, "Directory for working files (tokens, JSON file, etc)")
	flags.Int("indent", 4, "Number of spaces to indent each JSON nesting level")
	flags.Bool("sort-keys", false, "Sorts JSON object keys alphabetically")
}

func publishFlags(flags *pflag.FlagSet) {
	flags.String("target", config.TargetGitHub, "Repository type (github, gcs or local)")
	flags.String("path", "data.json", "Path of the JSON file in the repository")
	flags.StringSlice("branch", nil, "Branch(es) to publish to (defaults to gh-pages)")
	flags.String("repository", "", "GitHub repository as <owner>/<name>")
	flags.String("bucket", "", "Google Cloud Storage bucket")
	flags.String("local-root", "", "Directory for the 'local' repository")
}

func load(cmd *cobra.Command, options *Options) (*config.Config, error) {
	cfg, err := config.Load(options.Env, cmd.Flags())
	if err != nil {
		return nil, err
	}

	if err := log.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	if options.Debug {
		log.SetDebug(true)
	}

	return cfg, nil
}

func newSource(ctx context.Context, cfg *config.Config) (*sheet.Source, error) {
	client, err := authorize(ctx, cfg.Google)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication/authorization error (%v)", sheet.ErrSourceAuth, err)
	}

	google, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%v)", err)
	}

	return sheet.NewSource(sheet.NewGoogleClient(google)), nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Publish.Target {
	case config.TargetGitHub:
		owner, name, err := cfg.Repository()
		if err != nil {
			return nil, err
		}

		committer := github.WithCommitter(cfg.GitHub.Committer.Name, cfg.GitHub.Committer.Email)

		return github.New(ctx, cfg.GitHub.Token, owner, name, committer), nil

	case config.TargetGCS:
		opts := []option.ClientOption{}
		if cfg.GCS.Credentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCS.Credentials))
		}

		return gcs.New(ctx, cfg.GCS.Bucket, opts...)

	case config.TargetLocal:
		return localfs.New(afero.NewBasePathFs(afero.NewOsFs(), cfg.Local.Root)), nil

	default:
		return nil, fmt.Errorf("invalid target '%v'", cfg.Publish.Target)
	}
}

// pipelineConfig translates the command configuration into the parameters for a single run.
func pipelineConfig(cfg *config.Config) (pipeline.Config, error) {
	spreadsheet, err := cfg.SpreadsheetID()
	if err != nil {
		return pipeline.Config{}, err
	}

	filters := []record.Filter{}
	if cfg.Rules != "" {
		rules, err := record.LoadRules(cfg.Rules)
		if err != nil {
			return pipeline.Config{}, fmt.Errorf("error loading rules from %v (%v)", cfg.Rules, err)
		}

		filter, err := rules.Filter()
		if err != nil {
			return pipeline.Config{}, fmt.Errorf("invalid rules in %v (%v)", cfg.Rules, err)
		}

		filters = append(filters, filter)
	}

	options := []document.Option{
		document.Indent(strings.Repeat(" ", cfg.Document.Indent)),
	}

	if cfg.Document.SortKeys {
		options = append(options, document.SortKeys())
	}

	p := pipeline.Config{
		Source: sheet.Spec{
			Spreadsheet: spreadsheet,
			Worksheet:   cfg.Worksheet,
			All:         cfg.All,
			Exclude:     cfg.Exclude,
		},
		Filters:  filters,
		Document: options,
		Persist: pipeline.PersistConfig{
			Enabled: cfg.Document.LocalJSON,
			File:    cfg.Document.File,
		},
		Publish: pipeline.PublishConfig{
			Enabled:  cfg.Publish.Commit || cfg.Publish.DryRun,
			DryRun:   cfg.Publish.DryRun || !cfg.Publish.Commit,
			Path:     strings.Trim(cfg.Publish.Path, "/"),
			Branches: cfg.Publish.Branches,
		},
	}

	p.Publish.Messages.Create = cfg.Publish.Messages.Create
	p.Publish.Messages.Update = cfg.Publish.Messages.Update

	return p, nil
}
