package commands

import (
	"github.com/spf13/cobra"

	"github.com/uhppoted/sheets2json/config"
)

type command interface {
	Name() string
	Description() string
	Command(*Options) *cobra.Command
}

var cli = []command{
	&PublishCmd,
	&GetCmd,
	&CompareCmd,
	&AuthoriseCmd,
	&VersionCmd,
}

// NewRootCommand returns the sheets2json command with all the subcommands.
func NewRootCommand() *cobra.Command {
	options := Options{}

	root := &cobra.Command{
		Use:   APP,
		Short: "Publishes Google Sheets worksheets as JSON files",
		Long: `sheets2json converts the rows of a Google Sheets worksheet to a JSON array of objects and
publishes the JSON file to a GitHub repository, Google Cloud Storage bucket or local directory,
writing only when the content has changed.

Settings are taken from the environment (and an optional .env file) and may be overridden by the
command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&options.Debug, "debug", false, "Enables debug logging")
	root.PersistentFlags().StringVar(&options.Env, "env", "", "Environment file (defaults to .env, if present) e.g. "+config.DEFAULT_ENV)
	root.PersistentFlags().String("log-format", "", "Log format (text or json)")

	for _, cmd := range cli {
		root.AddCommand(cmd.Command(&options))
	}

	return root
}
