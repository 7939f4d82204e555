package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VERSION is set at build time with -ldflags "-X github.com/uhppoted/sheets2json/commands.VERSION=..."
var VERSION = "v0.1.x"

var VersionCmd = Version{}

// Version is a CLI command implementation that displays the CLI version information.
type Version struct {
}

func (cmd *Version) Name() string {
	return "version"
}

func (cmd *Version) Description() string {
	return "Displays the current version"
}

func (cmd *Version) Command(options *Options) *cobra.Command {
	return &cobra.Command{
		Use:   cmd.Name(),
		Short: cmd.Description(),
		Long:  "Displays the sheets2json version in the format v<major>.<minor>.<build> e.g. v0.1.0",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintf(c.OutOrStdout(), "%s\n", VERSION)
		},
	}
}
