package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uhppoted/sheets2json/log"
)

var AuthoriseCmd = Authorise{}

type Authorise struct {
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises sheets2json to read Google Sheets worksheets using an OAuth client"
}

func (cmd *Authorise) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:     cmd.Name(),
		Aliases: []string{"authorize"},
		Short:   cmd.Description(),
		Long: `Obtains an OAuth access token for the OAuth client in the credentials file and caches it in
the tokens directory for use by the other commands. Not required for service accounts.`,
		Example: `  sheets2json authorise --credentials credentials.json`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), c, options)
		},
	}

	c.Flags().String("credentials", "", "OAuth client credentials file")
	c.Flags().String("tokens", "", "Directory for cached OAuth tokens")
	c.Flags().String("workdir", "", "Directory for working files (tokens, JSON file, etc)")

	return c
}

func (cmd *Authorise) Execute(ctx context.Context, c *cobra.Command, options *Options) error {
	cfg, err := load(c, options)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Google.Credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	tokens, err := authenticate(ctx, cfg.Google.Credentials, cfg.Google.Tokens, os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	log.Infof("saved OAuth tokens to %v", tokens)

	return nil
}
