// Package config assembles the run configuration from the environment, an optional .env file and
// command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
)

const (
	TargetGitHub = "github"
	TargetGCS    = "gcs"
	TargetLocal  = "local"
)

type Config struct {
	Spreadsheet string   `env:"GOOGLE_SPREADSHEET_KEY"`
	Worksheet   string   `env:"SHEETS2JSON_WORKSHEET"`
	All         bool     `env:"SHEETS2JSON_ALL_WORKSHEETS"`
	Exclude     []string `env:"SHEETS2JSON_EXCLUDE" envSeparator:","`
	Rules       string   `env:"SHEETS2JSON_RULES"`
	Workdir     string   `env:"SHEETS2JSON_WORKDIR"`

	Google   Google
	Document Document
	Publish  Publish
	GitHub   GitHub
	GCS      GCS
	Local    Local
	Log      Log
}

// Google holds the spreadsheet credentials: either a service account (email and private key, or a
// service account JSON file) or an OAuth client credentials file with cached tokens.
type Google struct {
	ClientEmail string `env:"GOOGLE_API_CLIENT_EMAIL"`
	PrivateKey  string `env:"GOOGLE_API_PRIVATE_KEY"`
	Credentials string `env:"SHEETS2JSON_GOOGLE_CREDENTIALS"`
	Tokens      string `env:"SHEETS2JSON_GOOGLE_TOKENS"`
}

type Document struct {
	Indent    int    `env:"SHEETS2JSON_INDENT" envDefault:"4"`
	SortKeys  bool   `env:"SHEETS2JSON_SORT_KEYS"`
	LocalJSON bool   `env:"SHEETS2JSON_LOCAL_JSON" envDefault:"true"`
	File      string `env:"SHEETS2JSON_FILE"`
}

type Publish struct {
	Commit   bool     `env:"SHEETS2JSON_COMMIT" envDefault:"false"`
	DryRun   bool     `env:"SHEETS2JSON_DRY_RUN"`
	Target   string   `env:"SHEETS2JSON_TARGET" envDefault:"github"`
	Path     string   `env:"SHEETS2JSON_PATH" envDefault:"data.json"`
	Branches []string `env:"SHEETS2JSON_BRANCHES" envSeparator:"," envDefault:"gh-pages"`
	Messages struct {
		Create string `env:"SHEETS2JSON_CREATE_MESSAGE" envDefault:"Add %s"`
		Update string `env:"SHEETS2JSON_UPDATE_MESSAGE" envDefault:"Update %s"`
	}
}

type GitHub struct {
	Token      string `env:"GITHUB_TOKEN"`
	Repository string `env:"SHEETS2JSON_GITHUB_REPOSITORY"`
	Committer  struct {
		Name  string `env:"SHEETS2JSON_COMMITTER_NAME"`
		Email string `env:"SHEETS2JSON_COMMITTER_EMAIL"`
	}
}

type GCS struct {
	Bucket      string `env:"SHEETS2JSON_GCS_BUCKET"`
	Credentials string `env:"SHEETS2JSON_GCS_CREDENTIALS"`
}

type Local struct {
	Root string `env:"SHEETS2JSON_LOCAL_ROOT"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// Load returns the configuration from the environment, overridden by any flags set explicitly on
// the command line. Variables in the .env file, if any, are added to the environment first but never
// replace a variable that is already set. An explicitly named file must exist.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	if file != "" {
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("error loading %v (%w)", file, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env (%w)", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if flags != nil {
		if err := cfg.Override(flags); err != nil {
			return nil, err
		}
	}

	cfg.defaults()

	return &cfg, nil
}

func (c *Config) defaults() {
	if c.Workdir == "" {
		c.Workdir = DEFAULT_WORKDIR
	}

	if c.Document.File == "" {
		c.Document.File = filepath.Join(c.Workdir, "data.json")
	}

	if c.Google.Tokens == "" {
		c.Google.Tokens = filepath.Join(c.Workdir, ".google")
	}

	if c.Local.Root == "" {
		c.Local.Root = filepath.Join(c.Workdir, "repository")
	}

	// keys held in environment variables usually have escaped newlines
	c.Google.PrivateKey = strings.ReplaceAll(c.Google.PrivateKey, `\n`, "\n")
}

// SpreadsheetID returns the spreadsheet ID, extracted from the spreadsheet URL if necessary.
func (c *Config) SpreadsheetID() (string, error) {
	s := strings.TrimSpace(c.Spreadsheet)

	if strings.HasPrefix(s, "https://") {
		match := spreadsheetURL.FindStringSubmatch(s)
		if len(match) < 2 || match[1] == "" {
			return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
		}

		return match[1], nil
	}

	return s, nil
}

// Repository returns the owner and name of the GitHub repository.
func (c *Config) Repository() (string, string, error) {
	tokens := strings.Split(strings.Trim(c.GitHub.Repository, "/"), "/")
	if len(tokens) != 2 || tokens[0] == "" || tokens[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository '%v' - expected <owner>/<name>", c.GitHub.Repository)
	}

	return tokens[0], tokens[1], nil
}

// Validate checks that the configuration is complete enough to run. Publishing settings are only
// checked if publishing is enabled.
func (c *Config) Validate() error {
	var err error

	if _, e := c.SpreadsheetID(); e != nil {
		err = multierr.Append(err, e)
	} else if strings.TrimSpace(c.Spreadsheet) == "" {
		err = multierr.Append(err, fmt.Errorf("missing spreadsheet (GOOGLE_SPREADSHEET_KEY or --spreadsheet)"))
	}

	if c.All && c.Worksheet != "" {
		err = multierr.Append(err, fmt.Errorf("--worksheet and --all are mutually exclusive"))
	}

	if c.Google.Credentials == "" && (c.Google.ClientEmail == "" || c.Google.PrivateKey == "") {
		err = multierr.Append(err, fmt.Errorf("missing Google credentials (GOOGLE_API_CLIENT_EMAIL and GOOGLE_API_PRIVATE_KEY, or --credentials)"))
	}

	if c.Document.Indent < 0 || c.Document.Indent > 8 {
		err = multierr.Append(err, fmt.Errorf("invalid indent %v (expected 0-8)", c.Document.Indent))
	}

	if c.Document.LocalJSON && strings.TrimSpace(c.Document.File) == "" {
		err = multierr.Append(err, fmt.Errorf("missing JSON file"))
	}

	if c.Publish.Commit || c.Publish.DryRun {
		err = multierr.Append(err, c.validatePublish())
	}

	return err
}

func (c *Config) validatePublish() error {
	var err error

	if strings.Trim(c.Publish.Path, "/ ") == "" {
		err = multierr.Append(err, fmt.Errorf("missing repository path"))
	}

	if len(c.Publish.Branches) == 0 {
		err = multierr.Append(err, fmt.Errorf("missing branches"))
	}

	for _, b := range c.Publish.Branches {
		if strings.TrimSpace(b) == "" {
			err = multierr.Append(err, fmt.Errorf("invalid branch '%v'", b))
		}
	}

	switch c.Publish.Target {
	case TargetGitHub:
		if c.GitHub.Token == "" {
			err = multierr.Append(err, fmt.Errorf("missing GitHub token (GITHUB_TOKEN)"))
		}

		if _, _, e := c.Repository(); e != nil {
			err = multierr.Append(err, e)
		}

	case TargetGCS:
		if c.GCS.Bucket == "" {
			err = multierr.Append(err, fmt.Errorf("missing GCS bucket (SHEETS2JSON_GCS_BUCKET or --bucket)"))
		}

	case TargetLocal:
		if c.Local.Root == "" {
			err = multierr.Append(err, fmt.Errorf("missing local repository directory"))
		}

	default:
		err = multierr.Append(err, fmt.Errorf("invalid target '%v' (expected github, gcs or local)", c.Publish.Target))
	}

	return err
}

// Override replaces the configured values with those of the flags that were set explicitly on the
// command line. Flags not defined on the flag set are ignored.
func (c *Config) Override(flags *pflag.FlagSet) error {
	var err error

	flags.Visit(func(f *pflag.Flag) {
		v := f.Value.String()

		switch f.Name {
		case "spreadsheet":
			c.Spreadsheet = v
		case "worksheet":
			c.Worksheet = v
		case "all":
			c.All, err = toBool(f, err)
		case "exclude":
			if list, e := flags.GetStringSlice(f.Name); e != nil {
				err = multierr.Append(err, fmt.Errorf("invalid --%v (%w)", f.Name, e))
			} else {
				c.Exclude = list
			}
		case "rules":
			c.Rules = v
		case "workdir":
			c.Workdir = v
		case "credentials":
			c.Google.Credentials = v
		case "tokens":
			c.Google.Tokens = v
		case "indent":
			if n, e := cast.ToIntE(v); e != nil {
				err = multierr.Append(err, fmt.Errorf("invalid --indent '%v'", v))
			} else {
				c.Document.Indent = n
			}
		case "sort-keys":
			c.Document.SortKeys, err = toBool(f, err)
		case "local-json":
			c.Document.LocalJSON, err = toBool(f, err)
		case "file":
			c.Document.File = v
		case "commit":
			c.Publish.Commit, err = toBool(f, err)
		case "dry-run":
			c.Publish.DryRun, err = toBool(f, err)
		case "target":
			c.Publish.Target = strings.ToLower(v)
		case "path":
			c.Publish.Path = v
		case "branch":
			if list, e := flags.GetStringSlice(f.Name); e != nil {
				err = multierr.Append(err, fmt.Errorf("invalid --%v (%w)", f.Name, e))
			} else {
				c.Publish.Branches = list
			}
		case "repository":
			c.GitHub.Repository = v
		case "bucket":
			c.GCS.Bucket = v
		case "local-root":
			c.Local.Root = v
		case "log-format":
			c.Log.Format = v
		}
	})

	return err
}

func toBool(f *pflag.Flag, err error) (bool, error) {
	b, e := cast.ToBoolE(f.Value.String())
	if e != nil {
		return false, multierr.Append(err, fmt.Errorf("invalid --%v '%v'", f.Name, f.Value))
	}

	return b, err
}
