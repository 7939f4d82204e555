package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/uhppoted/sheets2json/config"
	"github.com/uhppoted/sheets2json/document"
	"github.com/uhppoted/sheets2json/log"
	"github.com/uhppoted/sheets2json/pipeline"
	"github.com/uhppoted/sheets2json/publish"
	"github.com/uhppoted/sheets2json/record"
	"github.com/uhppoted/sheets2json/store"
)

func TestPipelineConfig(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(rules, []byte("drop:\n  - rowNumber\n"), 0600); err != nil {
		t.Fatalf("Error creating rules file (%v)", err)
	}

	cfg := config.Config{
		Spreadsheet: "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0",
		Worksheet:   "Doors",
		Rules:       rules,
		Document:    config.Document{Indent: 2, SortKeys: true, LocalJSON: true, File: "/tmp/data.json"},
		Publish: config.Publish{
			Commit:   true,
			Path:     "/data/doors.json",
			Branches: []string{"gh-pages", "main"},
		},
	}

	p, err := pipelineConfig(&cfg)
	if err != nil {
		t.Fatalf("Unexpected error returned from pipelineConfig (%v)", err)
	}

	if p.Source.Spreadsheet != "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" || p.Source.Worksheet != "Doors" {
		t.Errorf("Incorrect source - got:%+v", p.Source)
	}

	if len(p.Filters) != 1 {
		t.Errorf("Expected 1 filter, got:%v", len(p.Filters))
	}

	if !p.Persist.Enabled || p.Persist.File != "/tmp/data.json" {
		t.Errorf("Incorrect persist configuration - got:%+v", p.Persist)
	}

	if !p.Publish.Enabled || p.Publish.DryRun || p.Publish.Path != "data/doors.json" {
		t.Errorf("Incorrect publish configuration - got:%+v", p.Publish)
	}

	if !reflect.DeepEqual(p.Publish.Branches, []string{"gh-pages", "main"}) {
		t.Errorf("Incorrect branches - expected:%v, got:%v", []string{"gh-pages", "main"}, p.Publish.Branches)
	}

	dataset := record.Dataset{
		record.New(record.Field{Name: "rowNumber", Value: "1"}, record.Field{Name: "name", Value: "Gate"}, record.Field{Name: "id", Value: "7"}),
	}

	transformed, err := record.Transform(dataset, p.Filters...)
	if err != nil {
		t.Fatalf("Unexpected error transforming dataset (%v)", err)
	}

	doc, err := document.Build(transformed, p.Document...)
	if err != nil {
		t.Fatalf("Unexpected error building document (%v)", err)
	}

	expected := "[\n  {\n    \"id\": \"7\",\n    \"name\": \"Gate\"\n  }\n]"
	if doc.String() != expected {
		t.Errorf("Incorrect document\n   expected:\n%v\n   got:\n%v", expected, doc)
	}
}

func TestPipelineConfigWithoutCommit(t *testing.T) {
	cfg := config.Config{
		Spreadsheet: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
	}

	p, err := pipelineConfig(&cfg)
	if err != nil {
		t.Fatalf("Unexpected error returned from pipelineConfig (%v)", err)
	}

	if p.Publish.Enabled {
		t.Errorf("Publish enabled without --commit or --dry-run")
	}

	cfg.Publish.DryRun = true
	if p, _ = pipelineConfig(&cfg); !p.Publish.Enabled || !p.Publish.DryRun {
		t.Errorf("Incorrect dry run configuration - got:%+v", p.Publish)
	}
}

func TestPipelineConfigWithMissingRules(t *testing.T) {
	cfg := config.Config{
		Spreadsheet: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		Rules:       filepath.Join(t.TempDir(), "missing.yaml"),
	}

	if _, err := pipelineConfig(&cfg); err == nil {
		t.Errorf("Expected error loading missing rules file, got:%v", err)
	}
}

func TestDiff(t *testing.T) {
	from := "[\n    {\n        \"id\": \"1\",\n        \"name\": \"Gate\"\n    }\n]"
	to := "[\n    {\n        \"id\": \"1\",\n        \"name\": \"Garage\"\n    }\n]"

	expected := `-         "name": "Gate"
+         "name": "Garage"
`

	var b bytes.Buffer
	diff(&b, from, to, newPalette(false))

	if b.String() != expected {
		t.Errorf("Incorrect diff\n   expected:\n%v\n   got:\n%v", expected, b.String())
	}
}

func TestPrintReport(t *testing.T) {
	report := pipeline.Report{
		Records:   2,
		Skipped:   1,
		Document:  document.New([]byte("[]")),
		Persisted: "/tmp/data.json",
		Results: publish.Results{
			{Branch: "gh-pages", Outcome: publish.Updated, Ref: "3f2a7c1e09b4d5e6f7a8b9c0d1e2f3a4b5c6d7e8"},
			{Branch: "main", Outcome: publish.Unchanged, Ref: "e69de29bb2d1", DryRun: true},
			{Branch: "dev", Outcome: publish.Failed, Err: store.ErrUnauthorized},
		},
	}

	expected := `  records:2  skipped:1  bytes:2
  saved:/tmp/data.json

  gh-pages      UPDATED  3f2a7c1e09b4
  main          UNCHANGED  e69de29bb2d1 (dry run)
  dev           FAILED(unauthorized)

`

	var b bytes.Buffer
	printReport(&b, &report, newPalette(false))

	if b.String() != expected {
		t.Errorf("Incorrect report\n   expected:\n%q\n   got:\n%q", expected, b.String())
	}
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"publish", "get", "compare", "authorise", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("Missing '%v' command (%v)", name, err)
		}
	}

	var b bytes.Buffer
	root.SetOut(&b)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Unexpected error executing 'version' (%v)", err)
	}

	if strings.TrimSpace(b.String()) != VERSION {
		t.Errorf("Incorrect version - expected:%v, got:%v", VERSION, b.String())
	}
}

func TestLoadWithDebugLogLevel(t *testing.T) {
	defer log.Setup("info", "text")

	t.Setenv("LOG_LEVEL", "debug")

	cmd := &cobra.Command{Use: "get"}
	sourceFlags(cmd.Flags())

	if _, err := load(cmd, &Options{}); err != nil {
		t.Fatalf("Unexpected error returned from load (%v)", err)
	}

	if !log.IsDebug() {
		t.Errorf("Expected LOG_LEVEL=debug to enable debug logging without --debug")
	}
}

func TestLoadWithDebugFlag(t *testing.T) {
	defer log.Setup("info", "text")

	t.Setenv("LOG_LEVEL", "warn")

	cmd := &cobra.Command{Use: "get"}
	sourceFlags(cmd.Flags())

	if _, err := load(cmd, &Options{Debug: true}); err != nil {
		t.Fatalf("Unexpected error returned from load (%v)", err)
	}

	if !log.IsDebug() {
		t.Errorf("Expected --debug to enable debug logging")
	}
}

func TestPublishRequiresSpreadsheet(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_KEY", "")
	t.Setenv("SHEETS2JSON_GOOGLE_CREDENTIALS", "")

	root := NewRootCommand()
	root.SetArgs([]string{"publish", "--workdir", t.TempDir()})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "missing spreadsheet") {
		t.Errorf("Expected 'missing spreadsheet' error, got:%v", err)
	}

	if errors.Is(err, store.ErrNetwork) {
		t.Errorf("Unexpected network error (%v)", err)
	}
}
