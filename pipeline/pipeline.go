// Package pipeline runs the fetch, transform, build and publish stages that take a spreadsheet to a
// published JSON document.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/uhppoted/sheets2json/document"
	"github.com/uhppoted/sheets2json/log"
	"github.com/uhppoted/sheets2json/publish"
	"github.com/uhppoted/sheets2json/record"
	"github.com/uhppoted/sheets2json/sheet"
	"github.com/uhppoted/sheets2json/store"
)

type Stage string

const (
	Fetch     Stage = "fetch"
	Transform Stage = "transform"
	Build     Stage = "build"
	Persist   Stage = "persist"
	Publish   Stage = "publish"
)

// StageError identifies the stage that aborted a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Source interface {
	Fetch(context.Context, sheet.Spec) (record.Dataset, error)
}

// Config holds the parameters for a single run.
type Config struct {
	Source   sheet.Spec
	Filters  []record.Filter
	Document []document.Option
	Persist  PersistConfig
	Publish  PublishConfig
}

// PersistConfig controls the optional local copy of the document. A nil FS writes to the local file
// system.
type PersistConfig struct {
	Enabled bool
	File    string
	FS      afero.Fs
}

type PublishConfig struct {
	Enabled  bool
	DryRun   bool
	Path     string
	Branches []string
	Messages struct {
		Create string
		Update string
	}
}

// Report summarises a run.
type Report struct {
	ID        uuid.UUID
	Started   time.Time
	Finished  time.Time
	Fetched   int
	Records   int
	Skipped   int
	Document  document.Document
	Persisted string
	Results   publish.Results
}

// Err returns the combined publishing failures.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}

	return r.Results.Err()
}

type Pipeline struct {
	source Source
	store  store.Store
}

func New(source Source, s store.Store) *Pipeline {
	return &Pipeline{
		source: source,
		store:  s,
	}
}

// Run executes the stages in order. A failure in fetch, transform, build or persist aborts the run.
// Publishing continues past a failed branch, but the run still returns a publish StageError with the
// combined branch failures. The report is returned in every case.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Report, error) {
	report := Report{
		ID:      uuid.New(),
		Started: time.Now(),
	}

	defer func() {
		report.Finished = time.Now()
	}()

	logger := log.With("run", report.ID.String())

	// ... fetch
	dataset, err := p.source.Fetch(ctx, cfg.Source)
	if err != nil {
		return &report, &StageError{Fetch, fmt.Errorf("unable to retrieve data from sheet (%w)", err)}
	}

	report.Fetched = len(dataset)
	logger.Infof("fetched %v rows from %v", len(dataset), cfg.Source.Spreadsheet)

	// ... transform
	transformed, err := record.Transform(dataset, cfg.Filters...)
	if err != nil {
		return &report, &StageError{Transform, err}
	}

	report.Records = len(transformed)
	report.Skipped = len(dataset) - len(transformed)
	logger.Infof("transformed %v records (%v skipped)", report.Records, report.Skipped)

	// ... build
	doc, err := document.Build(transformed, cfg.Document...)
	if err != nil {
		return &report, &StageError{Build, err}
	}

	report.Document = doc
	logger.Debugf("document: %v bytes, sha256 %v", doc.Len(), doc.SHA256())

	// ... persist
	if cfg.Persist.Enabled {
		if err := document.Persist(cfg.Persist.FS, doc, cfg.Persist.File); err != nil {
			return &report, &StageError{Persist, fmt.Errorf("unable to write %v (%w)", cfg.Persist.File, err)}
		}

		report.Persisted = cfg.Persist.File
		logger.Infof("saved %v", cfg.Persist.File)
	}

	// ... publish
	if cfg.Publish.Enabled {
		if p.store == nil {
			return &report, &StageError{Publish, fmt.Errorf("no repository configured")}
		}

		publisher := publish.New(p.store,
			publish.DryRun(cfg.Publish.DryRun),
			publish.WithMessages(cfg.Publish.Messages.Create, cfg.Publish.Messages.Update))

		logger.Infof("publishing %v to %v %q", cfg.Publish.Path, p.store, cfg.Publish.Branches)

		report.Results = publisher.Publish(ctx, doc, cfg.Publish.Path, cfg.Publish.Branches)
		if err := report.Results.Err(); err != nil {
			return &report, &StageError{Publish, err}
		}
	}

	return &report, nil
}
