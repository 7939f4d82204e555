// Package publish implements the conditional publication of a document to one or more branches of a
// store: a file is created if missing, updated if its content differs and otherwise left alone.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"go.uber.org/multierr"

	"github.com/uhppoted/sheets2json/document"
	"github.com/uhppoted/sheets2json/log"
	"github.com/uhppoted/sheets2json/store"
)

type Outcome int

const (
	Failed Outcome = iota
	Created
	Updated
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "CREATED"
	case Updated:
		return "UPDATED"
	case Unchanged:
		return "UNCHANGED"
	default:
		return "FAILED"
	}
}

// Result is the outcome of publishing to a single branch. Ref is the content reference after the
// write or, for an unchanged file, the current reference.
type Result struct {
	Branch  string
	Path    string
	Outcome Outcome
	Ref     string
	DryRun  bool
	Err     error
}

type Results []Result

// Err returns the combined branch failures, or nil if every branch succeeded.
func (rs Results) Err() error {
	var err error
	for _, r := range rs {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%v: %w", r.Branch, r.Err))
		}
	}

	return err
}

// Failed returns true if publishing to any branch failed.
func (rs Results) Failed() bool {
	for _, r := range rs {
		if r.Outcome == Failed {
			return true
		}
	}

	return false
}

type Publisher struct {
	store    store.Store
	dryrun   bool
	messages struct {
		create string
		update string
	}
}

type Option func(*Publisher)

// DryRun reports what would be written without writing anything.
func DryRun(enabled bool) Option {
	return func(p *Publisher) {
		p.dryrun = enabled
	}
}

// WithMessages sets the commit messages used for created and updated files. A %s in either message
// is replaced with the file path.
func WithMessages(create, update string) Option {
	return func(p *Publisher) {
		if create != "" {
			p.messages.create = create
		}

		if update != "" {
			p.messages.update = update
		}
	}
}

func New(s store.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: s,
	}

	p.messages.create = "Add %s"
	p.messages.update = "Update %s"

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Publish writes the document to path on each branch, in order. A failure on one branch does not
// stop the remaining branches.
func (p *Publisher) Publish(ctx context.Context, doc document.Document, path string, branches []string) Results {
	results := Results{}

	for _, branch := range branches {
		result := p.publish(ctx, doc, path, branch)

		if result.Err != nil {
			log.Warnf("%-12v %v %v (%v)", branch, path, result.Outcome, result.Err)
		} else {
			log.Infof("%-12v %v %v", branch, path, result.Outcome)
		}

		results = append(results, result)
	}

	return results
}

func (p *Publisher) publish(ctx context.Context, doc document.Document, path, branch string) Result {
	result := Result{
		Branch: branch,
		Path:   path,
		DryRun: p.dryrun,
	}

	fail := func(err error) Result {
		result.Outcome = Failed
		result.Err = err
		return result
	}

	content := doc.Bytes()

	current, err := p.store.Read(ctx, branch, path)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fail(err)
	}

	if current == nil {
		log.Debugf("%v: %v does not exist", branch, path)

		result.Outcome = Created
		if p.dryrun {
			return result
		}

		ref, err := p.store.Write(ctx, store.Write{
			Branch:  branch,
			Path:    path,
			Content: content,
			Message: p.message(p.messages.create, path),
		})
		if err != nil {
			return fail(err)
		}

		result.Ref = ref
		return result
	}

	if bytes.Equal(current.Content, content) {
		result.Outcome = Unchanged
		result.Ref = current.Ref
		return result
	}

	if jsonpatch.Equal(current.Content, content) {
		log.Infof("%v: %v differs only in formatting", branch, path)
	}

	result.Outcome = Updated
	result.Ref = current.Ref
	if p.dryrun {
		return result
	}

	ref, err := p.store.Write(ctx, store.Write{
		Branch:  branch,
		Path:    path,
		Content: content,
		Ref:     current.Ref,
		Message: p.message(p.messages.update, path),
	})
	if err != nil {
		return fail(err)
	}

	result.Ref = ref

	return result
}

func (p *Publisher) message(format, path string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, path)
	}

	return format
}
