// Package store defines the contract for the remote repositories that documents are published to.
//
// A store exposes the current content of a file together with an opaque content reference and
// accepts writes that are conditional on that reference, so that an update based on a stale read
// is rejected rather than silently overwriting a concurrent change.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the file does not exist on the branch.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing, invalid or insufficient credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates that the write precondition failed.
	ErrConflict = errors.New("write conflict")

	// ErrNetwork indicates a transport level or unclassified remote failure.
	ErrNetwork = errors.New("network error")
)

// File is the current content of a file and the reference required to update it.
type File struct {
	Content []byte
	Ref     string
}

// Write describes a conditional write. An empty Ref creates the file and fails with ErrConflict
// if it already exists, otherwise the write succeeds only if the current reference matches Ref.
type Write struct {
	Branch  string
	Path    string
	Content []byte
	Ref     string
	Message string
}

type Store interface {
	String() string

	// Read returns the file at path on branch, or ErrNotFound.
	Read(ctx context.Context, branch, path string) (*File, error)

	// Write creates or updates a file and returns the new content reference.
	Write(ctx context.Context, w Write) (string, error)
}

// ConflictError reports a failed write precondition.
type ConflictError struct {
	Branch   string
	Path     string
	Expected string
	Current  string
}

func (e *ConflictError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%v: %v already exists on %v", ErrConflict, e.Path, e.Branch)
	}

	if e.Current == "" {
		return fmt.Sprintf("%v: %v on %v has changed (expected %v)", ErrConflict, e.Path, e.Branch, e.Expected)
	}

	return fmt.Sprintf("%v: %v on %v has changed (expected %v, current %v)", ErrConflict, e.Path, e.Branch, e.Expected, e.Current)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
