// Package localfs implements a store on a local (or in-memory) file system, with one directory per
// branch. Content references are git blob hashes, i.e. the same values GitHub reports for a file.
package localfs

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/uhppoted/sheets2json/store"
)

type localFS struct {
	fs afero.Fs
	sync.Mutex
}

// New creates a store rooted at the base of the file system. Use afero.NewBasePathFs to root the
// store in a directory.
func New(fs afero.Fs) store.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), ".sheets2json")
	}

	return &localFS{
		fs: fs,
	}
}

func (l *localFS) String() string {
	return "localfs"
}

func (l *localFS) Read(ctx context.Context, branch, path string) (*store.File, error) {
	l.Lock()
	defer l.Unlock()

	return l.read(branch, path)
}

func (l *localFS) Write(ctx context.Context, w store.Write) (string, error) {
	l.Lock()
	defer l.Unlock()

	current, err := l.read(w.Branch, w.Path)
	switch {
	case err == nil && w.Ref == "":
		return "", &store.ConflictError{Branch: w.Branch, Path: w.Path, Current: current.Ref}

	case err == nil && w.Ref != current.Ref:
		return "", &store.ConflictError{Branch: w.Branch, Path: w.Path, Expected: w.Ref, Current: current.Ref}

	case err == store.ErrNotFound && w.Ref != "":
		return "", &store.ConflictError{Branch: w.Branch, Path: w.Path, Expected: w.Ref}

	case err != nil && err != store.ErrNotFound:
		return "", err
	}

	key, err := key(w.Branch, w.Path)
	if err != nil {
		return "", err
	}

	if err := l.fs.MkdirAll(filepath.Dir(key), 0700); err != nil {
		return "", fmt.Errorf("ensuring directories for %q: %w", key, err)
	}

	if err := afero.WriteFile(l.fs, key, w.Content, 0600); err != nil {
		return "", fmt.Errorf("write record for %q: %w", key, err)
	}

	return BlobSHA(w.Content), nil
}

func (l *localFS) read(branch, path string) (*store.File, error) {
	key, err := key(branch, path)
	if err != nil {
		return nil, err
	}

	b, err := afero.ReadFile(l.fs, key)
	if os.IsNotExist(err) {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return &store.File{
		Content: b,
		Ref:     BlobSHA(b),
	}, nil
}

// BlobSHA returns the git blob hash of the content.
func BlobSHA(content []byte) string {
	h := sha1.New()

	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)

	return hex.EncodeToString(h.Sum(nil))
}

func key(branch, path string) (string, error) {
	branch = strings.Trim(branch, "/")
	path = strings.Trim(path, "/")

	if branch == "" || path == "" {
		return "", fmt.Errorf("invalid branch/path '%v/%v'", branch, path)
	}

	key := filepath.Join(string(filepath.Separator), branch, path)
	if !strings.HasPrefix(key, filepath.Join(string(filepath.Separator), branch)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path '%v'", path)
	}

	return key, nil
}
