package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Persist writes the document to a local file, replacing the file atomically. Missing directories
// are created.
func Persist(fs afero.Fs, doc Document, file string) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	dir := filepath.Dir(file)
	if err := fs.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, dir, ".sheets2json-*")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		fs.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(doc.bytes); err != nil {
		return fmt.Errorf("error writing %v (%w)", file, err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := fs.Chmod(tmp.Name(), 0644); err != nil && !os.IsNotExist(err) {
		return err
	}

	return fs.Rename(tmp.Name(), file)
}
