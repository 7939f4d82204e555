// Package gcs implements a store on a Google Cloud Storage bucket. Branches map to object name
// prefixes and content references are object generations.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	gcsStorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/uhppoted/sheets2json/store"
)

type gcs struct {
	client *gcsStorage.Client
	bucket string
}

func New(ctx context.Context, bucket string, opts ...option.ClientOption) (store.Store, error) {
	client, err := gcsStorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, classify(err)
	}

	return &gcs{
		client: client,
		bucket: bucket,
	}, nil
}

func (g *gcs) String() string {
	return "gcs://" + g.bucket
}

func (g *gcs) Read(ctx context.Context, branch, file string) (*store.File, error) {
	object, err := key(branch, file)
	if err != nil {
		return nil, err
	}

	reader, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, classify(err)
	}

	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, classify(err)
	}

	return &store.File{
		Content: content,
		Ref:     strconv.FormatInt(reader.Attrs.Generation, 10),
	}, nil
}

func (g *gcs) Write(ctx context.Context, w store.Write) (string, error) {
	object, err := key(w.Branch, w.Path)
	if err != nil {
		return "", err
	}

	conditions := gcsStorage.Conditions{DoesNotExist: true}
	if w.Ref != "" {
		generation, err := strconv.ParseInt(w.Ref, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid object generation '%v'", w.Ref)
		}

		conditions = gcsStorage.Conditions{GenerationMatch: generation}
	}

	writer := g.client.Bucket(g.bucket).Object(object).If(conditions).NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.Metadata = map[string]string{"message": w.Message}

	if _, err := writer.Write(w.Content); err != nil {
		writer.Close()
		return "", g.conflict(classify(err), w)
	}

	if err := writer.Close(); err != nil {
		return "", g.conflict(classify(err), w)
	}

	return strconv.FormatInt(writer.Attrs().Generation, 10), nil
}

func (g *gcs) conflict(err error, w store.Write) error {
	if errors.Is(err, store.ErrConflict) {
		return &store.ConflictError{Branch: w.Branch, Path: w.Path, Expected: w.Ref}
	}

	return err
}

func key(branch, file string) (string, error) {
	branch = strings.Trim(branch, "/")
	file = strings.Trim(file, "/")
	if branch == "" || file == "" {
		return "", fmt.Errorf("invalid branch/path '%v/%v'", branch, file)
	}

	return path.Join(branch, file), nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gcsStorage.ErrObjectNotExist) || errors.Is(err, gcsStorage.ErrBucketNotExist) {
		return store.ErrNotFound
	}

	var apierr *googleapi.Error
	if errors.As(err, &apierr) {
		switch apierr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", store.ErrUnauthorized, err)

		case http.StatusNotFound:
			return store.ErrNotFound

		case http.StatusPreconditionFailed, http.StatusConflict:
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		}
	}

	return fmt.Errorf("%w: %v", store.ErrNetwork, err)
}
