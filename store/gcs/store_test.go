package gcs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	gcsStorage "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/uhppoted/sheets2json/store"
)

func TestKey(t *testing.T) {
	object, err := key("gh-pages", "data/data.json")
	require.NoError(t, err)
	assert.Equal(t, "gh-pages/data/data.json", object)

	object, err = key("/main/", "/data.json")
	require.NoError(t, err)
	assert.Equal(t, "main/data.json", object)

	_, err = key("", "data.json")
	assert.Error(t, err)

	_, err = key("main", "")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err      error
		expected error
	}{
		{gcsStorage.ErrObjectNotExist, store.ErrNotFound},
		{fmt.Errorf("reading (%w)", gcsStorage.ErrBucketNotExist), store.ErrNotFound},
		{&googleapi.Error{Code: http.StatusPreconditionFailed}, store.ErrConflict},
		{&googleapi.Error{Code: http.StatusUnauthorized}, store.ErrUnauthorized},
		{&googleapi.Error{Code: http.StatusForbidden}, store.ErrUnauthorized},
		{&googleapi.Error{Code: http.StatusNotFound}, store.ErrNotFound},
		{&googleapi.Error{Code: http.StatusServiceUnavailable}, store.ErrNetwork},
		{errors.New("connection reset by peer"), store.ErrNetwork},
	}

	for _, test := range tests {
		err := classify(test.err)
		assert.Truef(t, errors.Is(err, test.expected), "expected %v, got %v", test.expected, err)
	}

	assert.NoError(t, classify(nil))
}

func TestConflict(t *testing.T) {
	g := &gcs{bucket: "sheets"}
	w := store.Write{Branch: "gh-pages", Path: "data.json", Ref: "1712345678901234"}

	err := g.conflict(classify(&googleapi.Error{Code: http.StatusPreconditionFailed}), w)

	var conflict *store.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "gh-pages", conflict.Branch)
	assert.Equal(t, "1712345678901234", conflict.Expected)

	err = g.conflict(store.ErrUnauthorized, w)
	assert.Equal(t, store.ErrUnauthorized, err)
}
