// Package github implements a store on a GitHub repository using the contents API. Content
// references are the blob SHAs reported by GitHub.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/uhppoted/sheets2json/store"
)

type repository struct {
	client    *github.Client
	owner     string
	name      string
	committer *github.CommitAuthor
}

type Option func(*repository)

// WithCommitter sets the committer recorded on created and updated files. GitHub uses the token
// owner if not set.
func WithCommitter(name, email string) Option {
	return func(r *repository) {
		if name != "" && email != "" {
			r.committer = &github.CommitAuthor{
				Name:  github.String(name),
				Email: github.String(email),
			}
		}
	}
}

// New returns a store for owner/name, authenticating with a personal access token.
func New(ctx context.Context, token, owner, name string, opts ...Option) store.Store {
	var client *http.Client
	if token != "" {
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	return NewWithClient(github.NewClient(client), owner, name, opts...)
}

func NewWithClient(client *github.Client, owner, name string, opts ...Option) store.Store {
	r := &repository{
		client: client,
		owner:  owner,
		name:   name,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *repository) String() string {
	return fmt.Sprintf("github://%v/%v", r.owner, r.name)
}

func (r *repository) Read(ctx context.Context, branch, path string) (*store.File, error) {
	options := github.RepositoryContentGetOptions{
		Ref: branch,
	}

	file, _, _, err := r.client.Repositories.GetContents(ctx, r.owner, r.name, path, &options)
	if err != nil {
		return nil, classify(err)
	} else if file == nil {
		return nil, fmt.Errorf("%w: %v is a directory", store.ErrConflict, path)
	}

	// files over 1MB are returned without content
	if file.GetEncoding() == "none" {
		content, _, err := r.client.Git.GetBlobRaw(ctx, r.owner, r.name, file.GetSHA())
		if err != nil {
			return nil, classify(err)
		}

		return &store.File{Content: content, Ref: file.GetSHA()}, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("%w: error decoding %v (%v)", store.ErrNetwork, path, err)
	}

	return &store.File{
		Content: []byte(content),
		Ref:     file.GetSHA(),
	}, nil
}

func (r *repository) Write(ctx context.Context, w store.Write) (string, error) {
	options := github.RepositoryContentFileOptions{
		Message:   github.String(w.Message),
		Content:   w.Content,
		Branch:    github.String(w.Branch),
		Committer: r.committer,
	}

	var response *github.RepositoryContentResponse
	var err error

	if w.Ref == "" {
		response, _, err = r.client.Repositories.CreateFile(ctx, r.owner, r.name, w.Path, &options)
	} else {
		options.SHA = github.String(w.Ref)
		response, _, err = r.client.Repositories.UpdateFile(ctx, r.owner, r.name, w.Path, &options)
	}

	if err != nil {
		if err = classify(err); errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: repository %v/%v or branch %v", store.ErrNotFound, r.owner, r.name, w.Branch)
		}

		return "", err
	}

	if response != nil && response.Content != nil {
		return response.Content.GetSHA(), nil
	}

	return "", nil
}

func classify(err error) error {
	var rate *github.RateLimitError
	var abuse *github.AbuseRateLimitError
	var response *github.ErrorResponse

	switch {
	case errors.As(err, &rate), errors.As(err, &abuse):
		return fmt.Errorf("%w: %v", store.ErrNetwork, err)

	case errors.As(err, &response) && response.Response != nil:
		switch response.Response.StatusCode {
		case http.StatusNotFound:
			return store.ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", store.ErrUnauthorized, err)

		case http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		}
	}

	return fmt.Errorf("%w: %v", store.ErrNetwork, err)
}
