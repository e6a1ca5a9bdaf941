package core

import (
	"context"
	"io"
)

type (
	// FileRef points at a stored file. It is opaque to the domain services:
	// URL is what clients fetch, Filename is the name under which the
	// backing store knows the file.
	FileRef struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}

	// FileStorage is any service that can persist an uploaded file payload
	// and hand back a stable reference to it. Deleting a domain record does
	// not remove its file from storage.
	FileStorage interface {
		Save(ctx context.Context, filename, contentType string, r io.Reader) (FileRef, error)
	}
)
