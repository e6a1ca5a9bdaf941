package storagesvc

import (
	"context"
	"io"
	"path"
	"sync"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

// serviceMock keeps saved payloads in memory.
type serviceMock struct {
	mu        sync.Mutex
	urlPrefix string
	files     map[string][]byte
}

var _ core.FileStorage = (*serviceMock)(nil)

func NewServiceMock() *serviceMock {
	return &serviceMock{
		urlPrefix: core.Conf.Upload.URLPrefix,
		files:     make(map[string][]byte),
	}
}

func (svc *serviceMock) Save(ctx context.Context, filename, contentType string, r io.Reader) (core.FileRef, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return core.FileRef{}, errors.Wrap(err, "reading upload payload")
	}

	svc.mu.Lock()
	svc.files[filename] = content
	svc.mu.Unlock()

	return core.FileRef{
		URL:      path.Join(svc.urlPrefix, filename),
		Filename: filename,
	}, nil
}

// SavedFile returns the stored payload for filename, if any.
func (svc *serviceMock) SavedFile(filename string) ([]byte, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	content, ok := svc.files[filename]
	return content, ok
}
