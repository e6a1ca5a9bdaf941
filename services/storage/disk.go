package storagesvc

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

// nowFunc can be overridden for tests
var nowFunc = time.Now

type diskService struct {
	dir       string
	urlPrefix string
}

var _ core.FileStorage = (*diskService)(nil)

func NewDiskService() *diskService {
	return &diskService{
		dir:       core.Conf.Upload.Dir,
		urlPrefix: core.Conf.Upload.URLPrefix,
	}
}

// Save writes the payload to disk under a timestamped name so uploads
// with the same original filename never clash.
func (svc diskService) Save(ctx context.Context, filename, contentType string, r io.Reader) (core.FileRef, error) {
	if err := os.MkdirAll(svc.dir, 0o755); err != nil {
		return core.FileRef{}, errors.Wrap(err, "creating upload dir")
	}

	name := strconv.FormatInt(nowFunc().UnixNano()/int64(time.Millisecond), 10) + filepath.Ext(filename)
	f, err := os.Create(filepath.Join(svc.dir, name))
	if err != nil {
		return core.FileRef{}, errors.Wrap(err, "creating upload file")
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return core.FileRef{}, errors.Wrap(err, "writing upload file")
	}

	return core.FileRef{
		URL:      path.Join(svc.urlPrefix, name),
		Filename: name,
	}, nil
}
