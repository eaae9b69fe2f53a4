package domain

import (
	"context"
	"io"
)

// ProgressFunc receives the number of bytes sent so far and the total size.
type ProgressFunc = func(sent, total int64)

type ObjectStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader, size int64, progress ProgressFunc) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// CVFile is an uploaded CV document held in memory until it is stored.
type CVFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type Extractor interface {
	Extract(ctx context.Context, file CVFile) (*CVExtraction, error)
}
