// Package storage provides the object stores that hold uploaded CV files.
package storage

import (
	"errors"
	"io"
)

// ProgressFunc matches domain.ProgressFunc without importing internal packages.
type ProgressFunc = func(sent, total int64)

// progressReader reports bytes read through it. Seeking resets the count so SDK retries
// that rewind the body report honestly.
type progressReader struct {
	r        io.Reader
	total    int64
	sent     int64
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("storage: body is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err == nil {
		p.sent = pos
	}
	return pos, err
}
