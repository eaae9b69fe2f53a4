// Package antivirus scans uploaded CV documents before they are stored or sent for extraction.
package antivirus

import (
	"context"
	"errors"
)

// ErrInfected is returned by Check when a scanner reports a threat.
var ErrInfected = errors.New("file rejected by malware scan")

// Verdict is the outcome of one scan.
type Verdict struct {
	Infected   bool
	ThreatName string
	Scanner    string
}

// Scanner checks file content for malware. A scan that cannot complete returns an error; callers
// treat that as a rejection.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) (Verdict, error)
	Name() string
}

// NoOpScanner reports every file clean. It is used when no scanner is configured.
type NoOpScanner struct{}

var _ Scanner = NoOpScanner{}

func (NoOpScanner) Scan(_ context.Context, _ string, _ []byte) (Verdict, error) {
	return Verdict{Scanner: "noop"}, nil
}

func (NoOpScanner) Name() string { return "noop" }

// Check runs s and folds an infected verdict into ErrInfected. A nil scanner accepts everything.
func Check(ctx context.Context, s Scanner, filename string, data []byte) (Verdict, error) {
	if s == nil {
		return Verdict{}, nil
	}
	v, err := s.Scan(ctx, filename, data)
	if err != nil {
		return v, err
	}
	if v.Infected {
		return v, ErrInfected
	}
	return v, nil
}
