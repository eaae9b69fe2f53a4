package security

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docxBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<w:document/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestValidateCVFile(t *testing.T) {
	t.Run("Should accept a PDF", func(t *testing.T) {
		info, err := ValidateCVFile("Jane.PDF", []byte("%PDF-1.7\n1 0 obj\n"), 1<<20)
		require.NoError(t, err)
		assert.Equal(t, ".pdf", info.Extension)
		assert.Equal(t, "application/pdf", info.ContentType)
	})

	t.Run("Should accept a DOCX sniffed as ZIP", func(t *testing.T) {
		info, err := ValidateCVFile("cv.docx", docxBytes(t), 1<<20)
		require.NoError(t, err)
		assert.Contains(t, info.ContentType, "wordprocessingml")
	})

	t.Run("Should accept UTF-8 text", func(t *testing.T) {
		_, err := ValidateCVFile("cv.txt", []byte("Nguyễn Văn A\nGo developer"), 1<<20)
		assert.NoError(t, err)
	})

	cases := []struct {
		name string
		file string
		data []byte
		max  int64
	}{
		{"Should reject a missing extension", "cv", []byte("%PDF-1.7"), 0},
		{"Should reject legacy Word files", "cv.doc", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0},
		{"Should reject a spoofed PDF", "cv.pdf", []byte("MZ\x90\x00 not a pdf"), 0},
		{"Should reject an empty file", "cv.pdf", nil, 0},
		{"Should reject an oversized file", "cv.txt", bytes.Repeat([]byte("a"), 2<<20), 1 << 20},
		{"Should reject binary text files", "cv.txt", []byte{0xff, 0xfe, 0x00, 0x01}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCVFile(tc.file, tc.data, tc.max)
			assert.ErrorIs(t, err, ErrInvalidCVFile)
		})
	}
}

// windowScripter runs the sliding window in memory through the go-redis Script protocol.
type windowScripter struct {
	goredis.Scripter
	hits map[string][]int64
	err  error
}

func (w *windowScripter) EvalSha(ctx context.Context, sha string, keys []string, args ...interface{}) *goredis.Cmd {
	if w.err != nil {
		return goredis.NewCmdResult(nil, w.err)
	}
	limit := args[0].(int)
	window := args[1].(int64)
	now := args[2].(int64)

	var kept []int64
	for _, ts := range w.hits[keys[0]] {
		if ts > now-window {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= limit {
		w.hits[keys[0]] = kept
		return goredis.NewCmdResult(int64(0), nil)
	}
	w.hits[keys[0]] = append(kept, now)
	return goredis.NewCmdResult(int64(1), nil)
}

func TestAnalysisLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("Should deny once the hourly budget is used and recover after the window", func(t *testing.T) {
		clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
		l := NewAnalysisLimiter(&windowScripter{hits: map[string][]int64{}}, 2)
		l.now = func() time.Time { return clock }

		for i := 0; i < 2; i++ {
			ok, err := l.Allow(ctx, "op-1")
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := l.Allow(ctx, "op-1")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, _ = l.Allow(ctx, "op-2")
		assert.True(t, ok, "limits are per operator")

		clock = clock.Add(time.Hour + time.Second)
		ok, _ = l.Allow(ctx, "op-1")
		assert.True(t, ok)
	})

	t.Run("Should allow and report when Redis fails", func(t *testing.T) {
		l := NewAnalysisLimiter(&windowScripter{err: errors.New("connection refused")}, 1)
		ok, err := l.Allow(ctx, "op-1")
		assert.True(t, ok)
		assert.Error(t, err)
	})

	t.Run("Should allow everything when no limiter is configured", func(t *testing.T) {
		var l *AnalysisLimiter
		ok, err := l.Allow(ctx, "op-1")
		assert.True(t, ok)
		assert.NoError(t, err)
	})
}
