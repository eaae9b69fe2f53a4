package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd accepts one zINSTREAM session and answers FOUND when the payload contains marker.
func fakeClamd(t *testing.T, marker string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		if _, err := r.ReadString(0); err != nil {
			return
		}
		var payload []byte
		for {
			var size [4]byte
			if _, err := io.ReadFull(r, size[:]); err != nil {
				return
			}
			n := binary.BigEndian.Uint32(size[:])
			if n == 0 {
				break
			}
			chunk := make([]byte, n)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return
			}
			payload = append(payload, chunk...)
		}
		if strings.Contains(string(payload), marker) {
			conn.Write([]byte("stream: Eicar-Test-Signature FOUND\x00"))
			return
		}
		conn.Write([]byte("stream: OK\x00"))
	}()
	return ln.Addr().String()
}

func TestClamAVScanner(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report a clean file", func(t *testing.T) {
		s := NewClamAVScanner(fakeClamd(t, "EICAR"), 5*time.Second)
		v, err := Check(ctx, s, "cv.txt", []byte("Jane Doe, Go engineer"))
		require.NoError(t, err)
		assert.False(t, v.Infected)
	})

	t.Run("Should reject an infected file", func(t *testing.T) {
		s := NewClamAVScanner(fakeClamd(t, "EICAR"), 5*time.Second)
		v, err := Check(ctx, s, "cv.txt", []byte("X5O EICAR test"))
		require.ErrorIs(t, err, ErrInfected)
		assert.Equal(t, "Eicar-Test-Signature", v.ThreatName)
	})

	t.Run("Should fail when clamd is unreachable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		ln.Close()

		_, err = NewClamAVScanner(addr, time.Second).Scan(ctx, "cv.txt", []byte("x"))
		assert.Error(t, err)
	})
}

func TestParseReply(t *testing.T) {
	v, err := parseReply("clamav", "stream: OK\x00")
	require.NoError(t, err)
	assert.False(t, v.Infected)

	_, err = parseReply("clamav", "INSTREAM size limit exceeded. ERROR")
	assert.Error(t, err)
}

func TestCheckWithoutScanner(t *testing.T) {
	_, err := Check(context.Background(), nil, "cv.pdf", []byte("%PDF"))
	assert.NoError(t, err)

	_, err = Check(context.Background(), NoOpScanner{}, "cv.pdf", []byte("%PDF"))
	assert.NoError(t, err)
}
