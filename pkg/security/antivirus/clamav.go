package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd rejects INSTREAM chunks above StreamMaxLength; 1 MiB chunks stay well under the default.
const clamChunkSize = 1 << 20

// ClamAVScanner talks to a clamd daemon with the zINSTREAM command.
type ClamAVScanner struct {
	network string
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner accepts a TCP "host:port" or a unix socket path.
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &ClamAVScanner{network: network, address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string { return "clamav" }

func (c *ClamAVScanner) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("clamav: connect: %w", err)
	}
	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping reports whether clamd answers PONG.
func (c *ClamAVScanner) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("clamav: ping: %w", err)
	}
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return fmt.Errorf("clamav: ping: %w", err)
	}
	if strings.TrimRight(reply, "\x00\n") != "PONG" {
		return fmt.Errorf("clamav: unexpected ping reply %q", reply)
	}
	return nil
}

func (c *ClamAVScanner) Scan(ctx context.Context, _ string, data []byte) (Verdict, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return Verdict{Scanner: c.Name()}, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return Verdict{Scanner: c.Name()}, fmt.Errorf("clamav: send command: %w", err)
	}
	var size [4]byte
	for off := 0; off < len(data); off += clamChunkSize {
		end := min(off+clamChunkSize, len(data))
		binary.BigEndian.PutUint32(size[:], uint32(end-off))
		if _, err := w.Write(size[:]); err != nil {
			return Verdict{Scanner: c.Name()}, fmt.Errorf("clamav: send chunk: %w", err)
		}
		if _, err := w.Write(data[off:end]); err != nil {
			return Verdict{Scanner: c.Name()}, fmt.Errorf("clamav: send chunk: %w", err)
		}
	}
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return Verdict{Scanner: c.Name()}, fmt.Errorf("clamav: send end marker: %w", err)
	}
	if err := w.Flush(); err != nil {
		return Verdict{Scanner: c.Name()}, fmt.Errorf("clamav: flush: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return Verdict{Scanner: c.Name()}, fmt.Errorf("clamav: read reply: %w", err)
	}
	return parseReply(c.Name(), reply)
}

// parseReply reads "stream: OK", "stream: <threat> FOUND" or "<message> ERROR".
func parseReply(scanner, reply string) (Verdict, error) {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))
	v := Verdict{Scanner: scanner}
	switch {
	case strings.HasSuffix(reply, "FOUND"):
		v.Infected = true
		threat := strings.TrimSuffix(reply, "FOUND")
		if _, after, ok := strings.Cut(threat, ":"); ok {
			threat = after
		}
		v.ThreatName = strings.TrimSpace(threat)
		return v, nil
	case strings.HasSuffix(reply, "OK"):
		return v, nil
	default:
		return v, fmt.Errorf("clamav: scan failed: %s", reply)
	}
}
