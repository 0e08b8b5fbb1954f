package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// CollectorWriter mirrors diagnostic log output to a TCP log collector while
// keeping the standard log package non-blocking. It keeps a single TCP
// connection open and silently drops writes while the collector is
// unreachable, so a dead collector never stalls an API request.
type CollectorWriter struct {
	addr          string
	ioTimeout     time.Duration
	retryInterval time.Duration
	maxLineBytes  int

	mu        sync.Mutex
	conn      net.Conn
	nextRetry time.Time
	closed    bool
}

// Option configures a CollectorWriter.
type Option func(*CollectorWriter)

// WithIOTimeout overrides the timeout applied to dials and writes.
// Defaults to 2 seconds.
func WithIOTimeout(d time.Duration) Option {
	return func(w *CollectorWriter) {
		w.ioTimeout = d
	}
}

// WithRetryInterval overrides the cool-down window after a failed connect or
// write. Defaults to 5 seconds.
func WithRetryInterval(d time.Duration) Option {
	return func(w *CollectorWriter) {
		w.retryInterval = d
	}
}

// WithMaxLineBytes caps the size of a forwarded line. Request diagnostics
// include response bodies, which can be large; lines over the cap are
// truncated rather than sent whole. Defaults to 8 KiB.
func WithMaxLineBytes(n int) Option {
	return func(w *CollectorWriter) {
		w.maxLineBytes = n
	}
}

// NewCollectorWriter returns a writer that forwards log output to a TCP
// collector. The returned writer is safe for concurrent use by multiple
// goroutines.
func NewCollectorWriter(addr string, opts ...Option) (*CollectorWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logging: empty collector address")
	}

	w := &CollectorWriter{
		addr:          addr,
		ioTimeout:     2 * time.Second,
		retryInterval: 5 * time.Second,
		maxLineBytes:  8 * 1024,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

const truncationMarker = "...[truncated]"

// Write implements io.Writer. It attempts to forward the payload while
// ensuring the caller never blocks on network hiccups. When the collector is
// down, writes are dropped until the next retry window.
func (w *CollectorWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	data := make([]byte, len(p))
	copy(data, p)
	if w.maxLineBytes > 0 && len(data) > w.maxLineBytes {
		data = append(data[:w.maxLineBytes], truncationMarker...)
	}
	if data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}

	if err := w.ensureConnLocked(); err != nil {
		return len(p), nil
	}

	if w.ioTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.ioTimeout))
	}

	if _, err := w.conn.Write(data); err != nil {
		w.closeConnLocked()
		w.scheduleRetryLocked()
		return len(p), nil
	}

	return len(p), nil
}

// Close tears down the underlying TCP connection.
func (w *CollectorWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	return w.closeConnLocked()
}

func (w *CollectorWriter) ensureConnLocked() error {
	if w.conn != nil {
		return nil
	}

	if !w.nextRetry.IsZero() && time.Now().Before(w.nextRetry) {
		return errRetryCooldown
	}

	conn, err := net.DialTimeout("tcp", w.addr, w.ioTimeout)
	if err != nil {
		w.scheduleRetryLocked()
		return err
	}

	w.conn = conn
	w.nextRetry = time.Time{}
	return nil
}

func (w *CollectorWriter) closeConnLocked() error {
	if w.conn == nil {
		return nil
	}

	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *CollectorWriter) scheduleRetryLocked() {
	if w.retryInterval <= 0 {
		w.nextRetry = time.Time{}
		return
	}
	w.nextRetry = time.Now().Add(w.retryInterval)
}

var errRetryCooldown = errors.New("logging: retry cooldown in effect")
