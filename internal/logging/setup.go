package logging

import (
	"io"
	"log"
	"os"
)

// Setup returns a logger writing to stderr, mirrored to the TCP collector at
// addr when addr is non-empty. The returned closer is a no-op when no
// collector is configured.
func Setup(addr string) (*log.Logger, io.Closer, error) {
	if addr == "" {
		return log.New(os.Stderr, "", log.LstdFlags), nopCloser{}, nil
	}

	cw, err := NewCollectorWriter(addr)
	if err != nil {
		return nil, nil, err
	}
	return log.New(io.MultiWriter(os.Stderr, cw), "", log.LstdFlags), cw, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
