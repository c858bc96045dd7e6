package logging

import (
	"io"
	"os"
	"sync"
)

// swapWriter forwards writes to a target that can be replaced while loggers
// hold on to it.
type swapWriter struct {
	mu     sync.RWMutex
	target io.Writer
}

func (s *swapWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target.Write(p)
}

func (s *swapWriter) swap(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	s.mu.Lock()
	s.target = w
	s.mu.Unlock()
}

var stderrSink = &swapWriter{target: os.Stderr}

// SetGlobalOutput redirects every logger that writes to stderr. The
// explorer points it at io.Discard while the alt screen is active. A nil
// writer discards.
func SetGlobalOutput(w io.Writer) {
	stderrSink.swap(w)
}

// GetGlobalOutput returns the writer loggers use in place of stderr.
func GetGlobalOutput() io.Writer {
	return stderrSink
}
