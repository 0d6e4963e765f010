package logging

import (
	"io"
	"os"
	"sync"
)

// stderrSink is the stderr destination shared by every component logger.
// Loggers write to the sink instead of os.Stderr so the editor can mute all
// of them while it owns the terminal.
type stderrSink struct {
	mu     sync.RWMutex
	target io.Writer
}

func (s *stderrSink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target.Write(p)
}

func (s *stderrSink) redirect(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	if w == io.Writer(s) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = w
}

var sink = &stderrSink{target: os.Stderr}

// SetGlobalOutput redirects the stderr output of every logger. nil restores
// os.Stderr; passing the sink itself is ignored.
func SetGlobalOutput(w io.Writer) {
	sink.redirect(w)
}

// GetGlobalOutput returns the shared sink loggers write their stderr output to.
func GetGlobalOutput() io.Writer {
	return sink
}
