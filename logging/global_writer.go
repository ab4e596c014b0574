package logging

import (
	"io"
	"os"
	"sync"
)

// globalWriter delegates to a writer that can be swapped at runtime.
type globalWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (gw *globalWriter) Write(p []byte) (int, error) {
	gw.mu.RLock()
	defer gw.mu.RUnlock()
	return gw.w.Write(p)
}

func (gw *globalWriter) set(w io.Writer) io.Writer {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	prev := gw.w
	gw.w = w
	return prev
}

var stderrSink = &globalWriter{w: os.Stderr}

// SetStderrOutput redirects everything loggers would write to stderr and
// returns the previous destination. The interface points it at io.Discard
// while it owns the terminal.
func SetStderrOutput(w io.Writer) io.Writer {
	return stderrSink.set(w)
}
