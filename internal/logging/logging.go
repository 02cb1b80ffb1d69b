// Package logging wires the apex/log handlers used by the server. Log
// delivery is asynchronous and lossy under pressure so that an unavailable
// sink can never slow down or fail a resolution.
package logging

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/pkg/errors"
)

// Async is a log.Handler that hands entries to a background goroutine over a
// bounded channel. When the channel is full the entry is dropped rather than
// blocking the caller.
type Async struct {
	inner   log.Handler
	entries chan *log.Entry
	done    chan struct{}
}

// NewAsync wraps inner with an asynchronous buffer of the given size.
func NewAsync(inner log.Handler, size int) *Async {
	h := &Async{
		inner:   inner,
		entries: make(chan *log.Entry, size),
		done:    make(chan struct{}),
	}
	go h.run()
	return h
}

// HandleLog implements log.Handler. It never blocks and never returns an
// error to the logging call site.
func (h *Async) HandleLog(e *log.Entry) error {
	select {
	case h.entries <- e:
	default:
		// sink is behind; drop the entry
	}
	return nil
}

// Close drains buffered entries and stops the background goroutine.
func (h *Async) Close() {
	close(h.entries)
	<-h.done
}

func (h *Async) run() {
	defer close(h.done)
	for e := range h.entries {
		h.inner.HandleLog(e)
	}
}

// Setup configures the process-wide logger. With a logFile, entries go to it
// as JSON lines through an Async handler; otherwise the CLI handler writes
// to stderr. The returned closer flushes the async buffer and is a no-op in
// terminal mode.
func Setup(verbose, quiet bool, logFile string) (func(), error) {
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if logFile == "" {
		log.SetHandler(cli.Default)
		return func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file: %s", logFile)
	}

	h := NewAsync(json.New(f), 256)
	log.SetHandler(h)
	return func() {
		h.Close()
		f.Close()
	}, nil
}
