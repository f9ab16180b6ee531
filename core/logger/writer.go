package logger

import (
	"errors"
	"io"
	"sync"
)

// errWriterClosed is returned by writes issued after Close.
var errWriterClosed = errors.New("logger: writer closed")

type writeOp struct {
	line []byte
	ack  chan error
}

// asyncWriter serializes log lines to its sinks from a single goroutine so
// callers never block on slow output. Flush requests travel through the
// same queue and therefore see every line written before them.
type asyncWriter struct {
	sinks []io.Writer
	ops   chan writeOp
	done  chan struct{}

	mu     sync.RWMutex // guards closed against sends racing Close
	closed bool

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(sinks []io.Writer, queue int) *asyncWriter {
	if queue <= 0 {
		queue = 256
	}
	w := &asyncWriter{
		ops:  make(chan writeOp, queue),
		done: make(chan struct{}),
	}
	for _, s := range sinks {
		if s != nil {
			w.sinks = append(w.sinks, s)
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for op := range w.ops {
		if op.ack != nil {
			op.ack <- w.firstErr()
			continue
		}
		for _, s := range w.sinks {
			if _, err := s.Write(op.line); err != nil {
				w.setErr(err)
			}
		}
	}
}

// Write queues a copy of p.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)
	return w.send(writeOp{line: line})
}

// Flush waits until every line queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	if err := w.send(writeOp{ack: ack}); err != nil {
		return err
	}
	return <-ack
}

// Close drains the queue and stops the writer goroutine.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ops)
	}
	w.mu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) send(op writeOp) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.ops <- op
	return nil
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}
