package window

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrUnsupported means the backend or platform cannot perform the request.
	ErrUnsupported = errors.New("operation not supported by backend")
	// ErrInvalidMonitor means a monitor id was outside [0, MonitorCount()).
	ErrInvalidMonitor = errors.New("invalid monitor id")
	// ErrHandleUnavailable means the native window does not exist (yet).
	ErrHandleUnavailable = errors.New("window handle unavailable")
	// ErrClosed means the call was made after the window was closed.
	ErrClosed = errors.New("window closed")
)

// OpError records the operation that failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// ErrorReporter is implemented by backends that record the failures they
// absorb. Err returns the failures recorded since the previous call and
// forgets them.
type ErrorReporter interface {
	Err() error
}

// Check returns the errors w recorded since the last Check, or nil when w
// does not report errors.
func Check(w any) error {
	if r, ok := w.(ErrorReporter); ok {
		return r.Err()
	}
	return nil
}

// maxRecorded bounds the errors kept between two Err calls.
const maxRecorded = 32

// errorLog is embedded by backends to implement ErrorReporter.
type errorLog struct {
	mu   sync.Mutex
	errs []error
	log  *zerolog.Logger
}

func (l *errorLog) record(op string, err error) {
	if err == nil {
		return
	}
	opErr := &OpError{Op: op, Err: err}
	if l.log != nil {
		l.log.Warn().Str("op", op).Err(err).Msg("window operation failed")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errs) >= maxRecorded {
		l.errs = l.errs[1:]
	}
	l.errs = append(l.errs, opErr)
}

// Err implements ErrorReporter.
func (l *errorLog) Err() error {
	l.mu.Lock()
	errs := l.errs
	l.errs = nil
	l.mu.Unlock()
	return errors.Join(errs...)
}
