package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"servctl/pkg/logging"
)

// StreamState is the lifecycle state of a StreamSession.
type StreamState int

const (
	StreamClosed StreamState = iota
	StreamConnecting
	StreamOpen
	StreamClosing
)

func (s StreamState) String() string {
	switch s {
	case StreamClosed:
		return "closed"
	case StreamConnecting:
		return "connecting"
	case StreamOpen:
		return "open"
	case StreamClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// CloseReason says why a StreamSession was closed.
type CloseReason int

const (
	ReasonStopped CloseReason = iota + 1
	ReasonDeactivated
	ReasonError
	ReasonRemoteClosed
)

func (r CloseReason) String() string {
	switch r {
	case ReasonStopped:
		return "stopped"
	case ReasonDeactivated:
		return "deactivated"
	case ReasonError:
		return "error"
	case ReasonRemoteClosed:
		return "remote closed"
	default:
		return "unknown"
	}
}

const (
	lineConnecting = "--- connecting to log stream... ---"
	lineConnected  = "--- log stream connected ---"
)

func terminalLine(reason CloseReason, err error) string {
	switch reason {
	case ReasonStopped:
		return "--- server stopped, log stream closed ---"
	case ReasonDeactivated:
		return "--- console detached, log stream closed ---"
	case ReasonRemoteClosed:
		return "--- log stream closed by server ---"
	default:
		if err != nil {
			return fmt.Sprintf("--- log stream error: %v ---", err)
		}
		return "--- log stream error ---"
	}
}

// StreamOption configures a StreamSession.
type StreamOption func(*StreamSession)

// WithCapacity bounds the session's log buffer. 0 keeps every line.
func WithCapacity(n int) StreamOption {
	return func(s *StreamSession) {
		s.buf = NewLogBuffer(n)
	}
}

// WithNotify registers a callback for every state change and appended line.
// It is called without any session lock held.
func WithNotify(fn func()) StreamOption {
	return func(s *StreamSession) {
		s.notify = fn
	}
}

// WithCloseHook registers a callback run once after the session closed.
func WithCloseHook(fn func(reason CloseReason, err error)) StreamOption {
	return func(s *StreamSession) {
		s.onClose = fn
	}
}

// StreamSession is one log stream connection and its buffer. A session is
// opened at most once; after it closes its buffer is frozen and a new
// session is needed to stream again.
type StreamSession struct {
	id        string
	processID string
	dialer    StreamDialer
	buf       *LogBuffer
	notify    func()
	onClose   func(CloseReason, error)

	mu       sync.Mutex
	state    StreamState
	opened   bool
	reason   CloseReason
	closeErr error
	conn     LogConn
	cancel   context.CancelFunc
}

// NewStreamSession creates a Closed session for processID.
func NewStreamSession(processID string, dialer StreamDialer, opts ...StreamOption) *StreamSession {
	s := &StreamSession{
		id:        uuid.NewString(),
		processID: processID,
		dialer:    dialer,
		buf:       NewLogBuffer(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID is a unique id for this session, used in logs.
func (s *StreamSession) ID() string { return s.id }

// Buffer returns the session's log buffer.
func (s *StreamSession) Buffer() *LogBuffer { return s.buf }

// State returns the current lifecycle state.
func (s *StreamSession) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CloseReason returns why the session closed and the error behind it, if any.
func (s *StreamSession) CloseReason() (CloseReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason, s.closeErr
}

// Open moves the session to Connecting and dials in the background. It
// reports false, doing nothing, if the session was already opened.
func (s *StreamSession) Open(ctx context.Context) bool {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return false
	}
	s.opened = true
	s.state = StreamConnecting
	s.buf.Append(lineConnecting)
	dialCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	logging.Debug("Stream", "session %s connecting to %s", s.id, s.processID)
	s.changed()
	go s.dial(dialCtx)
	return true
}

func (s *StreamSession) dial(ctx context.Context) {
	conn, err := s.dialer.OpenLogStream(ctx, s.processID)

	s.mu.Lock()
	if s.state != StreamConnecting {
		// Closed while dialing.
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.close(ReasonError, err)
		return
	}
	s.conn = conn
	s.state = StreamOpen
	s.buf.Append(lineConnected)
	s.mu.Unlock()

	logging.Info("Stream", "session %s connected to %s", s.id, s.processID)
	s.changed()
	s.read(conn)
}

func (s *StreamSession) read(conn LogConn) {
	for {
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.close(ReasonRemoteClosed, nil)
			} else {
				s.close(ReasonError, err)
			}
			return
		}

		s.mu.Lock()
		if s.state != StreamOpen {
			s.mu.Unlock()
			return
		}
		s.buf.Append(line)
		s.mu.Unlock()
		s.changed()
	}
}

// Close appends the terminal line for reason, freezes the buffer and
// releases the connection. It reports false if the session was not live.
func (s *StreamSession) Close(reason CloseReason) bool {
	return s.close(reason, nil)
}

func (s *StreamSession) close(reason CloseReason, cause error) bool {
	s.mu.Lock()
	if !s.opened || s.state == StreamClosed || s.state == StreamClosing {
		s.mu.Unlock()
		return false
	}
	s.state = StreamClosing
	s.reason = reason
	s.closeErr = cause
	s.buf.Append(terminalLine(reason, cause))
	s.buf.Freeze()
	conn, cancel := s.conn, s.cancel
	s.conn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logging.Debug("Stream", "session %s close: %v", s.id, err)
		}
	}

	s.mu.Lock()
	s.state = StreamClosed
	s.mu.Unlock()

	if cause != nil {
		logging.Warn("Stream", "session %s for %s closed (%s): %v", s.id, s.processID, reason, cause)
	} else {
		logging.Info("Stream", "session %s for %s closed (%s)", s.id, s.processID, reason)
	}
	s.changed()
	if s.onClose != nil {
		s.onClose(reason, cause)
	}
	return true
}

func (s *StreamSession) changed() {
	if s.notify != nil {
		s.notify()
	}
}
