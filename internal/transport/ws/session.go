package ws

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"tixgate/internal/domain/scan"
	"tixgate/internal/platform/logging"
)

const defaultCloseTimeout = 5 * time.Second

// Submitter is the scan machine surface a scanner session drives.
type Submitter interface {
	Submit(ev scan.Event) bool
	Suspended() bool
}

// Session encapsulates the lifecycle of one connected scanner device.
type Session struct {
	id        string
	scannerID string
	conn      *Connection
	machine   Submitter
	logger    *logging.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc

	closed atomic.Bool
}

// NewSession constructs a managed scanner session.
func NewSession(parent context.Context, scannerID string, conn *Connection, machine Submitter, logger *logging.Logger) *Session {
	sessionCtx, cancel := context.WithCancelCause(parent)
	return &Session{
		id:        conn.GetID(),
		scannerID: scannerID,
		conn:      conn,
		machine:   machine,
		logger:    logger,
		ctx:       sessionCtx,
		cancel:    cancel,
	}
}

// Context returns the session context.
func (s *Session) Context() context.Context {
	return s.ctx
}

// ID exposes the session identifier.
func (s *Session) ID() string {
	return s.id
}

// ScannerID exposes the device identifier the scanner announced.
func (s *Session) ScannerID() string {
	return s.scannerID
}

// Send writes one frame to this scanner.
func (s *Session) Send(frame Frame) error {
	return s.conn.WriteFrame(frame)
}

// Run drives the read loop until the connection drops, then invokes
// onDone with the terminal error.
func (s *Session) Run(onDone func(error)) {
	var runErr error
	defer func() {
		s.Close(runErr)
		if onDone != nil {
			onDone(runErr)
		}
	}()

	hello := Frame{Type: FrameHello, ScannerID: s.scannerID, At: time.Now()}
	if s.machine.Suspended() {
		// A verification is already running; gate the new device too.
		hello.State = string(scan.StateVerifying)
	}
	if err := s.Send(hello); err != nil {
		runErr = err
		return
	}

	for {
		messageType, payload, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				runErr = err
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		s.handle(payload)
	}
}

func (s *Session) handle(payload []byte) {
	frame, err := decodeFrame(payload)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnTag("scanner", "session %s sent malformed frame: %v", s.id, err)
		}
		return
	}

	switch frame.Type {
	case FrameScan:
		s.submit(frame)
	case FramePing:
		_ = s.Send(Frame{Type: FramePong, At: time.Now()})
	default:
		if s.logger != nil {
			s.logger.DebugTag("scanner", "session %s sent unknown frame %q", s.id, frame.Type)
		}
	}
}

func (s *Session) submit(frame Frame) {
	at := frame.At
	if at.IsZero() {
		at = time.Now()
	}
	ev := scan.Event{
		ScannerID: s.scannerID,
		Payload:   frame.Payload,
		At:        at,
	}
	if s.machine.Submit(ev) {
		_ = s.Send(Frame{Type: FrameAccepted, At: at})
		return
	}
	// Busy or cooling down; the device keeps its feed suspended.
	_ = s.Send(Frame{Type: FrameRejected, At: at})
}

// Close attempts to gracefully terminate the session.
func (s *Session) Close(reason error) {
	if reason == nil {
		reason = ErrSessionShutdown
	}

	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	if s.cancel != nil {
		s.cancel(reason)
	}

	if s.conn != nil {
		if err := s.conn.Close(); err != nil && s.logger != nil {
			s.logger.WarnTag("scanner", "session %s connection close failed: %v", s.id, err)
		}
	}
}
