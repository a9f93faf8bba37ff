package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"tixgate/internal/domain/eventbus"
	"tixgate/internal/domain/gateway"
	"tixgate/internal/domain/session"
	"tixgate/internal/domain/ticket"
	"tixgate/internal/platform/storage"
)

// Decrypter resolves a scanned QR payload into a ticket record.
type Decrypter interface {
	DecryptQR(ctx context.Context, payload string, cred session.Credential) (ticket.Record, error)
}

// CredentialSource yields the current organizer credential, if any.
type CredentialSource interface {
	Current(ctx context.Context) (session.Credential, bool)
}

// Recorder appends scan attempts to the on-device audit trail.
type Recorder interface {
	Append(ctx context.Context, entry *storage.ScanLog) error
}

// Logger is the minimal logging surface the machine needs.
type Logger interface {
	InfoTag(tag, format string, args ...any)
	WarnTag(tag, format string, args ...any)
}

// Config tunes the scan session timing.
type Config struct {
	// Cooldown is the dwell after every attempt, success or failure.
	// The machine rejects new scans until it elapses.
	Cooldown time.Duration
	// VerifyTimeout bounds one verification round trip.
	VerifyTimeout time.Duration
}

// Dependencies carries the machine's collaborators. Bus and Recorder
// are optional.
type Dependencies struct {
	Decrypter   Decrypter
	Credentials CredentialSource
	Bus         *eventbus.Bus
	Recorder    Recorder
	Logger      Logger
}

// Machine is the scan session state machine. A single goroutine owns
// all verification work: Submit hands over at most one event and is
// rejected while a previous attempt is still verifying or cooling
// down, so duplicate frames from a dwelling QR code never reach the
// backend twice.
type Machine struct {
	cfg  Config
	deps Dependencies

	mu      sync.RWMutex
	state   State
	outcome Outcome

	events chan Event
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewMachine builds a stopped machine; call Start before submitting.
func NewMachine(cfg Config, deps Dependencies) (*Machine, error) {
	if deps.Decrypter == nil {
		return nil, errors.New("scan machine requires a decrypter")
	}
	if deps.Credentials == nil {
		return nil, errors.New("scan machine requires a credential source")
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 3 * time.Second
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 10 * time.Second
	}
	return &Machine{
		cfg:    cfg,
		deps:   deps,
		state:  StateIdle,
		events: make(chan Event, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Start launches the consumer goroutine.
func (m *Machine) Start() {
	go m.run()
}

// Stop tears the machine down. Idempotent; any in-flight verification
// result is discarded.
func (m *Machine) Stop() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

// Submit offers one scan event. It never blocks: while the machine is
// verifying or cooling down the event is dropped and false returned.
// Accepting an event clears the previous outcome.
func (m *Machine) Submit(ev Event) bool {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	m.mu.Lock()
	if m.state != StateIdle || m.stopped() {
		state := m.state
		m.mu.Unlock()
		m.publish(eventbus.EventScanRejected, eventbus.ScanRejectedData{
			ScannerID: ev.ScannerID,
			State:     string(state),
			At:        ev.At,
		})
		return false
	}
	m.state = StateVerifying
	m.outcome = pendingOutcome(ev.At)
	m.mu.Unlock()

	// Buffer size matches the one event the Idle gate above lets through.
	m.events <- ev
	m.publish(eventbus.EventScanAccepted, eventbus.ScanAcceptedData{
		ScannerID: ev.ScannerID,
		At:        ev.At,
	})
	return true
}

// Snapshot reports the current state and last outcome for display. The
// outcome of a finished attempt stays visible through the cooldown and
// is cleared when the next scan starts.
func (m *Machine) Snapshot() (State, Outcome) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.outcome
}

// Suspended reports whether scan input should be gated off at the
// producer. It is true from the moment an event is accepted until the
// cooldown elapses.
func (m *Machine) Suspended() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state != StateIdle
}

func (m *Machine) run() {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		case ev := <-m.events:
			m.verify(ev)
			select {
			case <-m.stop:
				return
			case <-time.After(m.cfg.Cooldown):
			}
			m.mu.Lock()
			m.state = StateIdle
			m.mu.Unlock()
			m.publish(eventbus.EventScanReady, eventbus.ScanReadyData{At: time.Now()})
		}
	}
}

func (m *Machine) verify(ev Event) {
	cred, ok := m.deps.Credentials.Current(context.Background())
	if !ok {
		m.settle(ev, failureOutcome(gateway.Unauthenticated, "not authenticated", time.Now()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.VerifyTimeout)
	record, err := m.deps.Decrypter.DecryptQR(ctx, ev.Payload, cred)
	cancel()
	if m.stopped() {
		return
	}
	if err != nil {
		class, known := gateway.ClassOf(err)
		if !known {
			class = gateway.NetworkUnavailable
		}
		m.settle(ev, failureOutcome(class, gateway.Reason(err), time.Now()))
		return
	}
	m.settle(ev, successOutcome(record, time.Now()))
}

func (m *Machine) settle(ev Event, out Outcome) {
	m.mu.Lock()
	m.state = StateCooldown
	m.outcome = out
	m.mu.Unlock()

	if m.deps.Logger != nil {
		switch out.Kind {
		case OutcomeSuccess:
			m.deps.Logger.InfoTag("scan", "ticket accepted order=%s scanner=%s", out.Ticket.OrderCode, ev.ScannerID)
		case OutcomeFailure:
			m.deps.Logger.WarnTag("scan", "scan failed scanner=%s reason=%s", ev.ScannerID, out.Reason)
		}
	}

	result := eventbus.ScanResultData{
		ScannerID: ev.ScannerID,
		Success:   out.Kind == OutcomeSuccess,
		Reason:    out.Reason,
		Ticket:    out.Ticket,
		At:        out.At,
	}
	m.publish(eventbus.EventScanResult, result)

	if m.deps.Recorder != nil {
		entry := &storage.ScanLog{
			ScannerID: ev.ScannerID,
			Outcome:   string(out.Kind),
			Reason:    out.Reason,
			ScannedAt: out.At,
		}
		if out.Ticket != nil {
			entry.OrderCode = out.Ticket.OrderCode
		}
		if err := m.deps.Recorder.Append(context.Background(), entry); err != nil && m.deps.Logger != nil {
			m.deps.Logger.WarnTag("scan", "audit append failed: %v", err)
		}
	}
}

func (m *Machine) stopped() bool {
	select {
	case <-m.stop:
		return true
	default:
		return false
	}
}

func (m *Machine) publish(topic string, payload any) {
	if m.deps.Bus != nil {
		m.deps.Bus.Publish(topic, payload)
	}
}
