package session

import (
	"context"
	"errors"
	"time"

	"tixgate/internal/domain/session/model"
	"tixgate/internal/domain/session/store"
)

// Credential re-exports the shared session entity for callers.
type Credential = model.Credential

// RoleOrganizer re-exports the allow-listed role name.
const RoleOrganizer = model.RoleOrganizer

// Logger is the minimal logging surface the manager needs.
type Logger interface {
	InfoTag(tag, format string, args ...any)
	WarnTag(tag, format string, args ...any)
}

// Manager is the single writer over the session store. Readers get a
// snapshot from Current and must re-read rather than cache: the
// credential can be replaced or cleared underneath them at any time.
type Manager struct {
	store  store.Store
	logger Logger
}

// NewManager wires a Manager over the given store.
func NewManager(st store.Store, logger Logger) (*Manager, error) {
	if st == nil {
		return nil, errors.New("session manager requires a store")
	}
	return &Manager{
		store:  st,
		logger: logger,
	}, nil
}

// Set persists a freshly issued credential.
func (m *Manager) Set(ctx context.Context, cred Credential) error {
	if cred.AccessToken == "" {
		return errors.New("credential requires an access token")
	}
	if err := m.store.Save(ctx, cred); err != nil {
		return err
	}
	if m.logger != nil {
		m.logger.InfoTag("session", "credential stored for %s role %s", cred.UserName, cred.Role)
	}
	return nil
}

// Current re-reads the stored credential. A credential whose token has
// expired is reported as absent so guarded calls fail fast.
func (m *Manager) Current(ctx context.Context) (Credential, bool) {
	cred, present, err := m.store.Load(ctx)
	if err != nil {
		if m.logger != nil {
			m.logger.WarnTag("session", "credential load failed: %v", err)
		}
		return Credential{}, false
	}
	if !present {
		return Credential{}, false
	}
	if cred.Expired(time.Now()) {
		return Credential{}, false
	}
	return cred, true
}

// Clear drops the credential. Clearing an already-empty session is a no-op.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	if m.logger != nil {
		m.logger.InfoTag("session", "credential cleared")
	}
	return nil
}

// Close releases the underlying store.
func (m *Manager) Close(ctx context.Context) error {
	return m.store.Close(ctx)
}
