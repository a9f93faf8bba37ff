package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tixgate/internal/domain/eventbus"
	"tixgate/internal/platform/logging"
)

// ServerConfig stores the settings required to expose the scanner feed.
type ServerConfig struct {
	Addr             string
	Path             string
	HandshakeTimeout time.Duration
}

// Server accepts scanner websocket connections, feeds their scans into
// the machine and mirrors the machine's gate back as suspend and
// resume frames.
type Server struct {
	cfg      ServerConfig
	hub      *Hub
	machine  Submitter
	bus      *eventbus.Bus
	logger   *logging.Logger
	upgrader *websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer builds a scanner feed server. The bus is optional; without
// it the feed still accepts scans but sends no broadcast frames.
func NewServer(cfg ServerConfig, machine Submitter, hub *Hub, bus *eventbus.Bus, logger *logging.Logger) *Server {
	if cfg.Path == "" {
		cfg.Path = "/scanner"
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}

	return &Server{
		cfg:     cfg,
		hub:     hub,
		machine: machine,
		bus:     bus,
		logger:  logger,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start binds the bus subscriptions and serves websocket upgrades until
// the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.httpSrv != nil {
		return nil
	}
	if err := s.bindBus(); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleUpgrade)

	s.httpSrv = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: mux,
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeoutCause(context.Background(), defaultCloseTimeout, context.Cause(ctx))
			defer cancel()
			_ = s.httpSrv.Shutdown(shutdownCtx)
		}()
	}

	if s.logger != nil {
		s.logger.InfoTag("scanner", "feed listening on %s%s", s.cfg.Addr, s.cfg.Path)
	}

	err := s.httpSrv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the feed server and active sessions.
func (s *Server) Stop() error {
	if s.httpSrv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeoutCause(context.Background(), defaultCloseTimeout, ErrSessionShutdown)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		return err
	}

	s.hub.CloseAll(ErrSessionShutdown)
	s.httpSrv = nil
	return nil
}

// Count exposes the number of connected scanners.
func (s *Server) Count() int {
	return s.hub.Count()
}

func (s *Server) handleUpgrade(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	handshakeCtx, cancel := context.WithTimeoutCause(ctx, s.cfg.HandshakeTimeout, ErrHandshakeTimeout)
	defer cancel()
	req = req.WithContext(handshakeCtx)

	socket, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorTag("scanner", "handshake failed: %v", err)
		}
		return
	}

	scannerID, clientID := resolveIdentifiers(req)
	if s.logger != nil {
		s.logger.InfoTag("scanner", "device connected scanner=%s client=%s", scannerID, clientID)
	}

	conn := NewConnection(clientID, socket)
	session := NewSession(handshakeCtx, scannerID, conn, s.machine, s.logger)
	s.hub.Register(session)

	go session.Run(func(runErr error) {
		s.hub.Unregister(session.ID())
		if runErr != nil && s.logger != nil {
			s.logger.WarnTag("scanner", "session %s ended: %v", session.ID(), runErr)
		}
	})
}

// bindBus mirrors machine transitions onto the feed: an accepted scan
// suspends every device, the verdict is broadcast, and return to idle
// resumes them.
func (s *Server) bindBus() error {
	if s.bus == nil {
		return nil
	}
	if err := s.bus.Subscribe(eventbus.EventScanAccepted, func(data eventbus.ScanAcceptedData) {
		s.hub.Broadcast(Frame{Type: FrameSuspend, At: data.At})
	}); err != nil {
		return err
	}
	if err := s.bus.Subscribe(eventbus.EventScanResult, func(data eventbus.ScanResultData) {
		s.hub.Broadcast(Frame{
			Type:    FrameResult,
			Success: &data.Success,
			Reason:  data.Reason,
			Ticket:  data.Ticket,
			At:      data.At,
		})
	}); err != nil {
		return err
	}
	return s.bus.Subscribe(eventbus.EventScanReady, func(data eventbus.ScanReadyData) {
		s.hub.Broadcast(Frame{Type: FrameResume, At: data.At})
	})
}

func resolveIdentifiers(req *http.Request) (string, string) {
	scannerID := req.Header.Get("Scanner-Id")
	if scannerID == "" {
		scannerID = req.URL.Query().Get("scanner-id")
	}
	if scannerID == "" {
		scannerID = "scanner-" + uuid.NewString()[:8]
	}

	clientID := req.Header.Get("Client-Id")
	if clientID == "" {
		clientID = req.URL.Query().Get("client-id")
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return scannerID, clientID
}
