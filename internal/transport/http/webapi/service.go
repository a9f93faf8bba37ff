package webapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	httptransport "tixgate/internal/transport/http"

	"tixgate/internal/domain/company"
	"tixgate/internal/domain/event"
	"tixgate/internal/domain/eventbus"
	"tixgate/internal/domain/gateway"
	"tixgate/internal/domain/scan"
	"tixgate/internal/domain/session"
	"tixgate/internal/domain/stats"
	"tixgate/internal/platform/errors"
	"tixgate/internal/platform/logging"
	"tixgate/internal/platform/storage"
)

// Backend is the ticketing platform surface the console proxies.
type Backend interface {
	Login(ctx context.Context, userName, password string) (session.Credential, error)
	MyEventActivities(ctx context.Context, cred session.Credential) ([]event.Event, error)
	Event(ctx context.Context, eventID int64) (event.Detail, error)
	Company(ctx context.Context, companyID int64) (company.Company, error)
	CompaniesByUser(ctx context.Context, userName string) ([]company.Company, error)
}

// Machine is the scan session surface the console exposes.
type Machine interface {
	Submit(ev scan.Event) bool
	Snapshot() (scan.State, scan.Outcome)
}

// AuditLog reads the on-device scan trail.
type AuditLog interface {
	Recent(ctx context.Context, limit int) ([]storage.ScanLog, error)
}

// Service is the operator console HTTP surface.
type Service struct {
	logger   *logging.Logger
	sessions *session.Manager
	backend  Backend
	machine  Machine
	poller   *stats.Poller
	audit    AuditLog
	bus      *eventbus.Bus

	// scannerCount reports connected feed devices for health checks.
	scannerCount func() int
}

// Dependencies wires the console service. Audit, bus and scannerCount
// are optional.
type Dependencies struct {
	Logger       *logging.Logger
	Sessions     *session.Manager
	Backend      Backend
	Machine      Machine
	Poller       *stats.Poller
	Audit        AuditLog
	Bus          *eventbus.Bus
	ScannerCount func() int
}

// NewService creates the console service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Sessions == nil {
		return nil, errors.Wrap(errors.KindConfig, "webapi.new", "session manager is required", nil)
	}
	if deps.Backend == nil {
		return nil, errors.Wrap(errors.KindConfig, "webapi.new", "backend is required", nil)
	}
	if deps.Machine == nil {
		return nil, errors.Wrap(errors.KindConfig, "webapi.new", "scan machine is required", nil)
	}
	if deps.Poller == nil {
		return nil, errors.Wrap(errors.KindConfig, "webapi.new", "stats poller is required", nil)
	}

	return &Service{
		logger:       deps.Logger,
		sessions:     deps.Sessions,
		backend:      deps.Backend,
		machine:      deps.Machine,
		poller:       deps.Poller,
		audit:        deps.Audit,
		bus:          deps.Bus,
		scannerCount: deps.ScannerCount,
	}, nil
}

// Register mounts the console routes on the group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/auth/login", s.handleLogin)
	router.POST("/auth/logout", s.handleLogout)
	router.GET("/session", s.handleSession)

	router.GET("/events", s.handleEvents)
	router.GET("/events/:id", s.handleEventDetail)
	router.GET("/companies/:id", s.handleCompany)
	router.GET("/companies/by-user/:userName", s.handleCompaniesByUser)
	router.GET("/stats/:eventActivityId", s.handleStats)

	router.POST("/scan", s.handleScanSubmit)
	router.GET("/scan/state", s.handleScanState)
	router.GET("/scan/log", s.handleScanLog)

	router.GET("/healthz", s.handleHealthz)

	if s.logger != nil {
		s.logger.InfoTag("http", "console routes registered")
	}
	return nil
}

type loginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "userName and password are required", nil)
		return
	}

	cred, err := s.backend.Login(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		s.respondGatewayError(c, err)
		return
	}
	if err := s.sessions.Set(c.Request.Context(), cred); err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to persist session", nil)
		return
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.EventSessionLogin, eventbus.SessionEventData{
			UserName: cred.UserName,
			Role:     cred.Role,
			At:       time.Now(),
		})
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"userName": cred.UserName,
		"role":     cred.Role,
	}, "logged in")
}

func (s *Service) handleLogout(c *gin.Context) {
	cred, _ := s.sessions.Current(c.Request.Context())
	if err := s.sessions.Clear(c.Request.Context()); err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to clear session", nil)
		return
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.EventSessionLogout, eventbus.SessionEventData{
			UserName: cred.UserName,
			At:       time.Now(),
		})
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "logged out")
}

func (s *Service) handleSession(c *gin.Context) {
	cred, ok := s.sessions.Current(c.Request.Context())
	if !ok {
		httptransport.RespondSuccess(c, http.StatusOK, gin.H{"authenticated": false}, "")
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"authenticated": true,
		"userName":      cred.UserName,
		"role":          cred.Role,
	}, "")
}

func (s *Service) handleEvents(c *gin.Context) {
	cred, ok := s.sessions.Current(c.Request.Context())
	if !ok {
		httptransport.RespondError(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}

	events, err := s.backend.MyEventActivities(c.Request.Context(), cred)
	if err != nil {
		s.respondGatewayError(c, err)
		return
	}

	if want := c.Query("status"); want != "" {
		events = event.FilterByStatus(events, event.Status(want), time.Now())
	}
	httptransport.RespondSuccess(c, http.StatusOK, events, "")
}

func (s *Service) handleEventDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := s.backend.Event(c.Request.Context(), id)
	if err != nil {
		s.respondGatewayError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, detail, "")
}

func (s *Service) handleCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := s.backend.Company(c.Request.Context(), id)
	if err != nil {
		s.respondGatewayError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, result, "")
}

func (s *Service) handleCompaniesByUser(c *gin.Context) {
	userName := c.Param("userName")
	if userName == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "userName is required", nil)
		return
	}
	companies, err := s.backend.CompaniesByUser(c.Request.Context(), userName)
	if err != nil {
		s.respondGatewayError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, companies, "")
}

func (s *Service) handleStats(c *gin.Context) {
	id, ok := pathID(c, "eventActivityId")
	if !ok {
		return
	}
	snapshot, err := s.poller.Fetch(c.Request.Context(), id)
	if err != nil {
		s.respondGatewayError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, snapshot, "")
}

type scanRequest struct {
	ScannerID string `json:"scannerId"`
	Payload   string `json:"payload" binding:"required"`
}

func (s *Service) handleScanSubmit(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "payload is required", nil)
		return
	}
	if req.ScannerID == "" {
		req.ScannerID = "console"
	}

	accepted := s.machine.Submit(scan.Event{
		ScannerID: req.ScannerID,
		Payload:   req.Payload,
		At:        time.Now(),
	})
	if !accepted {
		state, _ := s.machine.Snapshot()
		httptransport.RespondError(c, http.StatusConflict, "scan in progress", gin.H{"state": state})
		return
	}
	httptransport.RespondSuccess(c, http.StatusAccepted, gin.H{"accepted": true}, "")
}

func (s *Service) handleScanState(c *gin.Context) {
	state, outcome := s.machine.Snapshot()
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"state":   state,
		"outcome": outcome,
	}, "")
}

func (s *Service) handleScanLog(c *gin.Context) {
	if s.audit == nil {
		httptransport.RespondError(c, http.StatusNotFound, "audit log not enabled", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := s.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to read scan log", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, entries, "")
}

func (s *Service) handleHealthz(c *gin.Context) {
	_, authenticated := s.sessions.Current(c.Request.Context())
	data := gin.H{
		"status":        "ok",
		"authenticated": authenticated,
	}
	if s.scannerCount != nil {
		data["scanners"] = s.scannerCount()
	}
	httptransport.RespondSuccess(c, http.StatusOK, data, "")
}

// respondGatewayError maps the gateway failure taxonomy onto console
// status codes.
func (s *Service) respondGatewayError(c *gin.Context, err error) {
	class, known := gateway.ClassOf(err)
	if !known {
		httptransport.RespondError(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	switch class {
	case gateway.Unauthenticated:
		httptransport.RespondError(c, http.StatusUnauthorized, gateway.Reason(err), nil)
	case gateway.ServerRejected:
		httptransport.RespondError(c, http.StatusBadRequest, gateway.Reason(err), nil)
	default:
		httptransport.RespondError(c, http.StatusBadGateway, gateway.Reason(err), nil)
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		httptransport.RespondError(c, http.StatusBadRequest, name+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
