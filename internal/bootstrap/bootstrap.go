package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"tixgate/internal/domain/eventbus"
	"tixgate/internal/domain/gateway"
	"tixgate/internal/domain/scan"
	"tixgate/internal/domain/session"
	sessionstore "tixgate/internal/domain/session/store"
	"tixgate/internal/domain/stats"
	platformconfig "tixgate/internal/platform/config"
	platformerrors "tixgate/internal/platform/errors"
	platformlogging "tixgate/internal/platform/logging"
	platformstorage "tixgate/internal/platform/storage"
	httptransport "tixgate/internal/transport/http"
	httpwebapi "tixgate/internal/transport/http/webapi"
	"tixgate/internal/transport/ws"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger

	db       *gorm.DB
	scanLogs *platformstorage.ScanLogRepository

	sessionStore sessionstore.Store
	sessions     *session.Manager

	gateway *gateway.Client
	bus     *eventbus.Bus
	machine *scan.Machine
	poller  *stats.Poller
}

// Run drives the whole service lifecycle: configuration, dependency
// initialisation, servers and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.machine == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"scan machine not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	defer logger.Close()
	defer func() {
		if state.sessionStore != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := state.sessionStore.Close(closeCtx); err != nil {
				logger.WarnTag("session", "store close failed: %v", err)
			}
		}
	}()

	state.machine.Start()
	defer state.machine.Stop()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if err := startServices(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("boot", "shutdown complete")
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("boot", "initialisation graph")
	for _, step := range steps {
		if len(step.DependsOn) > 0 {
			logger.InfoTag("boot", "  %s (after %s)", step.ID, strings.Join(step.DependsOn, ", "))
			continue
		}
		logger.InfoTag("boot", "  %s", step.ID)
	}
	logger.InfoTag("boot", "starting services")
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph lists the bootstrap steps in execution order. Every step
// names the steps it depends on so a reordering mistake fails fast.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:open-database",
			Title:     "Open device database",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindStorage,
			Execute:   openDatabaseStep,
		},
		{
			ID:        "session:init-store",
			Title:     "Initialise session store",
			DependsOn: []string{"config:load", "storage:open-database"},
			Kind:      platformerrors.KindSession,
			Execute:   initSessionStoreStep,
		},
		{
			ID:        "session:init-manager",
			Title:     "Initialise session manager",
			DependsOn: []string{"session:init-store"},
			Kind:      platformerrors.KindSession,
			Execute:   initSessionManagerStep,
		},
		{
			ID:        "gateway:init-client",
			Title:     "Initialise backend gateway",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindGateway,
			Execute:   initGatewayStep,
		},
		{
			ID:      "eventbus:init",
			Title:   "Initialise event bus",
			Kind:    platformerrors.KindBootstrap,
			Execute: initEventBusStep,
		},
		{
			ID:        "scan:init-machine",
			Title:     "Initialise scan machine",
			DependsOn: []string{"session:init-manager", "gateway:init-client", "eventbus:init", "storage:open-database"},
			Kind:      platformerrors.KindScan,
			Execute:   initScanMachineStep,
		},
		{
			ID:        "stats:init-poller",
			Title:     "Initialise stats poller",
			DependsOn: []string{"gateway:init-client"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initStatsPollerStep,
		},
	}
}

func loadConfigStep(ctx context.Context, state *appState) error {
	result, err := platformconfig.NewLoader("").Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(ctx context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger
	if state.configPath != "" {
		logger.InfoTag("boot", "configuration loaded from %s", state.configPath)
	} else {
		logger.InfoTag("boot", "no config file found, using defaults")
	}
	return nil
}

func openDatabaseStep(ctx context.Context, state *appState) error {
	db, err := platformstorage.Open(state.config.Session.Store.SQLite.DSN)
	if err != nil {
		return err
	}
	state.db = db
	state.scanLogs = platformstorage.NewScanLogRepository(db)
	return nil
}

func initSessionStoreStep(ctx context.Context, state *appState) error {
	cfg := state.config.Session.Store
	storeCfg := sessionstore.Config{
		Driver: cfg.Driver,
		TTL:    cfg.TTL,
		SQLite: &sessionstore.SQLiteConfig{DSN: cfg.SQLite.DSN},
	}
	if cfg.Redis.Addr != "" {
		storeCfg.Redis = &sessionstore.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}
	}

	st, err := sessionstore.New(storeCfg, sessionstore.Dependencies{SQLiteDB: state.db})
	if err != nil {
		return err
	}
	state.sessionStore = st
	return nil
}

func initSessionManagerStep(ctx context.Context, state *appState) error {
	manager, err := session.NewManager(state.sessionStore, state.logger)
	if err != nil {
		return err
	}
	state.sessions = manager
	return nil
}

func initGatewayStep(ctx context.Context, state *appState) error {
	client, err := gateway.New(gateway.Config{
		BaseURL:   state.config.Backend.BaseURL,
		Timeout:   state.config.Backend.Timeout,
		UserAgent: state.config.Backend.UserAgent,
	}, state.logger)
	if err != nil {
		return err
	}
	state.gateway = client
	return nil
}

func initEventBusStep(ctx context.Context, state *appState) error {
	state.bus = eventbus.New()
	return nil
}

func initScanMachineStep(ctx context.Context, state *appState) error {
	machine, err := scan.NewMachine(scan.Config{
		Cooldown:      state.config.Scan.Cooldown,
		VerifyTimeout: state.config.Scan.VerifyTimeout,
	}, scan.Dependencies{
		Decrypter:   state.gateway,
		Credentials: state.sessions,
		Bus:         state.bus,
		Recorder:    state.scanLogs,
		Logger:      state.logger,
	})
	if err != nil {
		return err
	}
	state.machine = machine
	return nil
}

func initStatsPollerStep(ctx context.Context, state *appState) error {
	state.poller = stats.NewPoller(state.gateway)
	return nil
}

func startServices(state *appState, g *errgroup.Group, groupCtx context.Context) error {
	var feed *ws.Server
	if state.config.Scanner.Enabled {
		feed = startScannerServer(state, g, groupCtx)
	}

	if _, err := startHTTPServer(state, feed, g, groupCtx); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	return nil
}

func startScannerServer(state *appState, g *errgroup.Group, groupCtx context.Context) *ws.Server {
	cfg := state.config.Scanner
	server := ws.NewServer(ws.ServerConfig{
		Addr:             cfg.IP + ":" + strconv.Itoa(cfg.Port),
		HandshakeTimeout: cfg.HandshakeTimeout,
	}, state.machine, ws.NewHub(state.logger), state.bus, state.logger)

	g.Go(func() error {
		defer func() {
			if err := server.Stop(); err != nil {
				state.logger.WarnTag("scanner", "feed stop failed: %v", err)
			}
		}()
		return server.Start(groupCtx)
	})
	return server
}

func startHTTPServer(state *appState, feed *ws.Server, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httptransport.APIResponse{
			Success: false,
			Data:    gin.H{},
			Message: "not found",
			Code:    http.StatusNotFound,
		})
	})

	deps := httpwebapi.Dependencies{
		Logger:   logger,
		Sessions: state.sessions,
		Backend:  state.gateway,
		Machine:  state.machine,
		Poller:   state.poller,
		Audit:    state.scanLogs,
		Bus:      state.bus,
	}
	if feed != nil {
		deps.ScannerCount = feed.Count
	}

	consoleService, err := httpwebapi.NewService(deps)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "webapi:new-service", "failed to create console service", err)
	}
	if err := consoleService.Register(groupCtx, httpRouter.API); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "webapi:register", "failed to register console routes", err)
	}

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("http", "console listening on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("http", "shutdown failed: %v", err)
			} else {
				logger.InfoTag("http", "console stopped")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("http", "console failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("boot", "signal received, shutting down: %v", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("boot", "shutdown finished with error: %v", err)
			return err
		}
		logger.InfoTag("boot", "all services stopped")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("shutdown timed out")
		logger.ErrorTag("boot", "shutdown timed out, forcing exit")
		return timeoutErr
	}
	return nil
}
