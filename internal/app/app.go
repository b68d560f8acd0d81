package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"visionreporter/internal/config"
	"visionreporter/internal/logger"
	"visionreporter/internal/model"
	"visionreporter/internal/repository/sqlite"
	"visionreporter/internal/route"
	"visionreporter/internal/service/location"
	"visionreporter/internal/service/report"
	"visionreporter/internal/service/session"
	"visionreporter/internal/service/websocket"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	cases    *sqlite.CaseRepository
	drafter  report.Drafter
	hub      *websocket.HubService
	sessions *session.Manager
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	cases := sqlite.NewCaseRepository(db)

	var drafter report.Drafter
	if cfg.ReportEndpoint != "" {
		drafter = report.NewEndpointDrafter(cfg.ReportEndpoint, cfg.HTTPTimeout, log)
	} else {
		drafter = report.NewOpenAIDrafter(cfg.OpenAIKey, cfg.OpenAIURL, cfg.ReportModel, cfg.HTTPTimeout, log)
	}

	var geocoder location.Geocoder
	if cfg.GeocoderURL != "" {
		geocoder = location.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.HTTPTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHubService(log)

	sessions := session.NewManager(ctx, session.Dependencies{
		Devices:         gocvDevices{config: cfg, logger: log},
		Cases:           cases,
		Drafter:         drafter,
		Geocoder:        geocoder,
		Position:        model.Coordinates{Lat: cfg.DeviceLat, Lng: cfg.DeviceLng},
		Hub:             hub,
		FrameInterval:   cfg.FrameInterval(),
		SnapshotQuality: cfg.SnapshotQuality,
		Logger:          log,
	})

	return &App{
		config:   cfg,
		logger:   log,
		db:       db,
		cases:    cases,
		drafter:  drafter,
		hub:      hub,
		sessions: sessions,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then stops the active session,
// the hub and the database.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(a.ctx)

	router := route.SetupRoutes(route.Services{
		Sessions: a.sessions,
		Cases:    a.cases,
		Drafter:  a.drafter,
		Hub:      a.hub,
	}, a.config, a.logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("🚀 Vision Reporter\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🗄️  Cases: %s\n", a.config.DatabasePath)
	fmt.Printf("📷 Camera: %s\n", a.config.CameraDevice)
	fmt.Printf("🤖 AI Model: %s\n", a.config.ModelPath)
	if a.config.OpenAIKey == "" && a.config.ReportEndpoint == "" {
		a.logger.Warning("No OPENAI_API_KEY or REPORT_ENDPOINT configured, report drafting will return a placeholder")
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		a.shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	if err := a.sessions.Stop(); err != nil && !errors.Is(err, session.ErrNoSession) {
		a.logger.Error("Failed to stop session: %v", err)
	}
	a.cancel()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
}
