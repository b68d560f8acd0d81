package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"visionreporter/internal/logger"
	"visionreporter/internal/model"
	"visionreporter/internal/repository"
	"visionreporter/internal/service/detection"
	"visionreporter/internal/service/location"
	"visionreporter/internal/service/report"
	"visionreporter/internal/service/snapshot"
	"visionreporter/internal/service/submission"

	"github.com/google/uuid"
)

var (
	// ErrActive is returned when starting a session while one is running.
	ErrActive = errors.New("a capture session is already active")
	// ErrNoSession is returned when no session is running.
	ErrNoSession = errors.New("no active capture session")
)

// Devices opens the capabilities a session needs.
type Devices interface {
	OpenCamera() (Camera, error)
	LoadModel() (Model, error)
	NewCanvas() Canvas
}

// Dependencies groups the collaborators shared by every session.
type Dependencies struct {
	Devices         Devices
	Cases           repository.CaseRepository
	Drafter         report.Drafter
	Geocoder        location.Geocoder
	Position        model.Coordinates // fixed device position, used instead of the browser when known
	Hub             Broadcaster
	FrameInterval   time.Duration
	SnapshotQuality int
	NewScheduler    func(interval time.Duration) detection.Scheduler
	Logger          *logger.Logger
}

// Manager owns the single active session of the process.
type Manager struct {
	deps Dependencies
	base context.Context

	mu     sync.Mutex
	active *Session
}

// NewManager creates a Manager. Sessions live until Stop or until base is cancelled.
func NewManager(base context.Context, deps Dependencies) *Manager {
	if deps.NewScheduler == nil {
		deps.NewScheduler = detection.NewTickerScheduler
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &Manager{deps: deps, base: base}
}

// Start opens the camera and detector and launches a session for reporter.
// Capability failures are wrapped with model.ErrCapabilityUnavailable.
func (m *Manager) Start(ctx context.Context, reporter string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrActive
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	camera, err := m.deps.Devices.OpenCamera()
	if err != nil {
		m.deps.Logger.Error("Failed to open camera: %v", err)
		return nil, capability("camera", err)
	}

	detector, err := m.deps.Devices.LoadModel()
	if err != nil {
		camera.Close()
		m.deps.Logger.Error("Failed to load detection model: %v", err)
		return nil, capability("detector", err)
	}

	s := m.build(reporter, camera, detector, m.deps.Devices.NewCanvas())
	s.start(m.base)
	m.active = s
	return s, nil
}

func (m *Manager) build(reporter string, camera Camera, detector Model, canvas Canvas) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Reporter:  reporter,
		StartedAt: time.Now(),
		camera:    camera,
		model:     detector,
		canvas:    canvas,
		drafter:   m.deps.Drafter,
		capturer:  snapshot.NewCapturer(canvas, m.deps.SnapshotQuality),
		submitter: submission.NewService(m.deps.Cases, m.deps.Logger),
		hub:       m.deps.Hub,
		quality:   m.deps.SnapshotQuality,
		logger:    m.deps.Logger,
	}

	var locator location.Locator
	if m.deps.Position.Known() {
		locator = location.StaticLocator{Lat: m.deps.Position.Lat, Lng: m.deps.Position.Lng}
	} else {
		s.shell = location.NewShellLocator()
		locator = s.shell
	}
	s.location = location.NewService(locator, m.deps.Geocoder, m.deps.Logger)

	s.loop = detection.NewLoop(detection.Options{
		Source:    camera,
		Detector:  detector,
		Surface:   canvas,
		Announcer: s,
		Publisher: s,
		Scheduler: m.deps.NewScheduler(m.deps.FrameInterval),
		Logger:    m.deps.Logger,
	})
	return s
}

// Active returns the running session or ErrNoSession.
func (m *Manager) Active() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrNoSession
	}
	return m.active, nil
}

// Stop closes the running session.
func (m *Manager) Stop() error {
	m.mu.Lock()
	s := m.active
	m.active = nil
	m.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}
	s.Close()
	return nil
}

func capability(what string, err error) error {
	if errors.Is(err, model.ErrCapabilityUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", model.ErrCapabilityUnavailable, what, err)
}
