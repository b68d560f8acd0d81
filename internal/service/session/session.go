package session

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
	"visionreporter/internal/service/detection"
	"visionreporter/internal/service/location"
	"visionreporter/internal/service/report"
	"visionreporter/internal/service/snapshot"
	"visionreporter/internal/service/submission"
	"visionreporter/internal/service/websocket"
)

// Camera is a frame source owning a device.
type Camera interface {
	detection.FrameSource
	Close() error
}

// Model is a detector owning a loaded network.
type Model interface {
	detection.Detector
	Close() error
}

// Canvas is the render surface of a session.
type Canvas interface {
	detection.Surface
	snapshot.Encoder
	Close() error
}

// Broadcaster pushes events to the connected UI shells.
type Broadcaster interface {
	Publish(event websocket.Event)
	GetClientCount() int
}

// Form is the user-editable part of a pending case.
type Form struct {
	Description string `json:"description"`
	AISummary   string `json:"aiSummary"`
}

// Snapshot is a read-only view of a session for the UI.
type Snapshot struct {
	ID         string          `json:"id"`
	Reporter   string          `json:"reporter"`
	StartedAt  time.Time       `json:"startedAt"`
	Label      string          `json:"label"`
	Form       Form            `json:"form"`
	Location   location.Result `json:"location"`
	Submitting bool            `json:"submitting"`
	Stats      detection.Stats `json:"stats"`
}

// Session is one live capture: camera, detector, surface, loop and form state.
type Session struct {
	ID        string
	Reporter  string
	StartedAt time.Time

	camera Camera
	model  Model
	canvas Canvas

	loop      *detection.Loop
	location  *location.Service
	shell     *location.ShellLocator
	drafter   report.Drafter
	capturer  *snapshot.Capturer
	submitter *submission.Service
	hub       Broadcaster
	quality   int
	logger    *logger.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	form Form
}

// start launches the loop and the location lookup.
func (s *Session) start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.location.OnResolved(func(r location.Result) {
		s.publish(websocket.Event{Type: websocket.EventLocation, Message: r.Name, Data: r})
	})
	s.location.Start(ctx)

	go func() {
		defer close(s.done)
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Detection loop of session %s stopped: %v", s.ID, err)
		}
	}()

	s.logger.Info("🎬 Session %s started for %q", s.ID, s.Reporter)
}

// Label returns the stabilized label, "" before the first detection.
func (s *Session) Label() string {
	return s.loop.Label()
}

// SetDescription replaces the free-text description.
func (s *Session) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Description = description
}

// Form returns a copy of the form state.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// DraftReport asks the drafter for report text about the current label and
// keeps it as the AI summary. The returned text may be a placeholder.
func (s *Session) DraftReport(ctx context.Context) string {
	label := s.loop.Label()
	text := s.drafter.Draft(ctx, label)

	s.mu.Lock()
	s.form.AISummary = text
	s.mu.Unlock()

	s.logger.Info("🤖 Report drafted for %q in session %s", label, s.ID)
	return text
}

// Submit captures the evidence bundle and stores it as a NEW case. The
// description is cleared only on success.
func (s *Session) Submit(ctx context.Context) (string, error) {
	form := s.Form()

	photo, err := s.capturer.Capture()
	if err != nil {
		s.logger.Warning("Snapshot failed, submitting without photo: %v", err)
		photo = nil
	}

	loc := s.location.Current()
	name := ""
	if loc.Done {
		name = loc.Name
	}

	id, err := s.submitter.Submit(ctx, submission.Request{
		DetectedType: s.loop.Label(),
		Description:  form.Description,
		AISummary:    form.AISummary,
		Coordinates:  loc.Coordinates,
		LocationName: name,
		Photo:        photo,
		ReporterName: s.Reporter,
	})
	if err != nil {
		if !errors.Is(err, submission.ErrBusy) {
			s.publish(websocket.Event{Type: websocket.EventSubmission, OK: boolPtr(false), Message: "Failed to send report"})
		}
		return "", err
	}

	s.mu.Lock()
	if s.form.Description == form.Description {
		s.form.Description = ""
	}
	s.mu.Unlock()

	s.publish(websocket.Event{Type: websocket.EventSubmission, OK: boolPtr(true), ID: id, Message: "Report sent"})
	return id, nil
}

// ReportLocation feeds a browser position to the session. It is ignored when
// the position comes from configuration.
func (s *Session) ReportLocation(lat, lng float64) {
	if s.shell != nil {
		s.shell.Report(lat, lng)
	}
}

// DenyLocation records that the browser refused or lacks geolocation.
func (s *Session) DenyLocation(reason string) {
	if s.shell != nil {
		s.shell.Deny(reason)
	}
}

// State returns a snapshot of the session.
func (s *Session) State() Snapshot {
	return Snapshot{
		ID:         s.ID,
		Reporter:   s.Reporter,
		StartedAt:  s.StartedAt,
		Label:      s.loop.Label(),
		Form:       s.Form(),
		Location:   s.location.Current(),
		Submitting: s.submitter.Pending(),
		Stats:      s.loop.Stats(),
	}
}

// Close stops the loop, waits for the running cycle, then releases the
// camera, detector and surface. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.done != nil {
			<-s.done
		}

		if err := s.camera.Close(); err != nil {
			s.logger.Warning("Failed to release camera: %v", err)
		}
		if err := s.model.Close(); err != nil {
			s.logger.Warning("Failed to release detector: %v", err)
		}
		if err := s.canvas.Close(); err != nil {
			s.logger.Warning("Failed to release render surface: %v", err)
		}

		stats := s.loop.Stats()
		s.logger.Info("🛑 Session %s closed (%d cycles, %d failed)", s.ID, stats.Cycles, stats.Failed)
	})
}

// Announce implements detection.Announcer; the UI shell speaks the text.
func (s *Session) Announce(a detection.Announcement) {
	s.publish(websocket.Event{Type: websocket.EventSpeech, Label: a.Label, Text: a.Text})
}

// PublishLabel implements detection.Publisher.
func (s *Session) PublishLabel(label string) {
	s.publish(websocket.Event{Type: websocket.EventLabel, Label: label})
}

// PublishFrame implements detection.Publisher. Frames are only encoded while
// someone is watching.
func (s *Session) PublishFrame(seq uint64, detections []dto.DetectionResult) {
	if s.hub == nil || s.hub.GetClientCount() == 0 {
		return
	}

	data, err := s.canvas.EncodeJPEG(s.quality)
	if err != nil || len(data) == 0 {
		return
	}

	captions := make([]string, 0, len(detections))
	for _, d := range detections {
		captions = append(captions, d.Caption())
	}

	s.hub.Publish(websocket.Event{
		Type:    websocket.EventFrame,
		Image:   base64.StdEncoding.EncodeToString(data),
		Message: strings.Join(captions, ", "),
	})
}

func (s *Session) publish(event websocket.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
