package detection

import (
	"context"
	"sync/atomic"

	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
)

// FrameSource exposes the latest camera frame on demand.
type FrameSource interface {
	Ready() bool
	Read() (*dto.Frame, error)
}

// Detector wraps the object detection capability. The order of the returned
// results is authoritative: index 0 is treated as the top prediction.
type Detector interface {
	Ready() bool
	Detect(ctx context.Context, frame *dto.Frame) ([]dto.DetectionResult, error)
}

// Surface is the render target holding the latest annotated frame.
type Surface interface {
	Ready() bool
	Draw(frame *dto.Frame, detections []dto.DetectionResult) error
}

// Announcer performs the speech side effect.
type Announcer interface {
	Announce(a Announcement)
}

// Publisher receives UI updates produced by the loop.
type Publisher interface {
	PublishFrame(seq uint64, detections []dto.DetectionResult)
	PublishLabel(label string)
}

// Outcome describes what a single cycle did.
type Outcome int

const (
	OutcomeSkipped   Outcome = iota // prerequisites unmet, nothing inferred
	OutcomeFailed                   // read, inference or draw failed
	OutcomeDiscarded                // session torn down while inferring
	OutcomeCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeCompleted:
		return "completed"
	}
	return "unknown"
}

// Stats counts cycles by outcome.
type Stats struct {
	Cycles    uint64 `json:"cycles"`
	Skipped   uint64 `json:"skipped"`
	Failed    uint64 `json:"failed"`
	Discarded uint64 `json:"discarded"`
	Completed uint64 `json:"completed"`
}

// Loop runs the frame-by-frame inference cycle of one capture session.
// State is owned by the goroutine calling Run; other goroutines only read the
// published label.
type Loop struct {
	source    FrameSource
	detector  Detector
	surface   Surface
	announcer Announcer
	publisher Publisher
	scheduler Scheduler
	logger    *logger.Logger

	state    State
	label    atomic.Value // string
	failures int

	cycles, skipped, failed, discarded, completed atomic.Uint64
}

// Options groups the collaborators of a Loop. Announcer and Publisher may be nil.
type Options struct {
	Source    FrameSource
	Detector  Detector
	Surface   Surface
	Announcer Announcer
	Publisher Publisher
	Scheduler Scheduler
	Logger    *logger.Logger
}

// NewLoop creates a Loop. It does not start it.
func NewLoop(opts Options) *Loop {
	l := &Loop{
		source:    opts.Source,
		detector:  opts.Detector,
		surface:   opts.Surface,
		announcer: opts.Announcer,
		publisher: opts.Publisher,
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
	}
	if l.logger == nil {
		l.logger = logger.Discard()
	}
	l.label.Store("")
	return l
}

// Run executes one Step per scheduler tick until ctx is cancelled. The
// scheduler is stopped before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.scheduler.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.scheduler.C():
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.Step(ctx)
	}
}

// Step runs a single inference-and-render cycle.
func (l *Loop) Step(ctx context.Context) Outcome {
	outcome := l.step(ctx)

	l.cycles.Add(1)
	switch outcome {
	case OutcomeSkipped:
		l.skipped.Add(1)
	case OutcomeFailed:
		l.failed.Add(1)
	case OutcomeDiscarded:
		l.discarded.Add(1)
	case OutcomeCompleted:
		l.completed.Add(1)
	}
	return outcome
}

func (l *Loop) step(ctx context.Context) Outcome {
	if !l.source.Ready() || !l.detector.Ready() || !l.surface.Ready() {
		return OutcomeSkipped
	}

	frame, err := l.source.Read()
	if err != nil {
		l.fail("Frame read failed: %v", err)
		return OutcomeFailed
	}
	if frame.Empty() {
		return OutcomeSkipped
	}

	detections, err := l.detector.Detect(ctx, frame)
	if ctx.Err() != nil {
		return OutcomeDiscarded
	}
	if err != nil {
		l.fail("Inference failed on frame %d: %v", frame.Seq, err)
		return OutcomeFailed
	}

	if err := l.surface.Draw(frame, detections); err != nil {
		l.fail("Render failed on frame %d: %v", frame.Seq, err)
		return OutcomeFailed
	}
	l.failures = 0

	if l.publisher != nil {
		l.publisher.PublishFrame(frame.Seq, detections)
	}

	if len(detections) == 0 {
		return OutcomeCompleted
	}

	// Adapter order is authoritative; no re-sorting by confidence.
	next, announcement := Stabilize(l.state, detections[0].Label)
	changed := next.CurrentLabel != l.state.CurrentLabel
	l.state = next

	if changed {
		l.label.Store(next.CurrentLabel)
		if l.publisher != nil {
			l.publisher.PublishLabel(next.CurrentLabel)
		}
	}
	if announcement != nil {
		l.logger.Info("🔊 %s", announcement.Text)
		if l.announcer != nil {
			l.announcer.Announce(*announcement)
		}
	}

	return OutcomeCompleted
}

// fail logs the first failure of a streak and then every 100th.
func (l *Loop) fail(format string, v ...interface{}) {
	l.failures++
	if l.failures == 1 || l.failures%100 == 0 {
		l.logger.Warning(format, v...)
	}
}

// Label returns the stabilized label, "" until something was detected.
// Safe to call from any goroutine.
func (l *Loop) Label() string {
	return l.label.Load().(string)
}

// State returns the detection state. Only meaningful from the goroutine running
// the loop or after Run has returned.
func (l *Loop) State() State {
	return l.state
}

// Stats returns cycle counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Cycles:    l.cycles.Load(),
		Skipped:   l.skipped.Load(),
		Failed:    l.failed.Load(),
		Discarded: l.discarded.Load(),
		Completed: l.completed.Load(),
	}
}
