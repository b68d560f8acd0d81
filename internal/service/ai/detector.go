package ai

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
	"visionreporter/internal/model"

	"gocv.io/x/gocv"
)

// DefaultDetectionThreshold is the minimum confidence for object detections.
const DefaultDetectionThreshold = 0.5

// DetectorService wraps an SSD MobileNet COCO network loaded through gocv.
type DetectorService struct {
	mu         sync.Mutex
	net        gocv.Net
	loaded     bool
	modelPath  string
	configPath string
	threshold  float32
	logger     *logger.Logger
}

// NewDetectorService loads the network from modelPath/configPath. A missing or
// broken model is reported as model.ErrCapabilityUnavailable.
func NewDetectorService(modelPath, configPath string, threshold float64, logger *logger.Logger) (*DetectorService, error) {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultDetectionThreshold
	}

	service := &DetectorService{
		modelPath:  modelPath,
		configPath: configPath,
		threshold:  float32(threshold),
		logger:     logger,
	}

	if err := service.initializeNet(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCapabilityUnavailable, err)
	}

	return service, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.configPath)
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)

	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)

	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.loaded = true
	s.logger.Info("Detection network initialized successfully")
	return nil
}

// Ready reports whether the network is loaded.
func (s *DetectorService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Detect runs the network on a frame and returns the detections above the
// confidence threshold, in network output order. Forward cannot be
// interrupted, so ctx is only checked before starting.
func (s *DetectorService) Detect(ctx context.Context, frame *dto.Frame) ([]dto.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, fmt.Errorf("detection network not initialized")
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to build frame matrix: %w", err)
	}
	defer mat.Close()

	// Input parameters of the SSD COCO net
	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	return s.parseOutput(output, mat.Cols(), mat.Rows()), nil
}

// parseOutput reads rows of [batch_id, class_id, confidence, x1, y1, x2, y2].
func (s *DetectorService) parseOutput(output gocv.Mat, cols, rows int) []dto.DetectionResult {
	results := make([]dto.DetectionResult, 0)

	reshaped := output.Reshape(1, output.Total()/7)
	defer reshaped.Close()

	for i := 0; i < reshaped.Rows(); i++ {
		confidence := reshaped.GetFloatAt(i, 2)
		if confidence <= s.threshold {
			continue
		}

		classID := int(reshaped.GetFloatAt(i, 1))
		x := int(reshaped.GetFloatAt(i, 3) * float32(cols))
		y := int(reshaped.GetFloatAt(i, 4) * float32(rows))
		width := int(reshaped.GetFloatAt(i, 5)*float32(cols)) - x
		height := int(reshaped.GetFloatAt(i, 6)*float32(rows)) - y

		results = append(results, dto.DetectionResult{
			Label:      ClassLabel(classID),
			Confidence: float64(confidence),
			Box:        clampBox(x, y, width, height, cols, rows),
		})
	}

	return results
}

// Close releases the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil
	}
	s.loaded = false
	return s.net.Close()
}
