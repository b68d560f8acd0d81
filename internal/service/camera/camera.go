package camera

import (
	"fmt"
	"sync"
	"time"
	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
	"visionreporter/internal/model"

	"gocv.io/x/gocv"
)

// CameraService reads frames from a local video device or stream URL.
type CameraService struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	mat     gocv.Mat
	device  string
	seq     uint64
	opened  bool
	logger  *logger.Logger
}

// Open starts capturing from device, a numeric index ("0") or a stream URL.
// A device that cannot be opened is reported as model.ErrCapabilityUnavailable.
func Open(device string, logger *logger.Logger) (*CameraService, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: camera %q: %v", model.ErrCapabilityUnavailable, device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: camera %q not opened", model.ErrCapabilityUnavailable, device)
	}

	logger.Info("📷 Camera %s opened", device)
	return &CameraService{
		capture: capture,
		mat:     gocv.NewMat(),
		device:  device,
		opened:  true,
		logger:  logger,
	}, nil
}

// Ready reports whether the capture is open.
func (c *CameraService) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// Read grabs the next frame. The returned frame owns a copy of the pixels.
func (c *CameraService) Read() (*dto.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil, fmt.Errorf("camera %s closed", c.device)
	}
	if ok := c.capture.Read(&c.mat); !ok {
		return nil, fmt.Errorf("camera %s: read failed", c.device)
	}
	if c.mat.Empty() {
		return &dto.Frame{}, nil
	}

	if c.mat.Type() != gocv.MatTypeCV8UC3 {
		converted := gocv.NewMat()
		defer converted.Close()
		if err := gocv.CvtColor(c.mat, &converted, gocv.ColorGrayToBGR); err != nil {
			return nil, fmt.Errorf("camera %s: unsupported frame type %v", c.device, c.mat.Type())
		}
		return c.frame(converted), nil
	}
	return c.frame(c.mat), nil
}

func (c *CameraService) frame(mat gocv.Mat) *dto.Frame {
	c.seq++
	pixels := mat.ToBytes()
	data := make([]byte, len(pixels))
	copy(data, pixels)

	return &dto.Frame{
		Seq:       c.seq,
		Timestamp: time.Now(),
		Width:     mat.Cols(),
		Height:    mat.Rows(),
		Data:      data,
	}
}

// Close releases the device. Safe to call more than once.
func (c *CameraService) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil
	}
	c.opened = false
	c.mat.Close()
	err := c.capture.Close()
	c.logger.Info("📷 Camera %s released", c.device)
	return err
}
