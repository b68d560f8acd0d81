package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"visionreporter/internal/dto"

	"gocv.io/x/gocv"
)

var (
	boxColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	textColor = color.RGBA{R: 0, G: 0, B: 0, A: 0}
)

// Surface holds the latest annotated frame.
type Surface struct {
	mu       sync.Mutex
	mat      gocv.Mat
	rendered bool
	closed   bool
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{mat: gocv.NewMat()}
}

// Ready reports whether the surface accepts frames.
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Draw replaces the surface with frame and paints a box and caption per detection.
func (s *Surface) Draw(frame *dto.Frame, detections []dto.DetectionResult) error {
	if frame.Empty() {
		return fmt.Errorf("empty frame")
	}

	src, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return fmt.Errorf("failed to build frame matrix: %w", err)
	}
	defer src.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("surface closed")
	}

	src.CopyTo(&s.mat)

	for _, d := range detections {
		if err := drawDetection(&s.mat, d); err != nil {
			return err
		}
	}
	s.rendered = true
	return nil
}

func drawDetection(mat *gocv.Mat, d dto.DetectionResult) error {
	rect := image.Rect(d.Box.X, d.Box.Y, d.Box.X+d.Box.Width, d.Box.Y+d.Box.Height)
	if err := gocv.Rectangle(mat, rect, boxColor, 2); err != nil {
		return fmt.Errorf("failed to draw box: %w", err)
	}

	caption := d.Caption()
	size := gocv.GetTextSize(caption, gocv.FontHersheySimplex, 0.5, 1)

	top := d.Box.Y - size.Y - 6
	if top < 0 {
		top = 0
	}
	background := image.Rect(d.Box.X, top, d.Box.X+size.X+6, top+size.Y+6)
	if err := gocv.Rectangle(mat, background, boxColor, -1); err != nil {
		return fmt.Errorf("failed to draw caption background: %w", err)
	}

	origin := image.Pt(d.Box.X+3, top+size.Y+3)
	if err := gocv.PutText(mat, caption, origin, gocv.FontHersheySimplex, 0.5, textColor, 1); err != nil {
		return fmt.Errorf("failed to draw caption: %w", err)
	}
	return nil
}

// EncodeJPEG exports the current surface. It returns nil, nil when nothing
// has been drawn yet.
func (s *Surface) EncodeJPEG(quality int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.rendered || s.mat.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, s.mat, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	raw := buf.GetBytes()
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

// Close releases the surface memory.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.rendered = false
	return s.mat.Close()
}
