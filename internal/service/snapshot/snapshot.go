package snapshot

import (
	"encoding/base64"
	"fmt"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 80

// Encoder is a render surface able to export its latest annotated frame.
// EncodeJPEG returns nil, nil when nothing has been rendered yet.
type Encoder interface {
	EncodeJPEG(quality int) ([]byte, error)
}

// Capturer turns the current render surface into evidence photos.
type Capturer struct {
	surface Encoder
	quality int
}

// NewCapturer creates a Capturer with a fixed JPEG quality (1-100).
func NewCapturer(surface Encoder, quality int) *Capturer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Capturer{surface: surface, quality: quality}
}

// Capture returns the latest rendered frame as a JPEG data URL, or nil if no
// frame was rendered yet.
func (c *Capturer) Capture() (*string, error) {
	if c == nil || c.surface == nil {
		return nil, nil
	}

	data, err := c.surface.EncodeJPEG(c.quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	url := DataURL(data)
	return &url, nil
}

// DataURL wraps JPEG bytes into a data URL.
func DataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}
