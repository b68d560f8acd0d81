package snapshot

import (
	"errors"
	"strings"
	"testing"
)

type fakeEncoder struct {
	data    []byte
	err     error
	quality int
}

func (e *fakeEncoder) EncodeJPEG(quality int) ([]byte, error) {
	e.quality = quality
	return e.data, e.err
}

func TestCapture_NothingRendered(t *testing.T) {
	c := NewCapturer(&fakeEncoder{}, 80)

	photo, err := c.Capture()
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if photo != nil {
		t.Errorf("Expected nil photo, got %q", *photo)
	}
}

func TestCapture_DataURL(t *testing.T) {
	enc := &fakeEncoder{data: []byte{0xFF, 0xD8, 0xFF, 0xD9}}
	c := NewCapturer(enc, 70)

	photo, err := c.Capture()
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if photo == nil || !strings.HasPrefix(*photo, "data:image/jpeg;base64,") {
		t.Fatalf("Expected JPEG data URL, got %v", photo)
	}
	if *photo != "data:image/jpeg;base64,/9j/2Q==" {
		t.Errorf("Unexpected encoding %q", *photo)
	}
	if enc.quality != 70 {
		t.Errorf("Expected quality 70, got %d", enc.quality)
	}
}

func TestCapture_DefaultQuality(t *testing.T) {
	for _, q := range []int{0, -1, 101} {
		enc := &fakeEncoder{data: []byte{1}}
		NewCapturer(enc, q).Capture()
		if enc.quality != DefaultQuality {
			t.Errorf("Quality %d: expected default %d, got %d", q, DefaultQuality, enc.quality)
		}
	}
}

func TestCapture_EncoderError(t *testing.T) {
	c := NewCapturer(&fakeEncoder{err: errors.New("surface closed")}, 80)

	if _, err := c.Capture(); err == nil {
		t.Error("Expected an error")
	}
}

func TestCapture_NilCapturer(t *testing.T) {
	var c *Capturer
	photo, err := c.Capture()
	if photo != nil || err != nil {
		t.Errorf("Expected nil, nil, got %v, %v", photo, err)
	}
}
