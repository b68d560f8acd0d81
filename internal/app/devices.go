package app

import (
	"visionreporter/internal/config"
	"visionreporter/internal/logger"
	"visionreporter/internal/service/ai"
	"visionreporter/internal/service/camera"
	"visionreporter/internal/service/render"
	"visionreporter/internal/service/session"
)

// gocvDevices opens the OpenCV-backed camera, detector and surface.
type gocvDevices struct {
	config *config.Config
	logger *logger.Logger
}

func (d gocvDevices) OpenCamera() (session.Camera, error) {
	return camera.Open(d.config.CameraDevice, d.logger)
}

func (d gocvDevices) LoadModel() (session.Model, error) {
	return ai.NewDetectorService(d.config.ModelPath, d.config.ConfigPath, d.config.DetectionThreshold, d.logger)
}

func (d gocvDevices) NewCanvas() session.Canvas {
	return render.NewSurface()
}
