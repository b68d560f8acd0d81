package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabasePath string
	LogDirectory string

	CameraDevice       string  // Device index ("0") or stream URL for the frame source
	ModelPath          string
	ConfigPath         string
	DetectionThreshold float64 // Minimum confidence for a detection to be reported
	DisplayFPS         int     // Refresh cadence of the detection loop
	SnapshotQuality    int     // JPEG quality of evidence snapshots (1-100)

	OpenAIKey      string
	OpenAIURL      string
	ReportModel    string
	ReportEndpoint string // When set, drafts are requested from this endpoint instead of OpenAI

	GeocoderURL       string
	GeocoderUserAgent string
	DeviceLat         *float64
	DeviceLng         *float64

	HTTPTimeout time.Duration
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnvAsInt("PORT", 8080),
		DatabasePath:       getEnv("DB_PATH", filepath.Join(".", "data", "cases.db")),
		LogDirectory:       getEnv("LOG_DIR", filepath.Join(".", "logs")),
		CameraDevice:       getEnv("CAMERA_DEVICE", "0"),
		ModelPath:          getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ConfigPath:         getEnv("CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		DetectionThreshold: getEnvAsFloat("DETECTION_THRESHOLD", 0.5),
		DisplayFPS:         getEnvAsInt("DISPLAY_FPS", 30),
		SnapshotQuality:    getEnvAsInt("SNAPSHOT_QUALITY", 80),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIURL:          getEnv("OPENAI_URL", "https://api.openai.com/v1/responses"),
		ReportModel:        getEnv("REPORT_MODEL", "gpt-4o-mini"),
		ReportEndpoint:     getEnv("REPORT_ENDPOINT", ""),
		GeocoderURL:        getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/reverse"),
		GeocoderUserAgent:  getEnv("GEOCODER_USER_AGENT", "visionreporter/1.0"),
		DeviceLat:          getEnvAsFloatPtr("DEVICE_LAT"),
		DeviceLng:          getEnvAsFloatPtr("DEVICE_LNG"),
		HTTPTimeout:        time.Duration(getEnvAsInt("HTTP_TIMEOUT", 20)) * time.Second,
	}
}

// FrameInterval is the delay between two detection cycles.
func (c *Config) FrameInterval() time.Duration {
	if c.DisplayFPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.DisplayFPS)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsFloatPtr returns nil when the variable is unset or not a number.
func getEnvAsFloatPtr(key string) *float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return &floatValue
		}
	}
	return nil
}
