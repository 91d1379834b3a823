package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where receiptsense stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your receiptsense instance.
	InstanceURL string

	// AI Configuration
	AIEnabled   bool   // RECEIPTSENSE_AI_ENABLED
	AIBaseURL   string // RECEIPTSENSE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey    string // RECEIPTSENSE_AI_API_KEY
	AIChatModel string // RECEIPTSENSE_AI_CHAT_MODEL (default: gpt-4o-mini)

	// Object storage configuration
	S3Bucket    string // RECEIPTSENSE_S3_BUCKET
	S3Region    string // RECEIPTSENSE_S3_REGION (default: us-east-1)
	S3Endpoint  string // RECEIPTSENSE_S3_ENDPOINT (optional, for MinIO and friends)
	S3AccessKey string // RECEIPTSENSE_S3_ACCESS_KEY
	S3SecretKey string // RECEIPTSENSE_S3_SECRET_KEY
	S3PublicURL string // RECEIPTSENSE_S3_PUBLIC_URL (default derived from bucket+region)

	// Receipt extraction configuration
	OCREnabled    bool   // RECEIPTSENSE_OCR_ENABLED (default: false)
	TesseractPath string // RECEIPTSENSE_OCR_TESSERACT_PATH (default: tesseract)
	TessdataPath  string // RECEIPTSENSE_OCR_TESSDATA_PATH (default: "")
	OCRLanguages  string // RECEIPTSENSE_OCR_LANGUAGES (default: eng)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// IsObjectStorageEnabled returns true if an S3 bucket is configured.
func (p *Profile) IsObjectStorageEnabled() bool {
	return p.S3Bucket != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from RECEIPTSENSE_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("RECEIPTSENSE_AI_ENABLED") == "true"
	p.AIBaseURL = getEnvOrDefault("RECEIPTSENSE_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("RECEIPTSENSE_AI_API_KEY")
	p.AIChatModel = getEnvOrDefault("RECEIPTSENSE_AI_CHAT_MODEL", "gpt-4o-mini")

	p.S3Bucket = os.Getenv("RECEIPTSENSE_S3_BUCKET")
	p.S3Region = getEnvOrDefault("RECEIPTSENSE_S3_REGION", "us-east-1")
	p.S3Endpoint = os.Getenv("RECEIPTSENSE_S3_ENDPOINT")
	p.S3AccessKey = os.Getenv("RECEIPTSENSE_S3_ACCESS_KEY")
	p.S3SecretKey = os.Getenv("RECEIPTSENSE_S3_SECRET_KEY")
	p.S3PublicURL = os.Getenv("RECEIPTSENSE_S3_PUBLIC_URL")

	p.OCREnabled = os.Getenv("RECEIPTSENSE_OCR_ENABLED") == "true"
	p.TesseractPath = getEnvOrDefault("RECEIPTSENSE_OCR_TESSERACT_PATH", "tesseract")
	p.TessdataPath = os.Getenv("RECEIPTSENSE_OCR_TESSDATA_PATH")
	p.OCRLanguages = getEnvOrDefault("RECEIPTSENSE_OCR_LANGUAGES", "eng")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "receiptsense")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/receiptsense"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("receiptsense_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
