package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

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
	// DSN points to where buddy stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs parent-dashboard access tokens
	Secret string

	// LLM configuration
	LLMProvider   string // BUDDY_LLM_PROVIDER (default: gemini)
	LLMModel      string // BUDDY_LLM_MODEL (default: gemini-2.0-flash)
	GeminiAPIKey  string // BUDDY_GEMINI_API_KEY
	OpenAIAPIKey  string // BUDDY_OPENAI_API_KEY
	OpenAIBaseURL string // BUDDY_OPENAI_BASE_URL (default: https://api.openai.com/v1)

	// Speech configuration
	DeepgramAPIKey   string // BUDDY_DEEPGRAM_API_KEY
	DeepgramSTTModel string // BUDDY_DEEPGRAM_STT_MODEL (default: nova-2)
	DeepgramTTSModel string // BUDDY_DEEPGRAM_TTS_MODEL (default: aura-asteria-en)

	// Ambient session thresholds. Zero values fall back to the tracker
	// defaults; these exist so deployments can tune the throttle without
	// a rebuild.
	SilenceTimeout    time.Duration // BUDDY_SILENCE_TIMEOUT_SECONDS
	RateLimitWindow   time.Duration // BUDDY_RATE_LIMIT_WINDOW_SECONDS
	RateLimitMaxCount int           // BUDDY_RATE_LIMIT_MAX_COUNT
	MicLockDuration   time.Duration // BUDDY_MIC_LOCK_SECONDS
	BreakThreshold    time.Duration // BUDDY_BREAK_THRESHOLD_SECONDS
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled returns true if a reply-generation provider is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.GeminiAPIKey != "" || p.OpenAIAPIKey != ""
}

// IsSpeechEnabled returns true if the Deepgram client can be constructed.
func (p *Profile) IsSpeechEnabled() bool {
	return p.DeepgramAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getSecondsEnv parses an integer-seconds environment variable into a
// duration, returning 0 (use built-in default) when unset or malformed.
func getSecondsEnv(key string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		slog.Warn("ignoring malformed duration env", "key", key, "value", raw)
		return 0
	}
	return time.Duration(secs) * time.Second
}

// FromEnv loads configuration from BUDDY_* environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("BUDDY_LLM_PROVIDER", "gemini")
	p.LLMModel = getEnvOrDefault("BUDDY_LLM_MODEL", "gemini-2.0-flash")
	p.GeminiAPIKey = os.Getenv("BUDDY_GEMINI_API_KEY")
	p.OpenAIAPIKey = os.Getenv("BUDDY_OPENAI_API_KEY")
	p.OpenAIBaseURL = getEnvOrDefault("BUDDY_OPENAI_BASE_URL", "https://api.openai.com/v1")

	p.DeepgramAPIKey = os.Getenv("BUDDY_DEEPGRAM_API_KEY")
	p.DeepgramSTTModel = getEnvOrDefault("BUDDY_DEEPGRAM_STT_MODEL", "nova-2")
	p.DeepgramTTSModel = getEnvOrDefault("BUDDY_DEEPGRAM_TTS_MODEL", "aura-asteria-en")

	p.SilenceTimeout = getSecondsEnv("BUDDY_SILENCE_TIMEOUT_SECONDS")
	p.RateLimitWindow = getSecondsEnv("BUDDY_RATE_LIMIT_WINDOW_SECONDS")
	if raw := os.Getenv("BUDDY_RATE_LIMIT_MAX_COUNT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.RateLimitMaxCount = n
		}
	}
	p.MicLockDuration = getSecondsEnv("BUDDY_MIC_LOCK_SECONDS")
	p.BreakThreshold = getSecondsEnv("BUDDY_BREAK_THRESHOLD_SECONDS")
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
		p.Data = "/var/opt/buddy"
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("buddy_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	return nil
}
