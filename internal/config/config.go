package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the exchange service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	CallerTZ    string
	DefaultCity string

	ContextWindow       int
	IntentConfidence    float64
	CallInactivityTTL   time.Duration
	InterceptChance     float64
	InterceptCooldown   time.Duration
	RecordingsDir       string
	SoundsDir           string
	SoundMaxAge         time.Duration
	SpeechSampleRateHz  int
	GoogleVoiceLanguage string

	BrainMode     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	BrainModel    string

	SpeechProvider string
	TTSModel       string
	STTModel       string

	DatabaseURL string
	CallLogPath string

	ARIBaseURL  string
	ARIUsername string
	ARIPassword string
	ARIApp      string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            envOrDefault("APP_BIND_ADDR", ":3000"),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "exchange"),
		CallerTZ:            envOrDefault("CALLER_TZ", "America/New_York"),
		DefaultCity:         envOrDefault("CALLER_CITY", "New York City"),
		ContextWindow:       8,
		IntentConfidence:    0.6,
		CallInactivityTTL:   2 * time.Minute,
		InterceptChance:     0,
		InterceptCooldown:   15 * time.Second,
		RecordingsDir:       envOrDefault("RECORDINGS_DIR", "recordings"),
		SoundsDir:           envOrDefault("SOUNDS_DIR", "asterisk-sounds/en"),
		SoundMaxAge:         60 * time.Second,
		SpeechSampleRateHz:  24000,
		GoogleVoiceLanguage: envOrDefault("GOOGLE_TTS_LANGUAGE", "en-US"),
		BrainMode:           envOrDefault("BRAIN_MODE", "auto"),
		OpenAIAPIKey:        trimSpaceEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:       envOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		BrainModel:          envOrDefault("BRAIN_MODEL", "gpt-4o-mini"),
		SpeechProvider:      envOrDefault("SPEECH_PROVIDER", "auto"),
		TTSModel:            envOrDefault("TTS_MODEL", "gpt-4o-mini-tts"),
		STTModel:            envOrDefault("STT_MODEL", "gpt-4o-mini-transcribe"),
		DatabaseURL:         trimSpaceEnv("DATABASE_URL"),
		CallLogPath:         trimSpaceEnv("CALL_LOG_PATH"),
		ARIBaseURL:          trimSpaceEnv("ARI_BASE_URL"),
		ARIUsername:         envOrDefault("ARI_USERNAME", "asterisk"),
		ARIPassword:         trimSpaceEnv("ARI_PASSWORD"),
		ARIApp:              envOrDefault("ARI_APP", "potsbox"),
		ShutdownTimeout:     15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CallInactivityTTL, err = durationFromEnv("CALL_INACTIVITY_TTL", cfg.CallInactivityTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.SoundMaxAge, err = durationFromEnv("SOUND_MAX_AGE", cfg.SoundMaxAge)
	if err != nil {
		return Config{}, err
	}
	cfg.InterceptCooldown, err = durationFromEnv("INTERCEPT_COOLDOWN", cfg.InterceptCooldown)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextWindow, err = intFromEnv("CONTEXT_WINDOW", cfg.ContextWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechSampleRateHz, err = intFromEnv("SPEECH_SAMPLE_RATE_HZ", cfg.SpeechSampleRateHz)
	if err != nil {
		return Config{}, err
	}
	cfg.IntentConfidence, err = floatFromEnv("INTENT_CONFIDENCE", cfg.IntentConfidence)
	if err != nil {
		return Config{}, err
	}
	cfg.InterceptChance, err = floatFromEnv("INTERCEPT_CHANCE", cfg.InterceptChance)
	if err != nil {
		return Config{}, err
	}

	if cfg.ContextWindow <= 0 {
		return Config{}, fmt.Errorf("CONTEXT_WINDOW must be positive")
	}
	if cfg.IntentConfidence < 0 || cfg.IntentConfidence > 1 {
		return Config{}, fmt.Errorf("INTENT_CONFIDENCE must be within [0,1]")
	}
	if cfg.InterceptChance < 0 || cfg.InterceptChance > 1 {
		return Config{}, fmt.Errorf("INTERCEPT_CHANCE must be within [0,1]")
	}
	if cfg.CallInactivityTTL < 5*time.Second {
		return Config{}, fmt.Errorf("CALL_INACTIVITY_TTL must be at least 5s")
	}
	if cfg.SpeechSampleRateHz <= 0 {
		return Config{}, fmt.Errorf("SPEECH_SAMPLE_RATE_HZ must be positive")
	}
	if _, err := time.LoadLocation(cfg.CallerTZ); err != nil {
		return Config{}, fmt.Errorf("CALLER_TZ parse error: %w", err)
	}

	return cfg, nil
}

// Location resolves the configured caller timezone. Load already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.CallerTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimSpaceEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimSpaceEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimSpaceEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimSpaceEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
