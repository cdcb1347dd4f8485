package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Reports   ReportsConfig   `yaml:"reports"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Whisper   WhisperConfig   `yaml:"whisper"`
	Summary   SummaryConfig   `yaml:"summary"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	StaticDir       string        `yaml:"static_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

type ReportsConfig struct {
	DBPath        string        `yaml:"db_path"`
	TTL           time.Duration `yaml:"ttl"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

type PipelineConfig struct {
	TempDir     string        `yaml:"temp_dir"`
	Timeout     time.Duration `yaml:"timeout"`
	YTDLPPath   string        `yaml:"ytdlp_path"`
	FFmpegPath  string        `yaml:"ffmpeg_path"`
	MaxDuration int           `yaml:"max_duration"`
}

type WhisperConfig struct {
	Binary   string `yaml:"binary"`
	Model    string `yaml:"model"`
	ModelDir string `yaml:"model_dir"`
	ModelURL string `yaml:"model_url"`
	Device   string `yaml:"device"`
	Threads  int    `yaml:"threads"`
	Language string `yaml:"language"`
}

type SummaryConfig struct {
	AllowAI     bool          `yaml:"allow_ai"`
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	PromptChars int           `yaml:"prompt_chars"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Interval time.Duration `yaml:"interval"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    35 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			StaticDir:       "./static",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Reports: ReportsConfig{
			DBPath:        "file:reports?mode=memory&cache=shared",
			TTL:           30 * time.Minute,
			SweepSchedule: "@every 1m",
		},
		Pipeline: PipelineConfig{
			TempDir:     os.TempDir(),
			Timeout:     30 * time.Minute,
			YTDLPPath:   "yt-dlp",
			FFmpegPath:  "ffmpeg",
			MaxDuration: 1800,
		},
		Whisper: WhisperConfig{
			Binary:   "whisper-cli",
			Model:    "base",
			Device:   "auto",
			Language: "zh",
		},
		Summary: SummaryConfig{
			AllowAI:     true,
			Provider:    "openai",
			Timeout:     20 * time.Second,
			Temperature: 0.3,
			MaxTokens:   800,
			PromptChars: 3000,
		},
		RateLimit: RateLimitConfig{
			Requests: 5,
			Interval: time.Second,
		},
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file at path
// (CONFIG_FILE when path is empty), then environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = GetEnv("CONFIG_FILE", "")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	logrus.WithField("path", path).Info("Loaded config file")
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = GetEnv("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.StaticDir = GetEnv("STATIC_DIR", c.Server.StaticDir)

	c.Log.Level = GetEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = GetEnv("LOG_FORMAT", c.Log.Format)
	c.Log.Dir = GetEnv("LOG_DIR", c.Log.Dir)

	c.Reports.DBPath = GetEnv("DB_PATH", c.Reports.DBPath)
	c.Reports.TTL = getEnvAsDuration("REPORT_TTL", c.Reports.TTL)
	c.Reports.SweepSchedule = GetEnv("REPORT_SWEEP_SCHEDULE", c.Reports.SweepSchedule)

	c.Pipeline.TempDir = GetEnv("TEMP_DIR", c.Pipeline.TempDir)
	c.Pipeline.Timeout = getEnvAsDuration("PIPELINE_TIMEOUT", c.Pipeline.Timeout)
	c.Pipeline.YTDLPPath = GetEnv("YTDLP_PATH", c.Pipeline.YTDLPPath)
	c.Pipeline.FFmpegPath = GetEnv("FFMPEG_PATH", c.Pipeline.FFmpegPath)
	c.Pipeline.MaxDuration = getEnvAsInt("MAX_VIDEO_DURATION", c.Pipeline.MaxDuration)

	c.Whisper.Binary = GetEnv("WHISPER_BIN", c.Whisper.Binary)
	c.Whisper.Model = GetEnv("WHISPER_MODEL", c.Whisper.Model)
	c.Whisper.ModelDir = GetEnv("WHISPER_MODEL_DIR", c.Whisper.ModelDir)
	c.Whisper.ModelURL = GetEnv("WHISPER_MODEL_URL", c.Whisper.ModelURL)
	c.Whisper.Device = GetEnv("WHISPER_DEVICE", c.Whisper.Device)
	c.Whisper.Threads = getEnvAsInt("WHISPER_THREADS", c.Whisper.Threads)
	c.Whisper.Language = GetEnv("WHISPER_LANGUAGE", c.Whisper.Language)

	c.Summary.AllowAI = getEnvAsBool("ALLOW_AI_SUMMARY", c.Summary.AllowAI)
	c.Summary.Provider = GetEnv("LLM_PROVIDER", c.Summary.Provider)
	c.Summary.Model = GetEnv("LLM_MODEL", c.Summary.Model)
	c.Summary.BaseURL = GetEnv("LLM_BASE_URL", c.Summary.BaseURL)
	c.Summary.Timeout = getEnvAsDuration("AI_TIMEOUT", c.Summary.Timeout)
	c.Summary.Temperature = getEnvAsFloat("AI_TEMPERATURE", c.Summary.Temperature)
	c.Summary.MaxTokens = getEnvAsInt("AI_MAX_TOKENS", c.Summary.MaxTokens)
	c.Summary.PromptChars = getEnvAsInt("AI_PROMPT_CHARS", c.Summary.PromptChars)

	c.RateLimit.Requests = getEnvAsInt("RATE_LIMIT", c.RateLimit.Requests)
	c.RateLimit.Interval = getEnvAsDuration("RATE_LIMIT_INTERVAL", c.RateLimit.Interval)
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		warnInvalid(key, value, defaultValue, "Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		warnInvalid(key, value, defaultValue, "Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		warnInvalid(key, value, defaultValue, "Invalid number, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
		warnInvalid(key, value, defaultValue, "Invalid boolean, using default")
	}
	return defaultValue
}

func warnInvalid(key, value string, defaultValue any, msg string) {
	logrus.WithFields(logrus.Fields{
		"key":          key,
		"value":        value,
		"defaultValue": defaultValue,
	}).Warn(msg)
}

func ValidateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required")
	}
	if cfg.Reports.DBPath == "" {
		return errors.New("database path is required")
	}
	if cfg.Reports.TTL <= 0 {
		return errors.New("report ttl must be greater than 0")
	}
	if cfg.Pipeline.Timeout <= 0 {
		return errors.New("pipeline timeout must be greater than 0")
	}
	if cfg.Pipeline.MaxDuration <= 0 {
		return errors.New("max video duration must be greater than 0")
	}
	if cfg.Server.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if cfg.Server.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if cfg.Summary.Timeout <= 0 {
		return errors.New("ai timeout must be greater than 0")
	}
	if cfg.Summary.MaxTokens <= 0 {
		return errors.New("ai max tokens must be greater than 0")
	}
	if cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Interval <= 0 {
		return errors.New("rate limit must be greater than 0")
	}
	switch strings.ToLower(cfg.Summary.Provider) {
	case "openai", "gemini":
	default:
		return errors.Errorf("unknown llm provider %q", cfg.Summary.Provider)
	}
	return nil
}
