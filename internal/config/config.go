package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/dgallion1/essaygest/internal/layout"
)

type Config struct {
	Port string `toml:"port"`

	// Auth. Empty disables it.
	APIKey string `toml:"api_key"`

	// OCR
	OCRProvider    string   `toml:"ocr_provider"`
	ClovaOCRURL    string   `toml:"clova_ocr_url"`
	ClovaOCRSecret string   `toml:"clova_ocr_secret"`
	TesseractLangs []string `toml:"tesseract_langs"`

	// Scoring
	ScoringProvider   string `toml:"scoring_provider"`
	GeminiAPIKey      string `toml:"gemini_api_key"`
	GeminiModel       string `toml:"gemini_model"`
	AnthropicAPIKey   string `toml:"anthropic_api_key"`
	AnthropicModel    string `toml:"anthropic_model"`
	PromptTokenBudget int    `toml:"prompt_token_budget"`

	// Worker pool
	WorkerCount  int `toml:"worker_count"`
	MaxQueueSize int `toml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `toml:"-"`

	// History
	HistoryDB string `toml:"history_db"`

	// Layout calibration
	LayoutGapRatio        float64 `toml:"layout_gap_ratio"`
	LayoutMinGapPx        float64 `toml:"layout_min_gap_px"`
	LayoutMinLineHeightPx float64 `toml:"layout_min_line_height_px"`

	// PDF
	PDFFallbackPdftotext bool `toml:"pdf_fallback_pdftotext"`
}

// fileConfig holds values that decode differently from Config.
type fileConfig struct {
	JobTTL string `toml:"job_ttl"`
}

const (
	defaultMaxUploadBytes = 20 << 20 // 20MB
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	cal := layout.DefaultCalibration()
	return Config{
		Port:                  "8090",
		OCRProvider:           "clova",
		TesseractLangs:        []string{"kor", "eng"},
		ScoringProvider:       "gemini",
		GeminiModel:           defaultGeminiModel,
		AnthropicModel:        defaultAnthropicModel,
		PromptTokenBudget:     6000,
		WorkerCount:           4,
		MaxQueueSize:          100,
		MaxUploadBytes:        defaultMaxUploadBytes,
		JobTTL:                time.Hour,
		HistoryDB:             "data/history.db",
		LayoutGapRatio:        cal.GapRatio,
		LayoutMinGapPx:        cal.MinGap,
		LayoutMinLineHeightPx: cal.MinLineHeight,
		PDFFallbackPdftotext:  true,
	}
}

// DotenvFiles are the dotenv files LoadDotenv reads by default. Earlier
// files win over later ones; variables already in the environment win over
// both.
var DotenvFiles = []string{".env.local", ".env"}

// LoadDotenv exports the variables of each existing file in paths (or
// DotenvFiles when none are given) and returns the files it read.
func LoadDotenv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = DotenvFiles
	}
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// Load reads CONFIG_FILE (TOML) when set, then applies environment
// overrides. Environment variables win over the file.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	var extra fileConfig
	if err := toml.Unmarshal(data, &extra); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if extra.JobTTL != "" {
		d, err := time.ParseDuration(extra.JobTTL)
		if err != nil {
			return fmt.Errorf("parse config %s: job_ttl: %w", path, err)
		}
		c.JobTTL = d
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("API_KEY", c.APIKey)

	c.OCRProvider = strings.ToLower(envOr("OCR_PROVIDER", c.OCRProvider))
	c.ClovaOCRURL = envOr("CLOVA_OCR_URL", c.ClovaOCRURL)
	c.ClovaOCRSecret = envOr("CLOVA_OCR_SECRET", c.ClovaOCRSecret)
	c.TesseractLangs = envList("TESSERACT_LANGS", c.TesseractLangs)

	c.ScoringProvider = strings.ToLower(envOr("SCORING_PROVIDER", c.ScoringProvider))
	c.GeminiAPIKey = envOr("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = envOr("GEMINI_MODEL", c.GeminiModel)
	c.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.AnthropicModel = envOr("ANTHROPIC_MODEL", c.AnthropicModel)
	c.PromptTokenBudget = envInt("PROMPT_TOKEN_BUDGET", c.PromptTokenBudget)

	c.WorkerCount = envInt("WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.JobTTL = envDuration("JOB_TTL", c.JobTTL)
	c.HistoryDB = envOr("HISTORY_DB", c.HistoryDB)

	c.LayoutGapRatio = envFloat("LAYOUT_GAP_RATIO", c.LayoutGapRatio)
	c.LayoutMinGapPx = envFloat("LAYOUT_MIN_GAP_PX", c.LayoutMinGapPx)
	c.LayoutMinLineHeightPx = envFloat("LAYOUT_MIN_LINE_HEIGHT_PX", c.LayoutMinLineHeightPx)

	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)
}

func (c *Config) normalize() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.PromptTokenBudget < 0 {
		c.PromptTokenBudget = 0
	}
}

// Validate reports internally inconsistent settings. Missing provider
// credentials are not errors; they select the mock providers.
func (c Config) Validate() error {
	var errs []error
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	switch c.OCRProvider {
	case "clova", "tesseract":
	default:
		errs = append(errs, fmt.Errorf("OCR_PROVIDER %q must be clova or tesseract", c.OCRProvider))
	}
	switch c.ScoringProvider {
	case "gemini", "anthropic":
	default:
		errs = append(errs, fmt.Errorf("SCORING_PROVIDER %q must be gemini or anthropic", c.ScoringProvider))
	}
	if (c.ClovaOCRURL == "") != (c.ClovaOCRSecret == "") {
		errs = append(errs, errors.New("CLOVA_OCR_URL and CLOVA_OCR_SECRET must be set together"))
	}
	if c.LayoutGapRatio <= 0 || c.LayoutGapRatio > 5 {
		errs = append(errs, fmt.Errorf("LAYOUT_GAP_RATIO %v must be in (0, 5]", c.LayoutGapRatio))
	}
	if c.LayoutMinGapPx < 0 {
		errs = append(errs, fmt.Errorf("LAYOUT_MIN_GAP_PX %v must not be negative", c.LayoutMinGapPx))
	}
	if c.LayoutMinLineHeightPx <= 0 {
		errs = append(errs, fmt.Errorf("LAYOUT_MIN_LINE_HEIGHT_PX %v must be positive", c.LayoutMinLineHeightPx))
	}
	if c.HistoryDB == "" {
		errs = append(errs, errors.New("HISTORY_DB is required"))
	}
	return errors.Join(errs...)
}

// Calibration returns the layout constants.
func (c Config) Calibration() layout.Calibration {
	cal := layout.DefaultCalibration()
	cal.GapRatio = c.LayoutGapRatio
	cal.MinGap = c.LayoutMinGapPx
	cal.MinLineHeight = c.LayoutMinLineHeightPx
	return cal
}

// UseMockOCR reports whether OCR requests are served by the mock recognizer.
func (c Config) UseMockOCR() bool {
	return c.OCRProvider == "clova" && (c.ClovaOCRURL == "" || c.ClovaOCRSecret == "")
}

// UseMockScoring reports whether no scoring provider key is configured.
func (c Config) UseMockScoring() bool {
	if c.ScoringProvider == "anthropic" {
		return c.AnthropicAPIKey == ""
	}
	return c.GeminiAPIKey == ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma or plus separated list ("kor+eng", "kor,eng").
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' }) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
