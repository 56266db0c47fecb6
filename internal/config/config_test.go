package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "API_KEY", "OCR_PROVIDER", "CLOVA_OCR_URL", "CLOVA_OCR_SECRET",
		"TESSERACT_LANGS", "SCORING_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "PROMPT_TOKEN_BUDGET", "WORKER_COUNT",
		"MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "JOB_TTL", "HISTORY_DB", "LAYOUT_GAP_RATIO",
		"LAYOUT_MIN_GAP_PX", "LAYOUT_MIN_LINE_HEIGHT_PX", "PDF_FALLBACK_PDFTOTEXT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8090" || cfg.WorkerCount != 4 || cfg.JobTTL != time.Hour {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if !cfg.UseMockOCR() || !cfg.UseMockScoring() {
		t.Error("expected mocks without credentials")
	}
	cal := cfg.Calibration()
	if cal.GapRatio != 0.9 || cal.MinGap != 12 || cal.MinLineHeight != 8 || cal.DefaultLineHeight != 16 {
		t.Errorf("unexpected calibration: %+v", cal)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("TESSERACT_LANGS", "kor+eng+jpn")
	t.Setenv("LAYOUT_GAP_RATIO", "1.2")
	t.Setenv("SCORING_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 15*time.Minute {
		t.Errorf("expected 15m TTL, got %v", cfg.JobTTL)
	}
	if strings.Join(cfg.TesseractLangs, ",") != "kor,eng,jpn" {
		t.Errorf("unexpected langs: %v", cfg.TesseractLangs)
	}
	if cfg.Calibration().GapRatio != 1.2 {
		t.Errorf("expected gap ratio 1.2, got %v", cfg.Calibration().GapRatio)
	}
	if cfg.ScoringProvider != "anthropic" || cfg.UseMockScoring() {
		t.Errorf("expected live anthropic scoring, got %q mock=%v", cfg.ScoringProvider, cfg.UseMockScoring())
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "essaygest.toml")
	content := `
port = "7000"
worker_count = 2
history_db = "/tmp/essays.db"
job_ttl = "30m"
layout_min_gap_px = 20.0
tesseract_langs = ["kor"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WORKER_COUNT", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7000" || cfg.HistoryDB != "/tmp/essays.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected env to win, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %v", cfg.JobTTL)
	}
	if cfg.LayoutMinGapPx != 20 {
		t.Errorf("expected min gap 20, got %v", cfg.LayoutMinGapPx)
	}
	if len(cfg.TesseractLangs) != 1 || cfg.TesseractLangs[0] != "kor" {
		t.Errorf("unexpected langs: %v", cfg.TesseractLangs)
	}
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("port = ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
		{"bad ocr provider", func(c *Config) { c.OCRProvider = "azure" }, "OCR_PROVIDER"},
		{"bad scoring provider", func(c *Config) { c.ScoringProvider = "openai" }, "SCORING_PROVIDER"},
		{"half clova credentials", func(c *Config) { c.ClovaOCRURL = "https://example.com" }, "CLOVA_OCR_SECRET"},
		{"zero gap ratio", func(c *Config) { c.LayoutGapRatio = 0 }, "LAYOUT_GAP_RATIO"},
		{"negative min gap", func(c *Config) { c.LayoutMinGapPx = -1 }, "LAYOUT_MIN_GAP_PX"},
		{"no history db", func(c *Config) { c.HistoryDB = "" }, "HISTORY_DB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUseMockOCR_Tesseract(t *testing.T) {
	cfg := Defaults()
	cfg.OCRProvider = "tesseract"
	if cfg.UseMockOCR() {
		t.Error("tesseract needs no credentials")
	}
}

func TestLoadDotenv(t *testing.T) {
	const key = "ESSAYGEST_TEST_DOTENV"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	if err := os.WriteFile(local, []byte(key+"=from-local\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(shared, []byte(key+"=from-shared\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadDotenv(local, shared, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("loaded = %v, want both existing files", loaded)
	}
	if got := os.Getenv(key); got != "from-local" {
		t.Errorf("%s = %q, want the first file to win", key, got)
	}
}
