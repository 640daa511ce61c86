package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
)

type Config struct {
	HTTPAddr       string
	TelegramToken  string
	ArtifactDir    string
	MaxUploadBytes int64
	ScanTimeout    time.Duration

	TargetHeight    int
	ChoiceCount     int
	FillThreshold   float64
	SelectionPolicy string
	HighlightColor  color.RGBA
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		ArtifactDir:     getEnv("ARTIFACT_DIR", "debug"),
		SelectionPolicy: getEnv("SELECTION_POLICY", "first"),
	}

	maxUploadMB, err := getInt("MAX_UPLOAD_MB", 20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUploadMB) << 20

	if cfg.ScanTimeout, err = getDuration("SCAN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.TargetHeight, err = getInt("TARGET_HEIGHT", 900); err != nil {
		return nil, err
	}
	if cfg.ChoiceCount, err = getInt("CHOICE_COUNT", 5); err != nil {
		return nil, err
	}
	if cfg.FillThreshold, err = getFloat("FILL_THRESHOLD", 50); err != nil {
		return nil, err
	}
	if cfg.HighlightColor, err = getColor("HIGHLIGHT_COLOR", "#00ff00"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

// getColor разбирает цвет в формате #rrggbb
func getColor(key, defaultVal string) (color.RGBA, error) {
	c, err := colorful.Hex(getEnv(key, defaultVal))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("config: %s: %w", key, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
