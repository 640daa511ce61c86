package vision

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// SelectionPolicy определяет, какой кружок строки считается отмеченным.
type SelectionPolicy int

const (
	// FirstExceedsThreshold берёт первый слева кружок выше порога.
	FirstExceedsThreshold SelectionPolicy = iota
	// MaxFill берёт самый заполненный кружок выше порога.
	MaxFill
)

func (p SelectionPolicy) String() string {
	switch p {
	case FirstExceedsThreshold:
		return "first"
	case MaxFill:
		return "max"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy разбирает имя политики из конфигурации.
func ParsePolicy(name string) (SelectionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first", "first_exceeds_threshold":
		return FirstExceedsThreshold, nil
	case "max", "max_fill":
		return MaxFill, nil
	default:
		return 0, fmt.Errorf("unknown selection policy %q", name)
	}
}

// Params параметры всех этапов распознавания.
type Params struct {
	// Выравнивание наклона
	CannyLow           float32
	CannyHigh          float32
	HoughThreshold     int
	HoughMinLineLength float32
	HoughMaxLineGap    float32
	MaxSkewDegrees     float64

	// Поиск листа
	DocCannyLow   float32
	DocCannyHigh  float32
	DocCandidates int
	PolyEpsilon   float64

	// Поиск кружков
	TargetHeight    int
	BlockDivisor    int
	ThresholdC      float32
	KernelSize      int
	CloseIterations int
	OpenIterations  int
	BorderMargin    float64
	MinContourArea  float64
	MinBubbleArea   float64
	MinSizeRatio    float64
	MaxSizeRatio    float64
	MinAspectRatio  float64
	MaxAspectRatio  float64
	MinCircularity  float64

	// Группировка
	RowBreakFactor float64

	// Оценка ответов
	ChoiceCount        int
	FillThreshold      float64
	MinFillSpread      float64
	Policy             SelectionPolicy
	HighlightColor     color.RGBA
	HighlightThickness int
}

// DefaultParams возвращает параметры для бланка с пятью вариантами.
func DefaultParams() Params {
	return Params{
		CannyLow:           50,
		CannyHigh:          150,
		HoughThreshold:     100,
		HoughMinLineLength: 100,
		HoughMaxLineGap:    10,
		MaxSkewDegrees:     5,

		DocCannyLow:   30,
		DocCannyHigh:  150,
		DocCandidates: 5,
		PolyEpsilon:   0.02,

		TargetHeight:    900,
		BlockDivisor:    20,
		ThresholdC:      3,
		KernelSize:      3,
		CloseIterations: 2,
		OpenIterations:  1,
		BorderMargin:    0.01,
		MinContourArea:  50,
		MinBubbleArea:   100,
		MinSizeRatio:    0.02,
		MaxSizeRatio:    0.15,
		MinAspectRatio:  0.7,
		MaxAspectRatio:  1.3,
		MinCircularity:  0.6,

		RowBreakFactor: 1.5,

		ChoiceCount:        5,
		FillThreshold:      50,
		MinFillSpread:      0.2,
		Policy:             FirstExceedsThreshold,
		HighlightColor:     color.RGBA{G: 255, A: 255},
		HighlightThickness: 2,
	}
}

// Validate проверяет параметры, которые задаются из конфигурации.
func (p Params) Validate() error {
	if p.ChoiceCount < 2 || p.ChoiceCount > 26 {
		return fmt.Errorf("choice count must be in [2, 26], got %d", p.ChoiceCount)
	}
	if p.TargetHeight < 100 {
		return fmt.Errorf("target height is too small: %d", p.TargetHeight)
	}
	if p.FillThreshold < 0 || p.FillThreshold >= 100 {
		return fmt.Errorf("fill threshold must be in [0, 100), got %g", p.FillThreshold)
	}
	if p.BlockDivisor <= 0 {
		return fmt.Errorf("block divisor must be positive, got %d", p.BlockDivisor)
	}
	return nil
}

// ChoiceLabels возвращает буквы вариантов: A, B, C, ...
func ChoiceLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = string(rune('A' + i))
	}
	return labels
}

// normalizedSize считает размер для приведения к TargetHeight с сохранением пропорций.
func (p Params) normalizedSize(width, height int) image.Point {
	if height <= 0 {
		return image.Pt(width, height)
	}
	w := int(float64(width) * (float64(p.TargetHeight) / float64(height)))
	return image.Pt(max(w, 1), p.TargetHeight)
}

// blockSize размер окна адаптивного порога: примерно 1/BlockDivisor меньшей стороны, всегда нечётный.
func (p Params) blockSize(width, height int) int {
	b := min(width, height)/p.BlockDivisor | 1
	return max(b, 3)
}

// borderMargin ширина рамки в пикселях, которая очищается на маске.
func (p Params) borderMargin(width, height int) int {
	return int(float64(min(width, height)) * p.BorderMargin)
}

type nopSink struct{}

func (nopSink) Record(string, image.Image) {}
