package vision

import (
	"slices"

	"sheet-scanner/internal/domain/entity"
)

// BubbleFill сколько пикселей внутри кружка закрашено и сколько всего пикселей в маске.
type BubbleFill struct {
	Ink  int
	Area int
}

// FillMeter измеряет заполненность кружка.
type FillMeter func(entity.BubbleCandidate) BubbleFill

// NormalizeFills переводит значения в шкалу 0..100 по минимуму и максимуму строки.
// Если все значения равны, диапазон считается равным 1.
func NormalizeFills(ink []int) []float64 {
	if len(ink) == 0 {
		return nil
	}
	lo, hi := slices.Min(ink), slices.Max(ink)
	span := float64(hi - lo)
	if hi == lo {
		span = 1
	}
	out := make([]float64, len(ink))
	for i, v := range ink {
		out[i] = float64(v-lo) / span * 100
	}
	return out
}

// Select выбирает отмеченный вариант по нормированной заполненности.
func (p SelectionPolicy) Select(fills []float64, threshold float64) (int, bool) {
	switch p {
	case MaxFill:
		best := -1
		for i, f := range fills {
			if f > threshold && (best < 0 || f > fills[best]) {
				best = i
			}
		}
		return best, best >= 0
	default:
		for i, f := range fills {
			if f > threshold {
				return i, true
			}
		}
		return -1, false
	}
}

// ScoreRows определяет ответ для каждой строки. Вопросы нумеруются с 1 по порядку строк.
// Возвращает ответы и выбранные кружки для подсветки.
func (p Params) ScoreRows(rows []entity.QuestionRow, measure FillMeter) ([]entity.Answer, []entity.BubbleCandidate) {
	labels := ChoiceLabels(p.ChoiceCount)
	answers := make([]entity.Answer, 0, len(rows))
	var selected []entity.BubbleCandidate

	for i, row := range rows {
		answer := entity.Answer{Question: i + 1, Choice: entity.Unresolved}
		if len(row) != p.ChoiceCount {
			answers = append(answers, answer)
			continue
		}

		ink := make([]int, len(row))
		minArea := -1
		for j, bubble := range row {
			f := measure(bubble)
			ink[j] = f.Ink
			if minArea < 0 || f.Area < minArea {
				minArea = f.Area
			}
		}
		answer.Fills = NormalizeFills(ink)

		// Почти одинаковые значения после растяжения дали бы ложную отметку.
		if float64(slices.Max(ink)-slices.Min(ink)) < p.MinFillSpread*float64(minArea) {
			answers = append(answers, answer)
			continue
		}

		if idx, ok := p.Policy.Select(answer.Fills, p.FillThreshold); ok {
			answer.Choice = labels[idx]
			answer.Resolved = true
			selected = append(selected, row[idx])
		}
		answers = append(answers, answer)
	}
	return answers, selected
}
