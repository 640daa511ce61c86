package vision

import (
	"math"
	"sort"

	"sheet-scanner/internal/domain/entity"
)

// GroupRows раскладывает кружки по строкам сверху вниз, внутри строки слева направо.
//
// Новая строка начинается, когда верхняя граница кружка отличается от верхней границы
// предыдущего кружка больше чем на rowFactor средних высот. Сравнение идёт только с
// соседом, а не с началом строки.
func GroupRows(candidates []entity.BubbleCandidate, rowFactor float64) []entity.QuestionRow {
	if len(candidates) == 0 {
		return nil
	}

	sorted := append([]entity.BubbleCandidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.Y < sorted[j].Box.Y
	})

	var sumHeight float64
	for _, c := range sorted {
		sumHeight += float64(c.Box.Height)
	}
	threshold := sumHeight / float64(len(sorted)) * rowFactor

	var rows []entity.QuestionRow
	var current entity.QuestionRow
	prevY := sorted[0].Box.Y
	for _, c := range sorted {
		if math.Abs(float64(c.Box.Y-prevY)) > threshold && len(current) > 0 {
			rows = append(rows, current)
			current = nil
		}
		current = append(current, c)
		prevY = c.Box.Y
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].Box.X < row[j].Box.X
		})
	}
	return rows
}
