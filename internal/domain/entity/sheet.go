package entity

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// Unresolved ставится вместо ответа, если строку не удалось распознать
const Unresolved = "?"

// Метки промежуточных изображений в порядке этапов конвейера.
const (
	ArtifactPreprocessed = "1_preprocessed"
	ArtifactDocument     = "2_document_contour"
	ArtifactRectified    = "3_perspective_transformed"
	ArtifactBubbles      = "4_detected_bubbles"
	ArtifactMarked       = "5_marked_answers"
)

var (
	// ErrDecodeFailure входные байты не являются изображением
	ErrDecodeFailure = errors.New("failed to decode image")
	// ErrNoBubbles ни один контур не прошёл фильтр кружков
	ErrNoBubbles = errors.New("no bubbles detected")
)

// DetectionError сообщает, что кружки не найдены, и перечисляет сохранённые отладочные изображения.
type DetectionError struct {
	Err       error
	Artifacts []string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%v (artifacts: %s)", e.Err, strings.Join(e.Artifacts, ", "))
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// Artifact промежуточное изображение этапа
type Artifact struct {
	Label string
	Image image.Image
}

// Answer ответ на один вопрос
type Answer struct {
	Question int       // номер вопроса, с 1
	Choice   string    // буква варианта или Unresolved
	Resolved bool      // false, если строка пустая, неоднозначная или неполная
	Fills    []float64 // нормированная заполненность 0..100, пусто для неполных строк
}

// SheetResult итог распознавания бланка
type SheetResult struct {
	Answers    []Answer
	Width      int         // ширина изображения, на котором считались ответы
	Height     int         // высота этого изображения
	Marked     image.Image // копия с обведёнными выбранными кружками
	SkewAngle  float64     // найденный наклон в градусах
	Rotated    bool        // был ли применён поворот
	Rectified  bool        // найден ли контур листа
	Candidates int         // сколько кружков прошло фильтр
}

// AnswerMap возвращает ответы в виде {"Q1": "A", "Q2": "?"}
func (r *SheetResult) AnswerMap() map[string]string {
	out := make(map[string]string, len(r.Answers))
	for _, a := range r.Answers {
		out[fmt.Sprintf("Q%d", a.Question)] = a.Choice
	}
	return out
}

// ResolvedCount возвращает число распознанных вопросов
func (r *SheetResult) ResolvedCount() int {
	n := 0
	for _, a := range r.Answers {
		if a.Resolved {
			n++
		}
	}
	return n
}
