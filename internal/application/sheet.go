package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/disintegration/imaging"

	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/domain/port"
)

// SheetService запускает распознавание бланка и публикует промежуточные изображения.
type SheetService struct {
	scanner port.SheetScanner
	store   port.ArtifactStore
	newSink func() port.ArtifactCollector
	timeout time.Duration
}

// SheetOutput содержит ответы, итоговую картинку в JPEG и имена отладочных изображений.
type SheetOutput struct {
	Result    *entity.SheetResult
	Marked    []byte
	Artifacts []string
}

// NewSheetService создаёт сервис. store может быть nil, тогда изображения не сохраняются.
// timeout ограничивает одно распознавание, при 0 ограничения нет.
func NewSheetService(scanner port.SheetScanner, store port.ArtifactStore, newSink func() port.ArtifactCollector, timeout time.Duration) *SheetService {
	return &SheetService{
		scanner: scanner,
		store:   store,
		newSink: newSink,
		timeout: timeout,
	}
}

// Process распознаёт фото бланка.
// Если кружки не найдены, возвращает *entity.DetectionError с именами сохранённых изображений.
func (s *SheetService) Process(ctx context.Context, photo []byte) (*SheetOutput, error) {
	if s.scanner == nil {
		return nil, errors.New("scanner is not configured")
	}

	sink := s.newSink()
	result, scanErr := s.scan(ctx, photo, sink)

	names := s.publish(ctx, sink.Artifacts())
	if scanErr != nil {
		if errors.Is(scanErr, entity.ErrNoBubbles) {
			return nil, &entity.DetectionError{Err: scanErr, Artifacts: names}
		}
		return nil, scanErr
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, result.Marked, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode marked image: %w", err)
	}
	if s.store != nil {
		if err := s.store.SaveMarked(ctx, result.Marked); err != nil {
			log.Printf("Error saving marked image: %v", err)
		}
	}

	return &SheetOutput{Result: result, Marked: buf.Bytes(), Artifacts: names}, nil
}

// scan выполняет распознавание с ограничением по времени.
// Сам конвейер не прерывается, по истечении срока вызывающий просто перестаёт ждать.
func (s *SheetService) scan(ctx context.Context, photo []byte, sink port.ArtifactSink) (*entity.SheetResult, error) {
	if s.timeout <= 0 {
		return s.scanner.Scan(ctx, photo, sink)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		result *entity.SheetResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := s.scanner.Scan(ctx, photo, sink)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("scan: %w", ctx.Err())
	}
}

func (s *SheetService) publish(ctx context.Context, artifacts []entity.Artifact) []string {
	if s.store == nil || len(artifacts) == 0 {
		return nil
	}
	names, err := s.store.Publish(ctx, artifacts)
	if err != nil {
		log.Printf("Error publishing artifacts: %v", err)
	}
	return names
}
