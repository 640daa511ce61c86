package port

import (
	"context"
	"image"

	"sheet-scanner/internal/domain/entity"
)

// ArtifactSink принимает промежуточные изображения этапов распознавания
type ArtifactSink interface {
	// Record сохраняет изображение под меткой этапа
	Record(label string, img image.Image)
}

// SheetScanner интерфейс распознавания бланка ответов
type SheetScanner interface {
	// Scan декодирует изображение, находит отмеченные варианты и возвращает результат.
	// Промежуточные изображения передаются в sink (может быть nil).
	Scan(ctx context.Context, imageData []byte, sink ArtifactSink) (*entity.SheetResult, error)
}

// ArtifactCollector приёмник, из которого можно забрать накопленные изображения
type ArtifactCollector interface {
	ArtifactSink

	// Artifacts возвращает изображения в порядке записи
	Artifacts() []entity.Artifact
}
