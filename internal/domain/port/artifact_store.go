package port

import (
	"context"
	"image"

	"sheet-scanner/internal/domain/entity"
)

// ArtifactStore хранит последние отладочные изображения и итоговую картинку
type ArtifactStore interface {
	// Publish сохраняет изображения и возвращает их имена
	Publish(ctx context.Context, artifacts []entity.Artifact) ([]string, error)

	// SaveMarked сохраняет итоговое изображение с отмеченными ответами
	SaveMarked(ctx context.Context, img image.Image) error

	// Path возвращает путь к файлу по имени, false если такого нет
	Path(name string) (string, bool)
}
