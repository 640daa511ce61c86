package artifact

import (
	"image"
	"sync"

	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/domain/port"
)

// MemorySink собирает промежуточные изображения одного распознавания в памяти
type MemorySink struct {
	mu        sync.Mutex
	artifacts []entity.Artifact
}

// NewMemorySink создаёт пустой приёмник
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record запоминает изображение; повторная метка заменяет прежнее
func (s *MemorySink) Record(label string, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.artifacts {
		if s.artifacts[i].Label == label {
			s.artifacts[i].Image = img
			return
		}
	}
	s.artifacts = append(s.artifacts, entity.Artifact{Label: label, Image: img})
}

// Artifacts возвращает изображения в порядке записи
func (s *MemorySink) Artifacts() []entity.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entity.Artifact(nil), s.artifacts...)
}

// Проверка реализации интерфейса
var _ port.ArtifactSink = (*MemorySink)(nil)
