package artifact

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/domain/port"
)

// MarkedName имя итогового изображения с отмеченными ответами
const MarkedName = "marked"

// DirStore хранит последние отладочные изображения в каталоге в виде JPEG.
// Отдаёт только те имена, которые были сохранены.
type DirStore struct {
	dir     string
	quality int

	mu    sync.RWMutex
	names map[string]string
}

// NewDirStore создаёт каталог, если его нет
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &DirStore{
		dir:     dir,
		quality: 90,
		names:   make(map[string]string),
	}, nil
}

// Publish сохраняет изображения под их метками и возвращает имена
func (s *DirStore) Publish(ctx context.Context, artifacts []entity.Artifact) ([]string, error) {
	names := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return names, err
		}
		if err := s.save(a.Label, a.Image); err != nil {
			return names, err
		}
		names = append(names, a.Label)
	}
	return names, nil
}

// SaveMarked сохраняет итоговое изображение
func (s *DirStore) SaveMarked(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.save(MarkedName, img)
}

// Path возвращает путь к сохранённому изображению
func (s *DirStore) Path(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.names[name]
	return path, ok
}

func (s *DirStore) save(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("artifact %s: nil image", name)
	}
	path := filepath.Join(s.dir, name+".jpg")

	// Пишем в отдельный временный файл, чтобы читатель не увидел недописанный JPEG.
	f, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("artifact %s: %w", name, err)
	}
	tmp := f.Name()
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(s.quality)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("artifact %s: encode: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artifact %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artifact %s: %w", name, err)
	}
	s.names[name] = path
	return nil
}

// Проверка реализации интерфейса
var _ port.ArtifactStore = (*DirStore)(nil)
