//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/domain/port"
)

// Scan возвращает ошибку, если сборка без тега gocv.
func (s *GoCVScanner) Scan(ctx context.Context, imageData []byte, sink port.ArtifactSink) (*entity.SheetResult, error) {
	_ = ctx
	_ = imageData
	_ = sink
	return nil, errors.New("gocv build tag is not enabled")
}
