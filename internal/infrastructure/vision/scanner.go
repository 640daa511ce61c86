package vision

import "sheet-scanner/internal/domain/port"

// GoCVScanner распознаёт бланк ответов средствами OpenCV.
// Без тега сборки gocv Scan возвращает ошибку.
type GoCVScanner struct {
	Params Params
}

// NewGoCVScanner создаёт сканер с заданными параметрами.
func NewGoCVScanner(params Params) *GoCVScanner {
	return &GoCVScanner{Params: params}
}

// Проверка реализации интерфейса
var _ port.SheetScanner = (*GoCVScanner)(nil)
