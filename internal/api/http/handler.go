package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	app "sheet-scanner/internal/application"
	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/domain/port"
	"sheet-scanner/internal/infrastructure/artifact"
)

const markedURL = "/marked"

type Handler struct {
	sheets    *app.SheetService
	artifacts port.ArtifactStore
	maxUpload int64
}

// uploadResponse ответ на успешное распознавание
type uploadResponse struct {
	Answers     map[string]string `json:"answers"`
	MarkedImage string            `json:"marked_image"`
	DebugImages []string          `json:"debug_images"`
	Questions   int               `json:"questions"`
	Resolved    int               `json:"resolved"`
	SkewAngle   float64           `json:"skew_angle"`
	Rotated     bool              `json:"rotated"`
	Rectified   bool              `json:"rectified"`
	Status      string            `json:"status"`
}

// errorResponse ответ с ошибкой
type errorResponse struct {
	Error       string   `json:"error"`
	DebugImages []string `json:"debug_images,omitempty"`
	Status      string   `json:"status"`
}

func NewHandler(sheets *app.SheetService, artifacts port.ArtifactStore, maxUpload int64) *Handler {
	return &Handler{
		sheets:    sheets,
		artifacts: artifacts,
		maxUpload: maxUpload,
	}
}

// Routes возвращает все маршруты с CORS
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", h.UploadHandler)
	mux.HandleFunc("POST /upload/{$}", h.UploadHandler)
	mux.HandleFunc("GET "+markedURL, h.MarkedHandler)
	mux.HandleFunc("GET /debug/{name}", h.DebugHandler)
	mux.HandleFunc("GET /health", h.HealthHandler)
	return corsMiddleware(mux)
}

// UploadHandler обрабатывает POST /upload/
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	// Парсим multipart form
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	// Получаем файл
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	out, err := h.sheets.Process(r.Context(), imageData)
	var detectionErr *entity.DetectionError
	switch {
	case errors.As(err, &detectionErr):
		log.Printf("No bubbles in %s (%d bytes)", header.Filename, len(imageData))
		respondJSON(w, errorResponse{
			Error:       "No bubbles detected",
			DebugImages: debugURLs(detectionErr.Artifacts),
			Status:      "error",
		}, http.StatusBadRequest)
		return
	case errors.Is(err, entity.ErrDecodeFailure):
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("Error processing %s: %v", header.Filename, err)
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := out.Result
	log.Printf("Scanned %s: %d/%d answers, skew %.1f°, rectified %t",
		header.Filename, res.ResolvedCount(), len(res.Answers), res.SkewAngle, res.Rectified)

	respondJSON(w, uploadResponse{
		Answers:     res.AnswerMap(),
		MarkedImage: markedURL,
		DebugImages: debugURLs(out.Artifacts),
		Questions:   len(res.Answers),
		Resolved:    res.ResolvedCount(),
		SkewAngle:   res.SkewAngle,
		Rotated:     res.Rotated,
		Rectified:   res.Rectified,
		Status:      "success",
	}, http.StatusOK)
}

// MarkedHandler отдаёт последнее изображение с отмеченными ответами
func (h *Handler) MarkedHandler(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, artifact.MarkedName, "No marked image found")
}

// DebugHandler отдаёт промежуточное изображение по имени, с расширением .jpg или без
func (h *Handler) DebugHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("name"), ".jpg")
	h.serveArtifact(w, r, name, "Debug image not found")
}

// HealthHandler проверка здоровья сервиса
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (h *Handler) serveArtifact(w http.ResponseWriter, r *http.Request, name, notFound string) {
	if h.artifacts == nil {
		respondError(w, notFound, http.StatusNotFound)
		return
	}
	path, ok := h.artifacts.Path(name)
	if !ok {
		respondError(w, notFound, http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

func debugURLs(names []string) []string {
	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, "/debug/"+name+".jpg")
	}
	return urls
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, errorResponse{Error: message, Status: "error"}, status)
}
