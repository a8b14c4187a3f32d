package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// maxUploadBytes caps the multipart form held in memory before
// spilling to disk.
const maxUploadBytes = 32 << 20

// QuestionsRequest is the expected shape of the questions file.
type QuestionsRequest struct {
	Questions []string `json:"questions" validate:"required,min=1,dive,required"`
}

// AnswerHandler handles batch question-answering HTTP requests.
type AnswerHandler struct {
	answerService interfaces.AnswerService
	loader        interfaces.DocumentLoader
	uploadsDir    string
	validate      *validator.Validate
	logger        arbor.ILogger
}

// NewAnswerHandler creates a new answer handler.
func NewAnswerHandler(
	answerService interfaces.AnswerService,
	loader interfaces.DocumentLoader,
	uploadsDir string,
	logger arbor.ILogger,
) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
		loader:        loader,
		uploadsDir:    uploadsDir,
		validate:      validator.New(),
		logger:        logger,
	}
}

// AnswersHandler handles POST /api/answers requests.
//
// Expects a multipart form with two fields: questions_file (a JSON
// document with a non-empty "questions" array) and reference_file
// (a PDF or JSON document routed by its declared content type).
// Responds with a JSON object mapping each question to its answer.
func (h *AnswerHandler) AnswersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		WriteError(w, http.StatusBadRequest, "Request must be a multipart form with questions_file and reference_file")
		return
	}

	questions, ok := h.readQuestionsFile(w, r)
	if !ok {
		return
	}

	data, format, ok := h.readReferenceFile(w, r)
	if !ok {
		return
	}

	units, err := h.loader.Load(r.Context(), data, format)
	if err != nil {
		h.logger.Error().Err(err).Str("format", string(format)).Msg("Failed to load reference document")
		if errors.Is(err, models.ErrMalformedInput) || errors.Is(err, models.ErrUnsupportedFormat) {
			WriteError(w, http.StatusUnprocessableEntity, "Reference file could not be parsed")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	answers, err := h.answerService.GenerateAnswers(r.Context(), questions, units)
	if err != nil {
		h.logger.Error().Err(err).Int("questions", len(questions)).Msg("Answer generation failed")
		WriteError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.logger.Info().
		Int("questions", len(questions)).
		Int("answers", len(answers)).
		Msg("Answer batch completed")

	WriteJSON(w, http.StatusOK, answers)
}

// HealthHandler handles GET /api/answers/health requests.
func (h *AnswerHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.answerService.HealthCheck(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Answer service health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// readQuestionsFile extracts and validates the questions_file form
// field. Writes the error response and returns ok=false on failure.
func (h *AnswerHandler) readQuestionsFile(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	file, _, err := r.FormFile("questions_file")
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "questions_file is required")
		return nil, false
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read questions file")
		WriteError(w, http.StatusInternalServerError, "Failed to read questions_file")
		return nil, false
	}

	if !utf8.Valid(raw) {
		WriteError(w, http.StatusUnprocessableEntity, "questions_file must contain valid utf-8 characters only")
		return nil, false
	}

	var req QuestionsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "questions_file must be a valid JSON document")
		return nil, false
	}

	if err := h.validate.Struct(&req); err != nil {
		var validationErrors validator.ValidationErrors
		details := []string{}
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				details = append(details, fmt.Sprintf("%s failed on the '%s' rule", fieldErr.Namespace(), fieldErr.Tag()))
			}
		}
		WriteValidationError(w, "Validation Error", details)
		return nil, false
	}

	return req.Questions, true
}

// readReferenceFile extracts the reference_file form field, verifies
// its declared content type is supported, and persists a copy under
// the uploads directory with a unique name. Writes the error response
// and returns ok=false on failure.
func (h *AnswerHandler) readReferenceFile(w http.ResponseWriter, r *http.Request) ([]byte, models.DocumentFormat, bool) {
	file, header, err := r.FormFile("reference_file")
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "reference_file is required")
		return nil, "", false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	format, supported := models.FormatFromContentType(contentType)
	if !supported {
		WriteError(w, http.StatusUnprocessableEntity, "Unsupported file type for reference_file")
		return nil, "", false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read reference file")
		WriteError(w, http.StatusInternalServerError, "Failed to read reference_file")
		return nil, "", false
	}

	// Keep a copy of the upload for traceability; failure to persist
	// is logged but does not fail the request
	if err := h.saveUpload(header.Filename, data); err != nil {
		h.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Failed to persist uploaded reference file")
	}

	return data, format, true
}

// saveUpload writes the uploaded bytes to the uploads directory with a
// uuid-prefixed name to avoid collisions.
func (h *AnswerHandler) saveUpload(filename string, data []byte) error {
	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(filename))
	path := filepath.Join(h.uploadsDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}

	h.logger.Debug().
		Str("path", path).
		Int("size", len(data)).
		Msg("Reference file persisted")

	return nil
}
