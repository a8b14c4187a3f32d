package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/models"
)

// mockAnswerService implements interfaces.AnswerService for testing
type mockAnswerService struct {
	generateFunc func(ctx context.Context, questions []string, units []models.TextUnit) (map[string]string, error)
	healthErr    error
}

func (m *mockAnswerService) GenerateAnswers(ctx context.Context, questions []string, units []models.TextUnit) (map[string]string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, questions, units)
	}
	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q] = "an answer"
	}
	return answers, nil
}

func (m *mockAnswerService) HealthCheck(ctx context.Context) error {
	return m.healthErr
}

// mockLoader implements interfaces.DocumentLoader for testing
type mockLoader struct {
	loadFunc func(ctx context.Context, data []byte, format models.DocumentFormat) ([]models.TextUnit, error)
}

func (m *mockLoader) Load(ctx context.Context, data []byte, format models.DocumentFormat) ([]models.TextUnit, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, data, format)
	}
	return []models.TextUnit{
		{Content: "some text", Source: models.SourceLocator{Kind: models.LocatorRecord, Value: 0}},
	}, nil
}

func newTestHandler(t *testing.T, svc *mockAnswerService, loader *mockLoader) *AnswerHandler {
	t.Helper()
	if svc == nil {
		svc = &mockAnswerService{}
	}
	if loader == nil {
		loader = &mockLoader{}
	}
	return NewAnswerHandler(svc, loader, t.TempDir(), arbor.NewLogger())
}

// buildMultipartRequest assembles a POST /api/answers request with the
// given field contents and reference content type.
func buildMultipartRequest(t *testing.T, questionsJSON []byte, referenceData []byte, referenceType string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if questionsJSON != nil {
		part, err := writer.CreateFormFile("questions_file", "questions.json")
		require.NoError(t, err)
		_, err = part.Write(questionsJSON)
		require.NoError(t, err)
	}

	if referenceData != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="reference_file"; filename="reference.dat"`)
		header.Set("Content-Type", referenceType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(referenceData)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/answers", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAnswersHandler_Success(t *testing.T) {
	svc := &mockAnswerService{
		generateFunc: func(ctx context.Context, questions []string, units []models.TextUnit) (map[string]string, error) {
			assert.Equal(t, []string{"What is this?"}, questions)
			assert.NotEmpty(t, units)
			return map[string]string{"What is this?": "A reference document."}, nil
		},
	}
	handler := newTestHandler(t, svc, nil)

	req := buildMultipartRequest(t,
		[]byte(`{"questions": ["What is this?"]}`),
		[]byte(`{"messages": [{"content": "hello"}]}`),
		"application/json",
	)
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, map[string]string{"What is this?": "A reference document."}, response)
}

func TestAnswersHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/answers", nil)
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnswersHandler_MissingQuestionsFile(t *testing.T) {
	handler := newTestHandler(t, nil, nil)

	req := buildMultipartRequest(t, nil, []byte(`{}`), "application/json")
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnswersHandler_InvalidUTF8Questions(t *testing.T) {
	handler := newTestHandler(t, nil, nil)

	req := buildMultipartRequest(t, []byte{0xff, 0xfe, 0xfd}, []byte(`{}`), "application/json")
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "utf-8")
}

func TestAnswersHandler_QuestionsValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Not JSON", body: `this is not json`},
		{name: "Missing questions key", body: `{"items": ["a"]}`},
		{name: "Empty questions array", body: `{"questions": []}`},
		{name: "Blank question entry", body: `{"questions": ["valid", ""]}`},
		{name: "Wrong type", body: `{"questions": "just a string"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, nil, nil)

			req := buildMultipartRequest(t, []byte(tt.body), []byte(`{}`), "application/json")
			rec := httptest.NewRecorder()
			handler.AnswersHandler(rec, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestAnswersHandler_UnsupportedReferenceType(t *testing.T) {
	var loaderCalls, serviceCalls int
	loader := &mockLoader{
		loadFunc: func(ctx context.Context, data []byte, format models.DocumentFormat) ([]models.TextUnit, error) {
			loaderCalls++
			return nil, nil
		},
	}
	svc := &mockAnswerService{
		generateFunc: func(ctx context.Context, questions []string, units []models.TextUnit) (map[string]string, error) {
			serviceCalls++
			return nil, nil
		},
	}
	handler := newTestHandler(t, svc, loader)

	req := buildMultipartRequest(t,
		[]byte(`{"questions": ["a question"]}`),
		[]byte("plain text content"),
		"text/plain",
	)
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported file type")

	// Rejection happens before any pipeline work
	assert.Zero(t, loaderCalls)
	assert.Zero(t, serviceCalls)
}

func TestAnswersHandler_MissingReferenceFile(t *testing.T) {
	handler := newTestHandler(t, nil, nil)

	req := buildMultipartRequest(t, []byte(`{"questions": ["a question"]}`), nil, "")
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnswersHandler_MalformedReference(t *testing.T) {
	loader := &mockLoader{
		loadFunc: func(ctx context.Context, data []byte, format models.DocumentFormat) ([]models.TextUnit, error) {
			return nil, fmt.Errorf("%w: broken document", models.ErrMalformedInput)
		},
	}
	handler := newTestHandler(t, nil, loader)

	req := buildMultipartRequest(t,
		[]byte(`{"questions": ["a question"]}`),
		[]byte("broken"),
		"application/pdf",
	)
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnswersHandler_PipelineFailure(t *testing.T) {
	svc := &mockAnswerService{
		generateFunc: func(ctx context.Context, questions []string, units []models.TextUnit) (map[string]string, error) {
			return nil, fmt.Errorf("%w: provider is down", models.ErrEmbeddingService)
		},
	}
	handler := newTestHandler(t, svc, nil)

	req := buildMultipartRequest(t,
		[]byte(`{"questions": ["a question"]}`),
		[]byte(`{"messages": [{"content": "hello"}]}`),
		"application/json",
	)
	rec := httptest.NewRecorder()
	handler.AnswersHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	// Internal failure detail must not leak to the client
	assert.NotContains(t, rec.Body.String(), "provider is down")
}

func TestHealthHandler(t *testing.T) {
	handler := newTestHandler(t, &mockAnswerService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/answers/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := newTestHandler(t, &mockAnswerService{healthErr: fmt.Errorf("provider unreachable")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/answers/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
