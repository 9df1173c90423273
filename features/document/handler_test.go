package document_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/backend/features/document"
	"inkwell/backend/internal/gateway"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockSourceStore struct {
	mock.Mock
}

func (m *MockSourceStore) OwnerOf(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockSourceStore) UpdateProcessingStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, endpoint string, payload any) (*gateway.Outcome, error) {
	args := m.Called(ctx, endpoint, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Outcome), args.Error(1)
}

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) JobDispatched(ctx context.Context, kind, resourceID string) {
	m.Called(ctx, kind, resourceID)
}

func (m *MockAuditor) JobFailed(ctx context.Context, kind, resourceID, reason string) {
	m.Called(ctx, kind, resourceID, reason)
}

func testConfig() document.Config {
	return document.Config{
		ProjectURL: "https://example.test",
		WebhookURL: "https://hooks.example.test/document",
		Secret:     "s3cret",
	}
}

func newRequest(body string, withAuth bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/process-document", strings.NewReader(body))
	if withAuth {
		req.Header.Set("Authorization", "Bearer token-1")
	}
	return req
}

func TestProcess_MissingAuthHeader(t *testing.T) {
	verifier := new(MockVerifier)
	sources := new(MockSourceStore)
	dispatcher := new(MockDispatcher)
	auditor := new(MockAuditor)
	h := document.NewHandler(verifier, sources, dispatcher, auditor, testConfig())

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1","filePath":"docs/a.pdf","sourceType":"pdf"}`, false))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	sources.AssertNotCalled(t, "UpdateProcessingStatus", mock.Anything, mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_RejectedToken(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "token-1").Return("", gateway.ErrUnauthenticated)
	h := document.NewHandler(verifier, new(MockSourceStore), new(MockDispatcher), new(MockAuditor), testConfig())

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1","filePath":"docs/a.pdf","sourceType":"pdf"}`, true))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProcess_MissingFields(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "token-1").Return("user-1", nil)
	h := document.NewHandler(verifier, new(MockSourceStore), new(MockDispatcher), new(MockAuditor), testConfig())

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1"}`, true))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// The response names the absent fields.
	assert.Contains(t, w.Body.String(), "filePath")
	assert.Contains(t, w.Body.String(), "sourceType")
}

func TestProcess_SourceNotFound(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "token-1").Return("user-1", nil)
	sources := new(MockSourceStore)
	sources.On("OwnerOf", mock.Anything, "s1").Return("", sql.ErrNoRows)
	h := document.NewHandler(verifier, sources, new(MockDispatcher), new(MockAuditor), testConfig())

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1","filePath":"docs/a.pdf","sourceType":"pdf"}`, true))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcess_OwnershipMismatch(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "token-1").Return("user-1", nil)
	sources := new(MockSourceStore)
	sources.On("OwnerOf", mock.Anything, "s1").Return("someone-else", nil)
	dispatcher := new(MockDispatcher)
	h := document.NewHandler(verifier, sources, dispatcher, new(MockAuditor), testConfig())

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1","filePath":"docs/a.pdf","sourceType":"pdf"}`, true))

	assert.Equal(t, http.StatusForbidden, w.Code)
	dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	sources.AssertNotCalled(t, "UpdateProcessingStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_Misconfigured(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "token-1").Return("user-1", nil)
	sources := new(MockSourceStore)
	sources.On("OwnerOf", mock.Anything, "s1").Return("user-1", nil)
	h := document.NewHandler(verifier, sources, new(MockDispatcher), new(MockAuditor), document.Config{ProjectURL: "https://example.test"})

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1","filePath":"docs/a.pdf","sourceType":"pdf"}`, true))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Deployment errors must not mutate the resource status.
	sources.AssertNotCalled(t, "UpdateProcessingStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_DispatchFailure(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "token-1").Return("user-1", nil)
	sources := new(MockSourceStore)
	sources.On("OwnerOf", mock.Anything, "s1").Return("user-1", nil)
	sources.On("UpdateProcessingStatus", mock.Anything, "s1", "processing").Return(nil)
	sources.On("UpdateProcessingStatus", mock.Anything, "s1", "failed").Return(nil)
	dispatcher := new(MockDispatcher)
	dispatcher.On("Send", mock.Anything, "https://hooks.example.test/document", mock.Anything).
		Return(nil, &gateway.DispatchError{StatusCode: 502, Body: "bad gateway"})
	auditor := new(MockAuditor)
	auditor.On("JobFailed", mock.Anything, "document-processing", "s1", mock.Anything).Return()

	h := document.NewHandler(verifier, sources, dispatcher, auditor, testConfig())

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1","filePath":"docs/a.pdf","sourceType":"pdf"}`, true))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	sources.AssertCalled(t, "UpdateProcessingStatus", mock.Anything, "s1", "failed")
	auditor.AssertExpectations(t)
}

func TestProcess_Success(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "token-1").Return("user-1", nil)
	sources := new(MockSourceStore)
	sources.On("OwnerOf", mock.Anything, "s1").Return("user-1", nil)
	sources.On("UpdateProcessingStatus", mock.Anything, "s1", "processing").Return(nil)

	var sent document.Payload
	dispatcher := new(MockDispatcher)
	dispatcher.On("Send", mock.Anything, "https://hooks.example.test/document", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(document.Payload) }).
		Return(&gateway.Outcome{StatusCode: 200, Body: []byte(`{"accepted":true}`)}, nil)
	auditor := new(MockAuditor)
	auditor.On("JobDispatched", mock.Anything, "document-processing", "s1").Return()

	h := document.NewHandler(verifier, sources, dispatcher, auditor, testConfig())

	w := httptest.NewRecorder()
	h.Process(w, newRequest(`{"sourceId":"s1","filePath":"docs/a.pdf","sourceType":"pdf"}`, true))

	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, document.Payload{
		SourceID:    "s1",
		FileURL:     "https://example.test/storage/v1/object/public/sources/docs/a.pdf",
		FilePath:    "docs/a.pdf",
		SourceType:  "pdf",
		CallbackURL: "https://example.test/functions/v1/process-document-callback",
	}, sent)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, map[string]any{"accepted": true}, resp["data"])

	auditor.AssertExpectations(t)
	sources.AssertExpectations(t)
}
