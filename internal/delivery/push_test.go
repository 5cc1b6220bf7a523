package delivery

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/pipeline"
)

func newPushRouter(processor Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewPushHandler(processor, zap.NewNop())
	router.POST("/", handler.Handle)
	return router
}

func pushRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()
	envelope := map[string]interface{}{
		"message": map[string]string{
			"data":        base64.StdEncoding.EncodeToString(payload),
			"messageId":   "msg-1",
			"publishTime": "2025-03-14T10:30:00Z",
		},
		"subscription": "projects/p/subscriptions/bill-scans",
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPushHandlerAcksProcessedMessage(t *testing.T) {
	processor := NewMockProcessor()
	router := newPushRouter(processor)

	billID := uuid.New()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, pushRequest(t, jobPayload(billID, uuid.New())))

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, processor.Jobs(), 1)
	assert.Equal(t, billID, processor.Jobs()[0].BillID)
}

func TestPushHandlerRequestsRedeliveryOnRetry(t *testing.T) {
	processor := NewMockProcessor()
	billID := uuid.New()
	processor.SetOutcome(billID, pipeline.OutcomeRetry)
	router := newPushRouter(processor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, pushRequest(t, jobPayload(billID, uuid.New())))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPushHandlerAcksMalformedPayload(t *testing.T) {
	// A payload that can never decode must be settled, not redelivered
	processor := NewMockProcessor()
	router := newPushRouter(processor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, pushRequest(t, []byte(`gibberish`)))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, processor.Jobs())
}

func TestPushHandlerAcksInvalidEnvelope(t *testing.T) {
	processor := NewMockProcessor()
	router := newPushRouter(processor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{{{`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, processor.Jobs())
}

func TestPushHandlerAcksUndecodableBase64(t *testing.T) {
	processor := NewMockProcessor()
	router := newPushRouter(processor)

	body := []byte(`{"message": {"data": "!!not-base64!!", "messageId": "m1"}, "subscription": "s"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, processor.Jobs())
}
