package delivery

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/pipeline"
)

// pushEnvelope is the wrapper a push subscription wraps around each message
type pushEnvelope struct {
	Message struct {
		Data        string `json:"data"` // base64-encoded payload
		MessageID   string `json:"messageId"`
		PublishTime string `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PushHandler serves push-delivered job messages over HTTP. The response
// status is the ack protocol: 2xx settles the message, 5xx requests
// redelivery. Payloads that can never be processed are settled so the
// broker does not loop on them.
type PushHandler struct {
	processor Processor
	logger    *zap.Logger
}

// NewPushHandler creates a push handler
func NewPushHandler(processor Processor, logger *zap.Logger) *PushHandler {
	return &PushHandler{
		processor: processor,
		logger:    logger,
	}
}

// Handle processes one push delivery
func (h *PushHandler) Handle(c *gin.Context) {
	var envelope pushEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.Warn("Discarding invalid push envelope", zap.Error(err))
		c.Status(http.StatusNoContent)
		return
	}

	data, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		h.logger.Warn("Discarding undecodable push payload",
			zap.String("message_id", envelope.Message.MessageID), zap.Error(err))
		c.Status(http.StatusNoContent)
		return
	}

	msg, err := DecodeJobMessage(data)
	if err != nil {
		h.logger.Warn("Discarding malformed job message",
			zap.String("message_id", envelope.Message.MessageID), zap.Error(err))
		c.Status(http.StatusNoContent)
		return
	}

	outcome := h.processor.Process(c.Request.Context(), pipeline.Job{
		BillID:    msg.BillID,
		CompanyID: msg.CompanyID,
	})
	if outcome == pipeline.OutcomeRetry {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.Status(http.StatusNoContent)
}
