package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/davicafu/eventpub/internal/event/application"
	"github.com/davicafu/eventpub/internal/event/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EventHandler expone el publisher por HTTP
type EventHandler struct {
	publisher *application.Publisher
}

func NewEventHandler(publisher *application.Publisher) *EventHandler {
	return &EventHandler{publisher: publisher}
}

type publishRequest struct {
	Type    domain.EventKind    `json:"type"`
	Source  domain.Source       `json:"source"`
	Channel domain.Channel      `json:"channel"`
	Payload jsoniter.RawMessage `json:"payload"`
}

// ---------------- Handlers ----------------

// PublishEvent endpoint POST /events
func (h *EventHandler) PublishEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req publishRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	shape, ok := h.publisher.Shapes().Shape(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrUnknownEventKind.Error(), "type": req.Type})
		return
	}

	payload, err := domain.DecodePayload(shape, req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txID, err := h.publisher.Publish(c.Request.Context(), req.Type, req.Source, req.Channel, payload)
	if err != nil {
		writePublishError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"transactionId": txID})
}

// ListRoutes endpoint GET /routes
func (h *EventHandler) ListRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, h.publisher.Routes().Routes())
}

func writePublishError(c *gin.Context, err error) {
	var dErr *domain.DispatchError
	switch {
	case errors.As(err, &dErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         err.Error(),
			"transactionId": dErr.TransactionID,
			"persisted":     dErr.Persisted(),
		})
	case errors.Is(err, domain.ErrUnknownEventKind),
		errors.Is(err, domain.ErrInvalidHeader),
		errors.Is(err, domain.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnroutableEventKind),
		errors.Is(err, domain.ErrUnsupportedPayloadMapping):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
