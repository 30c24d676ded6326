package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kb-assistant/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	correlationKey    = "correlation_id"
)

const (
	detailUnauthorized = "OpenAI API key is invalid or missing. Please check your OPENAI_API_KEY environment variable."
	detailRateLimited  = "OpenAI API rate limit exceeded. Please wait or check your plan."
	detailUpstream     = "An error occurred while communicating with OpenAI: "
	detailKnowledge    = "The knowledge base could not be read."
	detailInvalidInput = `Request body must be a JSON object with a string "message" field.`
	detailInternal     = "Internal server error."
)

// UseCase is the ask operation consumed by the handler.
type UseCase interface {
	Ask(ctx context.Context, in usecase.AskInput) (usecase.AskOutput, error)
}

type askRequest struct {
	Message *string `json:"message" binding:"required"`
}

type askResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type Handler struct {
	uc     UseCase
	logger *slog.Logger
}

func NewHandler(uc UseCase, logger *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{uc: uc, logger: logger}, nil
}

// Router returns a gin engine with recovery, correlation and access logging
// middleware and every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(h.correlationID(), h.accessLog(), gin.CustomRecovery(h.recovered))
	h.Register(r)
	return r
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.health)
	r.POST("/ask", h.ask)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("rejected ask request", correlationKey, c.GetString(correlationKey), "err", err)
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: detailInvalidInput})
		return
	}

	out, err := h.uc.Ask(c.Request.Context(), usecase.AskInput{Message: *req.Message})
	if err != nil {
		status, detail := mapError(err)
		h.logger.Error("ask failed", correlationKey, c.GetString(correlationKey), "status", status, "err", err)
		c.JSON(status, errorResponse{Detail: detail})
		return
	}

	c.JSON(http.StatusOK, askResponse{Response: out.Response})
}

// mapError translates use case failures into a status and a client-visible
// detail. Only upstream failures echo the underlying error text.
func mapError(err error) (int, string) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		return http.StatusInternalServerError, detailInternal
	}
	switch uerr.Code {
	case usecase.ErrorUnauthorized:
		return http.StatusUnauthorized, detailUnauthorized
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests, detailRateLimited
	case usecase.ErrorUpstream:
		return http.StatusInternalServerError, detailUpstream + uerr.Cause()
	case usecase.ErrorInvalidInput:
		return http.StatusUnprocessableEntity, detailInvalidInput
	case usecase.ErrorInternal:
		if uerr.Reason == "knowledge_read_error" {
			return http.StatusInternalServerError, detailKnowledge
		}
	}
	return http.StatusInternalServerError, detailInternal
}

func (h *Handler) correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(correlationHeader))
		if id == "" {
			id = newUUID()
		}
		c.Set(correlationKey, id)
		c.Header(correlationHeader, id)
		c.Next()
	}
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("request",
			correlationKey, c.GetString(correlationKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (h *Handler) recovered(c *gin.Context, rec any) {
	h.logger.Error("panic while handling request", correlationKey, c.GetString(correlationKey), "panic", fmt.Sprint(rec))
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Detail: detailInternal})
}

var newUUID = func() string {
	return uuid.NewString()
}
