package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/observability"
	"github.com/elcom/backend/internal/usecase"
)

const (
	serviceName         = "elcom-search"
	serviceVersion      = "1.0.0"
	defaultPopularLimit = 5
	maxPopularLimit     = 100
)

// ProductSearcher is the search use case consumed by the handlers
type ProductSearcher interface {
	Search(ctx context.Context, query string) (*domain.SearchOutcome, error)
	Popular(n int) []domain.PopularityEntry
	CatalogSize() int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher  ProductSearcher
	formatter *usecase.Formatter
	logger    zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher ProductSearcher, formatter *usecase.Formatter, logger zerolog.Logger) *Handler {
	if formatter == nil {
		formatter = usecase.NewFormatter(false)
	}
	return &Handler{
		searcher:  searcher,
		formatter: formatter,
		logger:    logger,
	}
}

// searchRequest accepts any JSON value for query; non-strings search as empty.
type searchRequest struct {
	Query json.RawMessage `json:"query"`
}

// SearchResponse is the body of a successful search
type SearchResponse struct {
	*domain.SearchOutcome
	Text string `json:"text"`
}

// webhookMessage is the chat widget's inbound message
type webhookMessage struct {
	Sender  string          `json:"sender"`
	Message json.RawMessage `json:"message"`
}

// WebhookReply is one outbound chat message
type WebhookReply struct {
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	size := 0
	if h.searcher != nil {
		size = h.searcher.CatalogSize()
	}

	status := "healthy"
	code := http.StatusOK
	if size == 0 {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      serviceName,
		"version":      serviceVersion,
		"catalog_size": size,
	})
}

// SearchProducts handles product search requests
func (h *Handler) SearchProducts(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, err)
		return
	}

	outcome, ok := h.search(c, stringValue(req.Query))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		SearchOutcome: outcome,
		Text:          h.formatter.RenderOutcome(outcome),
	})
}

// PopularProducts returns the most frequently returned top products
func (h *Handler) PopularProducts(c *gin.Context) {
	limit := defaultPopularLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxPopularLimit)
	}

	if h.searcher == nil {
		h.respondError(c, http.StatusServiceUnavailable, domain.ErrCatalogUnavailable, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": h.searcher.Popular(limit),
	})
}

// Webhook answers chat widget messages with the rendered search reply
func (h *Handler) Webhook(c *gin.Context) {
	var msg webhookMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		h.respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, err)
		return
	}

	outcome, ok := h.search(c, stringValue(msg.Message))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, []WebhookReply{{
		RecipientID: msg.Sender,
		Text:        h.formatter.RenderOutcome(outcome),
	}})
}

func (h *Handler) search(c *gin.Context, query string) (*domain.SearchOutcome, bool) {
	if h.searcher == nil {
		h.respondError(c, http.StatusServiceUnavailable, domain.ErrCatalogUnavailable, nil)
		return nil, false
	}

	outcome, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCatalogUnavailable):
			h.respondError(c, http.StatusServiceUnavailable, domain.ErrCatalogUnavailable, err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.respondError(c, http.StatusRequestTimeout, err, nil)
		default:
			h.respondError(c, http.StatusInternalServerError, errors.New("search failed"), err)
		}
		return nil, false
	}
	return outcome, true
}

func (h *Handler) respondError(c *gin.Context, code int, public, cause error) {
	logger := observability.FromContext(c.Request.Context(), h.logger)
	evt := logger.Warn()
	if code >= http.StatusInternalServerError {
		evt = logger.Error()
	}
	evt.Err(cause).Int("status", code).Str("path", c.FullPath()).Msg(public.Error())

	body := gin.H{"error": public.Error()}
	if code == http.StatusBadRequest && cause != nil {
		body["details"] = cause.Error()
	}
	c.JSON(code, body)
}

// stringValue returns raw as a string when it is a JSON string, else "".
func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
