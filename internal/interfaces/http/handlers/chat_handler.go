package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/linkyfire/guide-backend/internal/domain/entity"
	"github.com/linkyfire/guide-backend/internal/domain/repository"
	"github.com/linkyfire/guide-backend/pkg/safego"
)

// saveTimeout bounds the detached persistence task after a stream completes.
const saveTimeout = 10 * time.Second

// Geocoder resolves a "lat,lon" string into a place name.
type Geocoder interface {
	Resolve(ctx context.Context, coordinates string) (string, error)
}

// ModelClient wraps the chat-completion provider.
type ModelClient interface {
	Complete(ctx context.Context, userMessage, location string) (string, error)
	CompleteStream(ctx context.Context, userMessage string, deltaCh chan<- string) (string, error)
	SuggestAttractions(ctx context.Context, location string) ([]entity.Attraction, error)
}

// ChatHandler serves the chat, streaming, and suggestion endpoints.
type ChatHandler struct {
	geocoder Geocoder
	model    ModelClient
	messages repository.MessageRepository
	logger   *zap.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(geocoder Geocoder, model ModelClient, messages repository.MessageRepository, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		geocoder: geocoder,
		model:    model,
		messages: messages,
		logger:   logger,
	}
}

// MessageRequest is the chat request body.
type MessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// MessageResponse is the chat response body.
type MessageResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /chat?user_id=&location=
//
// Resolves the location, runs a single-shot completion, persists the exchange
// (awaited), and returns the response text.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
		return
	}

	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location query parameter is required"})
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	resolved, err := h.geocoder.Resolve(ctx, location)
	if err != nil {
		respondError(c, err)
		return
	}

	aiResponse, err := h.model.Complete(ctx, req.Message, resolved)
	if err != nil {
		h.logger.Error("Chat completion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}

	if _, err := h.messages.Save(ctx, userID, req.Message, aiResponse); err != nil {
		h.logger.Error("Failed to persist chat exchange", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Response: aiResponse})
}

// ChatStream handles POST /chat/stream
//
// Relays the upstream token stream to the caller as "data: <chunk>\n\n"
// frames, terminated by "data: [DONE]\n\n". The full accumulated text is
// persisted by a detached task after the terminal frame; persistence failures
// are logged, never surfaced. A client disconnect cancels the upstream drain
// and discards the partial buffer.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Stream callers are not required to identify themselves.
	userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)

	start := time.Now()
	ctx := c.Request.Context()

	type streamResult struct {
		full string
		err  error
	}

	deltaCh := make(chan string, 64)
	resultCh := make(chan streamResult, 1)

	safego.Go(h.logger, "chat-stream-producer", func() {
		full, err := h.model.CompleteStream(ctx, req.Message, deltaCh)
		close(deltaCh)
		resultCh <- streamResult{full: full, err: err}
	})

	// Headers go out with the first frame, so an upstream failure before any
	// output can still produce a plain JSON error response.
	wrote := false
	for chunk := range deltaCh {
		if !wrote {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Header("X-Accel-Buffering", "no")
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", chunk)
		c.Writer.Flush()
		wrote = true
	}

	result := <-resultCh
	if result.err != nil {
		h.logger.Error("Streaming completion failed",
			zap.Bool("partial", wrote),
			zap.Error(result.err),
		)
		if !wrote {
			c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(result.err)})
		}
		return
	}

	if !wrote {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Cache-Control", "no-cache")
	}
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()

	elapsedMs := time.Since(start).Milliseconds()
	full := result.full

	// Fire-and-forget persistence: detached context so finishing the HTTP
	// response cannot cancel the save.
	safego.Go(h.logger, "save-streamed-message", func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if _, err := h.messages.Save(saveCtx, userID, req.Message, full); err != nil {
			h.logger.Error("Failed to persist streamed exchange",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return
		}
		h.logger.Info("Persisted streamed exchange",
			zap.Int64("user_id", userID),
			zap.Int64("response_time_ms", elapsedMs),
		)
	})
}

// SuggestLocations handles GET /suggest-locations?user_id=&location=
//
// Both parameters must be truthy before any upstream call is made.
func (h *ChatHandler) SuggestLocations(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	location := c.Query("location")
	if err != nil || userID == 0 || location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and location are required"})
		return
	}

	ctx := c.Request.Context()

	resolved, resolveErr := h.geocoder.Resolve(ctx, location)
	if resolveErr != nil {
		respondError(c, resolveErr)
		return
	}

	spots, err := h.model.SuggestAttractions(ctx, resolved)
	if err != nil {
		h.logger.Error("Attraction suggestion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spots": spots})
}
