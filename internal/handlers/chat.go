package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
)

const maxRequestBodyBytes = 1 << 20

type completer interface {
	Complete(ctx context.Context, req models.ChatRequest) (string, error)
}

// ChatHandler relays a conversation to the completion provider. Rate
// limiting happens in middleware before Relay runs.
type ChatHandler struct {
	completions      completer
	maxMessageLength int
	maxDuration      time.Duration
}

func NewChatHandler(completions completer, maxMessageLength int, maxDuration time.Duration) *ChatHandler {
	return &ChatHandler{
		completions:      completions,
		maxMessageLength: maxMessageLength,
		maxDuration:      maxDuration,
	}
}

func (h *ChatHandler) Relay(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := r.Header.Get(middleware.RequestIDHeader)

	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.ErrorContext(r.Context(), "relay panic", "panic", rec, "request_id", requestID)
			writeText(w, http.StatusInternalServerError, fmt.Sprintf("Server error: %v", rec))
		}
		slog.InfoContext(r.Context(), "relay finished",
			"duration_ms", time.Since(start).Milliseconds(), "request_id", requestID)
	}()

	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	if err := h.validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.maxDuration)
	defer cancel()

	reply, err := h.completions.Complete(ctx, req)
	if err != nil {
		if isTimeout(err) {
			slog.WarnContext(r.Context(), "relay timed out", "error", err, "request_id", requestID)
			writeText(w, http.StatusGatewayTimeout, fmt.Sprintf("Request timed out after %s", h.maxDuration))
			return
		}
		slog.ErrorContext(r.Context(), "relay failed", "error", err, "request_id", requestID)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Content: reply})
}

// validate checks only the trailing message; an empty conversation passes.
func (h *ChatHandler) validate(req models.ChatRequest) error {
	if len(req.Messages) == 0 {
		return nil
	}
	last := req.Messages[len(req.Messages)-1]
	if utf8.RuneCountInString(last.Content) > h.maxMessageLength {
		return fmt.Errorf("Message too long. Maximum length is %d characters.", h.maxMessageLength)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
