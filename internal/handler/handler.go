package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/angeloszaimis/action-router/internal/action"
	"github.com/angeloszaimis/action-router/internal/envelope"
	"github.com/angeloszaimis/action-router/internal/router"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	HeaderRequestID = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Invoker runs one invocation to an envelope. *router.Router implements it.
type Invoker interface {
	Invoke(ctx context.Context, inv action.Invocation) envelope.Envelope
}

type InvokeHandler struct {
	logger  *slog.Logger
	invoker Invoker
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *InvokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, requestID)

	logger := h.logger.With(slog.String("request_id", requestID))
	logger.Info("Received request",
		slog.String("from", extractClientIP(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("proto", r.Proto),
		slog.String("user_agent", r.UserAgent()))

	start := time.Now()
	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
	defer func() {
		logger.Info("Request completed",
			slog.Int("status", wrapped.statusCode),
			slog.Duration("duration", time.Since(start)))
	}()

	if r.Method != http.MethodPost {
		wrapped.Header().Set("Allow", http.MethodPost)
		writeJSON(wrapped, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(wrapped, r.Body, maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(wrapped, status, errorResponse{Error: "cannot read request body", Details: err.Error()})
		return
	}

	inv, err := action.DecodeInvocation(body)
	if err != nil {
		logger.Warn("Rejected invocation", slog.Any("err", err))
		writeJSON(wrapped, http.StatusBadRequest, errorResponse{Error: "invalid invocation", Details: err.Error()})
		return
	}

	ctx := router.WithRequestID(r.Context(), requestID)
	writeJSON(wrapped, http.StatusOK, h.invoker.Invoke(ctx, inv))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func NewInvokeHandler(logger *slog.Logger, invoker Invoker) *InvokeHandler {
	return &InvokeHandler{
		logger:  logger,
		invoker: invoker,
	}
}
