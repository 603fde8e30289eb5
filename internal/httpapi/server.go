// Package httpapi is the HTTP intake boundary: it accepts Hostaway webhooks
// and Slack slash commands, enqueues them and returns immediately. All
// processing happens in the workers.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hostsync/internal/config"
	"hostsync/internal/models"
	"hostsync/internal/queue"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg      config.HTTPConfig
	webhooks queue.Queue
	commands queue.Queue
	server   *http.Server
	logger   zerolog.Logger
}

func NewServer(
	cfg config.HTTPConfig,
	webhooks, commands queue.Queue,
	prometheusEnabled bool,
	logger *zerolog.Logger,
) *Server {
	srv := &Server{
		cfg:      cfg,
		webhooks: webhooks,
		commands: commands,
		logger:   logger.With().Str("component", "httpapi").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/hostaway/webhook", srv.handleWebhook)
	mux.HandleFunc("/slack/command", srv.handleCommand)
	mux.HandleFunc("/healthz", srv.handleHealth)
	if prometheusEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	limiter := newRateLimiter(cfg.RateLimit)
	handler := srv.loggingMiddleware(limiter.wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP intake listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleWebhook accepts a Hostaway webhook delivery. The body is only
// checked for being JSON here; full validation happens in the worker so the
// webhook endpoint stays fast and Hostaway never times out waiting on us.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	if err := s.webhooks.Enqueue(r.Context(), body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue webhook payload")
		writeError(w, http.StatusServiceUnavailable, "failed to accept webhook")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Webhook data received successfully",
	})
}

// handleCommand accepts a Slack slash-command form post and enqueues it as a
// CommandRequest. Slack requires a response within three seconds, so the
// command itself runs in the worker.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	form := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}

	request := models.CommandRequest{
		Command: form["command"],
		Form:    form,
	}
	if request.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}

	payload, err := json.Marshal(request)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode command")
		return
	}

	if err := s.commands.Enqueue(r.Context(), payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue command")
		writeError(w, http.StatusServiceUnavailable, "failed to accept command")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response_type": "ephemeral", "text": "Working on it..."})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
