// Package server serves the ingredient optimizer web UI and its JSON API.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	"github.com/iwvelando/ingredient-optimizer/internal/form"
	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/iwvelando/ingredient-optimizer/internal/view"
	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"github.com/iwvelando/ingredient-optimizer/pkg/ingredients"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

//go:embed static/*
var staticFiles embed.FS

const staticPrefix = "/static/"

type handler struct {
	logger      *zap.Logger
	calc        form.Calculator
	sessions    *sessionStore
	clients     *lru[*rate.Limiter]
	limit       rate.Limit
	burst       int
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the web UI and optimizer API.
// A nil cfg uses DefaultConfig.
func NewHandler(logger *zap.Logger, calc form.Calculator, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	maxClients := cfg.MaxSessions
	if maxClients <= 0 {
		maxClients = constants.DefaultMaxSessions
	}

	h := &handler{
		logger:      logger,
		calc:        calc,
		sessions:    newSessionStore(cfg.MaxSessions, rate.Limit(cfg.RateLimit), cfg.RateLimitBurst, logger),
		clients:     newLRU[*rate.Limiter](maxClients, nil),
		limit:       rate.Limit(cfg.RateLimit),
		burst:       cfg.RateLimitBurst,
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Web UI
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/ingredients", h.handleIngredientsPage)
	mux.HandleFunc("/optimize", h.handleOptimize)
	mux.HandleFunc("/notification/dismiss", h.handleDismiss)

	// JSON API
	mux.HandleFunc("/api/optimize", h.handleAPIOptimize)
	mux.HandleFunc("/api/ingredients", h.handleAPIIngredients)
	mux.HandleFunc("/api/version", h.handleVersion)

	// System endpoints
	mux.HandleFunc("/health", h.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	mux.Handle(staticPrefix, http.StripPrefix(staticPrefix, http.FileServer(http.FS(sub))))

	return h.withMiddleware(mux)
}

func (h *handler) newLimiter() *rate.Limiter {
	return rate.NewLimiter(h.limit, h.burst)
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.renderPage(w, r, view.ParseTab(r.URL.Query().Get("tab")), "server.handleIndex")
}

func (h *handler) handleIngredientsPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.renderPage(w, r, view.TabIngredients, "server.handleIngredientsPage")
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.logger.Warn("form submission too large",
				zap.String("op", "server.handleOptimize"),
				zap.Int64("limit", h.maxBodySize),
			)
			http.Error(w, "request exceeds limit of "+humanize.IBytes(uint64(h.maxBodySize)), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("failed to parse form: %v", err), http.StatusBadRequest)
		return
	}

	sess := h.sessionFor(w, r)

	values := form.Values{}
	for _, field := range form.Fields {
		if _, ok := r.PostForm[field.Key]; ok {
			values[field.Key] = r.PostForm.Get(field.Key)
		}
	}

	status := http.StatusOK
	if sess.limiter.Allow() {
		// The optimizer call outlives a browser that navigates away.
		outcome := sess.form.SubmitValues(context.WithoutCancel(r.Context()), values, h.calc)

		h.logger.Info("form submitted",
			zap.String("op", "server.handleOptimize"),
			zap.String("requestId", requestIDFrom(r.Context())),
			zap.String("outcome", string(outcome)),
		)
	} else {
		rateLimitRejects.Inc()
		sess.form.Throttle(values)
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", "1")

		h.logger.Warn("form submission throttled",
			zap.String("op", "server.handleOptimize"),
			zap.String("requestId", requestIDFrom(r.Context())),
		)
	}

	h.render(w, r, status, view.Page(view.PageData{
		Tab:     view.TabOptimizer,
		Version: h.version,
		State:   sess.form.Snapshot(),
	}), "server.handleOptimize")
}

func (h *handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.formFor(w, r).DismissNotification()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type invalidInputResponse struct {
	Error  string      `json:"error"`
	Fields form.Errors `json:"fields"`
}

func (h *handler) handleAPIOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var payload map[string]optimizer.Text
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				"request exceeds limit of "+humanize.IBytes(uint64(h.maxBodySize)), "server.handleAPIOptimize")
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "server.handleAPIOptimize")
		return
	}

	values := make(form.Values, len(payload))
	for key, value := range payload {
		values[key] = value.String()
	}

	targets, errs := form.Parse(values)
	if len(errs) > 0 {
		h.logger.Debug("optimize request rejected",
			zap.String("op", "server.handleAPIOptimize"),
			zap.String("requestId", requestIDFrom(r.Context())),
			zap.Int("invalidFields", len(errs)),
		)
		h.writeJSON(w, http.StatusBadRequest, invalidInputResponse{Error: "Invalid input", Fields: errs})
		return
	}

	start := time.Now()
	result, err := h.calc.Calculate(r.Context(), targets)
	if err != nil {
		h.logger.Warn("optimizer call failed",
			zap.String("op", "server.handleAPIOptimize"),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, r, http.StatusBadGateway, optimizer.UserMessage(err), "server.handleAPIOptimize")
		return
	}

	h.logger.Info("optimization computed",
		zap.String("op", "server.handleAPIOptimize"),
		zap.String("requestId", requestIDFrom(r.Context())),
		zap.Int("ingredients", len(result.UsedIngredients)),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleAPIIngredients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if name := r.URL.Query().Get("name"); name != "" {
		item, ok := ingredients.Find(name)
		if !ok {
			h.respondErrorWithOp(w, r, http.StatusNotFound, "unknown ingredient", "server.handleAPIIngredients")
			return
		}
		h.writeJSON(w, http.StatusOK, item)
		return
	}

	h.writeJSON(w, http.StatusOK, ingredients.All())
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, tab view.Tab, op string) {
	f := h.formFor(w, r)
	h.render(w, r, http.StatusOK, view.Page(view.PageData{
		Tab:     tab,
		Version: h.version,
		State:   f.Snapshot(),
	}), op)
}

// render buffers the component so a render failure can still produce a 500.
func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component, op string) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page",
			zap.String("op", op),
			zap.Error(err),
		)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write page",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestId", requestIDFrom(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
