package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/holon/witness/internal/engine"
	"github.com/holon/witness/internal/gateway"
	"github.com/holon/witness/internal/mode"
	"github.com/holon/witness/internal/store"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine  *engine.Engine
	archive *store.Store
	restGW  *gateway.RESTAdapter
	logger  *zap.Logger
}

// NewHandler creates a new API handler. archive and restGW may be nil.
func NewHandler(eng *engine.Engine, archive *store.Store, restGW *gateway.RESTAdapter, logger *zap.Logger) *Handler {
	return &Handler{
		engine:  eng,
		archive: archive,
		restGW:  restGW,
		logger:  logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", h.landingPage)
	r.Get("/api/health", h.healthCheck)

	r.Route("/quantum", func(r chi.Router) {
		r.Post("/contemplate", h.contemplate)
		r.Get("/status", h.status)
		r.Get("/modes", h.listModes)
		r.Get("/thoughts", h.recentThoughts)
	})

	if h.restGW != nil {
		r.Mount("/api/gateway/rest", h.restGW.Routes())
	}

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type contemplateRequest struct {
	Prompt string `json:"prompt"`
	Depth  *int   `json:"depth"`
	Mode   string `json:"mode"`
}

func (h *Handler) contemplate(w http.ResponseWriter, r *http.Request) {
	var req contemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	depth := engine.DefaultDepth
	if req.Depth != nil {
		depth = *req.Depth
	}
	if depth < engine.MinDepth || depth > engine.MaxDepth {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "depth must be between 1 and 10",
		})
		return
	}

	m := mode.Standard
	if req.Mode != "" {
		var err error
		if m, err = mode.Parse(req.Mode); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	thoughts, err := h.engine.Contemplate(r.Context(), req.Prompt, depth, m)
	if err != nil {
		// The loop halted mid-sequence; return what completed.
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":    err.Error(),
			"thoughts": thoughts,
		})
		return
	}
	writeJSON(w, http.StatusOK, thoughts)
}

type statusResponse struct {
	Status            string   `json:"status"`
	Model             string   `json:"model"`
	ThoughtsProcessed int      `json:"thoughts_processed"`
	Uptime            string   `json:"uptime"`
	ModesAvailable    []string `json:"modes_available"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:            "active",
		Model:             stats.Model,
		ThoughtsProcessed: stats.TotalThoughts,
		Uptime:            stats.Uptime,
		ModesAvailable:    stats.ModesAvailable,
	})
}

type modeInfo struct {
	Mode        string  `json:"mode"`
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
}

func (h *Handler) listModes(w http.ResponseWriter, r *http.Request) {
	modes := make([]modeInfo, 0, len(mode.All()))
	for _, m := range mode.All() {
		modes = append(modes, modeInfo{
			Mode:        string(m),
			Description: m.Description(),
			Temperature: m.Temperature(),
		})
	}
	writeJSON(w, http.StatusOK, modes)
}

func (h *Handler) recentThoughts(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "thought archive not configured"})
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	thoughts, err := h.archive.RecentThoughts(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, thoughts)
}

const landingHTML = `<!DOCTYPE html>
<html>
<head><title>Recursive Witness API</title></head>
<body>
<h1>Recursive Witness API</h1>
<ul>
<li><b>POST /quantum/contemplate</b> — generate recursive thoughts</li>
<li><b>GET /quantum/status</b> — system status</li>
<li><b>GET /quantum/modes</b> — available thinking modes</li>
<li><b>GET /quantum/thoughts</b> — recent archived thoughts</li>
</ul>
</body>
</html>
`

func (h *Handler) landingPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(landingHTML))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
