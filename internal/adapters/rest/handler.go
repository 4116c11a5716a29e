package rest

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/cadenza/internal/core/ports"
	"github.com/ewilliams-labs/cadenza/internal/core/services"
)

// Handler manages the HTTP interface for the engine.
type Handler struct {
	engine       *services.Engine
	materializer ports.PlaylistMaterializer
	presets      ports.PresetRepository
	log          zerolog.Logger
	router       *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes.
// The preset repository may be nil; preset routes then answer 501.
func NewHandler(engine *services.Engine, materializer ports.PlaylistMaterializer, presets ports.PresetRepository, log zerolog.Logger) *Handler {
	h := &Handler{
		engine:       engine,
		materializer: materializer,
		presets:      presets,
		log:          log,
		router:       http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// It acts as a proxy, passing the request to our internal router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	h.router.HandleFunc("POST /playlists/generate", h.GeneratePlaylist)
	h.router.HandleFunc("POST /playlists/preview", h.PreviewPlaylist)

	h.router.HandleFunc("GET /presets", h.ListPresets)
	h.router.HandleFunc("GET /presets/{name}", h.GetPreset)
	h.router.HandleFunc("PUT /presets/{name}", h.SavePreset)
	h.router.HandleFunc("DELETE /presets/{name}", h.DeletePreset)
	h.router.HandleFunc("POST /presets/{name}/run", h.RunPreset)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Cadenza is live 🎶"})
}
