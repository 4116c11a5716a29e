package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

type generateRequest struct {
	Seeds  domain.SeedSpec       `json:"seeds"`
	Filter domain.FilterSpec     `json:"filter"`
	Params domain.PlaylistParams `json:"params"`
}

type trackResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type generateResponse struct {
	RunID       string          `json:"run_id"`
	Strategy    string          `json:"strategy"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tracks      []trackResponse `json:"tracks"`
	Empty       bool            `json:"empty"`
	PlaylistKey string          `json:"playlist_key,omitempty"`
}

// GeneratePlaylist handles POST /playlists/generate.
// It runs the engine and materializes the result as a catalog playlist.
func (h *Handler) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runEngine(w, r)
	if !ok {
		return
	}

	resp := toGenerateResponse(result)
	if !result.Empty() {
		key, err := h.materializer.Materialize(r.Context(), result)
		if err != nil {
			h.log.Error().Err(err).Str("run_id", result.RunID).Msg("materialize failed")
			writeDomainError(w, err)
			return
		}
		resp.PlaylistKey = key
		writeJSON(w, http.StatusCreated, resp)
		return
	}

	// An empty selection is a valid terminal state, not an error.
	writeJSON(w, http.StatusOK, resp)
}

// PreviewPlaylist handles POST /playlists/preview.
// Same pipeline as generate, but nothing is written to the catalog.
func (h *Handler) PreviewPlaylist(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runEngine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toGenerateResponse(result))
}

func (h *Handler) runEngine(w http.ResponseWriter, r *http.Request) (domain.Result, bool) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return domain.Result{}, false
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return domain.Result{}, false
	}

	result, err := h.engine.Run(r.Context(), req.Seeds, req.Filter, req.Params)
	if err != nil {
		writeDomainError(w, err)
		return domain.Result{}, false
	}
	return result, true
}

func toGenerateResponse(result domain.Result) generateResponse {
	tracks := make([]trackResponse, len(result.Tracks))
	for i, t := range result.Tracks {
		tracks[i] = trackResponse{ID: t.ID, Title: t.Title, Artist: t.ArtistName}
	}
	return generateResponse{
		RunID:       result.RunID,
		Strategy:    string(result.Strategy),
		Title:       result.Title,
		Description: result.Description,
		Tracks:      tracks,
		Empty:       result.Empty(),
	}
}
