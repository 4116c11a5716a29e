package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/cadenza/internal/core/ports"
)

// SavePreset handles PUT /presets/{name}. The path segment is
// authoritative; a name in the body is overwritten by it.
func (h *Handler) SavePreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		writeError(w, http.StatusNotImplemented, "preset store not configured")
		return
	}
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var preset ports.Preset
	if err := json.NewDecoder(r.Body).Decode(&preset); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	preset.Name = r.PathValue("name")

	if err := h.presets.Save(r.Context(), preset); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/presets/"+preset.Name)
	writeJSON(w, http.StatusCreated, preset)
}

// GetPreset handles GET /presets/{name}.
func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		writeError(w, http.StatusNotImplemented, "preset store not configured")
		return
	}

	preset, err := h.presets.GetByName(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

// ListPresets handles GET /presets.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		writeError(w, http.StatusNotImplemented, "preset store not configured")
		return
	}

	names, err := h.presets.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"presets": names})
}

// DeletePreset handles DELETE /presets/{name}.
func (h *Handler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		writeError(w, http.StatusNotImplemented, "preset store not configured")
		return
	}

	if err := h.presets.Delete(r.Context(), r.PathValue("name")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunPreset handles POST /presets/{name}/run. It loads the stored spec,
// runs the engine and materializes the result, same as a direct generate.
func (h *Handler) RunPreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		writeError(w, http.StatusNotImplemented, "preset store not configured")
		return
	}

	preset, err := h.presets.GetByName(r.Context(), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.engine.Run(r.Context(), preset.Seeds, preset.Filter, preset.Params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := toGenerateResponse(result)
	if result.Empty() {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	key, err := h.materializer.Materialize(r.Context(), result)
	if err != nil {
		h.log.Error().Err(err).Str("preset", preset.Name).Msg("materialize failed")
		writeDomainError(w, err)
		return
	}
	resp.PlaylistKey = key
	writeJSON(w, http.StatusCreated, resp)
}
