package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pthm-cable/tidepool/game"
)

// commandRequest is the wire form of a command.
type commandRequest struct {
	Kind       string  `json:"kind"`
	OrganismID uint32  `json:"organism_id,omitempty"`
	Amount     float64 `json:"amount"`
}

// view returns the latest view or writes 503.
func (h *routerHandlers) view(w http.ResponseWriter) *game.View {
	v := h.engine.View()
	if v == nil {
		writeError(w, "simulation not started", http.StatusServiceUnavailable)
	}
	return v
}

func (h *routerHandlers) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	v := h.view(w)
	if v == nil {
		return
	}
	writeJSON(w, v)
}

// handleGetTiles returns the whole board, or one tile with ?x=&y=.
func (h *routerHandlers) handleGetTiles(w http.ResponseWriter, r *http.Request) {
	v := h.view(w)
	if v == nil {
		return
	}

	q := r.URL.Query()
	if q.Has("x") || q.Has("y") {
		x, errX := strconv.Atoi(q.Get("x"))
		y, errY := strconv.Atoi(q.Get("y"))
		if errX != nil || errY != nil {
			writeError(w, "x and y must be integers", http.StatusBadRequest)
			return
		}
		t, ok := v.TileAt(x, y)
		if !ok {
			writeError(w, "tile out of range", http.StatusNotFound)
			return
		}
		writeJSON(w, t)
		return
	}

	writeJSON(w, map[string]interface{}{
		"tick":   v.Tick,
		"width":  v.Width,
		"height": v.Height,
		"tiles":  v.Tiles,
	})
}

func (h *routerHandlers) handleGetBodies(w http.ResponseWriter, r *http.Request) {
	v := h.view(w)
	if v == nil {
		return
	}
	writeJSON(w, map[string]interface{}{
		"tick":   v.Tick,
		"bodies": v.Bodies,
	})
}

func (h *routerHandlers) handleGetBody(w http.ResponseWriter, r *http.Request) {
	v := h.view(w)
	if v == nil {
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeError(w, "invalid id", http.StatusBadRequest)
		return
	}
	b, ok := v.Body(uint32(id))
	if !ok {
		writeError(w, "creature not found", http.StatusNotFound)
		return
	}
	writeJSON(w, b)
}

func (h *routerHandlers) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	v := h.view(w)
	if v == nil {
		return
	}
	writeJSON(w, map[string]interface{}{
		"history": v.History,
		"bars":    v.HistoryBars,
	})
}

func (h *routerHandlers) handlePostCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	kind, err := game.ParseCommandKind(req.Kind)
	if err != nil {
		RecordCommand("unknown")
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := game.Command{Kind: kind, OrganismID: req.OrganismID, Amount: req.Amount}
	if err := h.engine.Submit(cmd); err != nil {
		status := http.StatusInternalServerError
		result := "error"
		switch {
		case errors.Is(err, game.ErrCommandQueueFull):
			status, result = http.StatusServiceUnavailable, "queue_full"
		case errors.Is(err, game.ErrUnknownCommand):
			status, result = http.StatusBadRequest, "unknown"
		}
		RecordCommand(result)
		writeError(w, err.Error(), status)
		return
	}

	RecordCommand("accepted")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"accepted": true,
		"kind":     kind.String(),
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
