package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/hinter/internal/coh"
	"github.com/pavelanni/hinter/internal/gate"
	"github.com/pavelanni/hinter/internal/handler/views"
	"github.com/pavelanni/hinter/internal/hint"
	"github.com/pavelanni/hinter/internal/model"
)

func (h *Handler) handleCOHPreview(w http.ResponseWriter, r *http.Request) {
	preset, err := model.ParsePreset(chi.URLParam(r, "preset"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	depth := 0
	if s := r.URL.Query().Get("depth"); s != "" {
		depth, err = strconv.Atoi(s)
		if err != nil || depth < 0 {
			writeJSON(w, http.StatusBadRequest, model.Envelope{
				Success: false,
				Data:    model.ErrorData{Error: fmt.Sprintf("depth must be a non-negative integer, got %q", s)},
			})
			return
		}
	}

	st, err := coh.At(preset, depth)
	if err != nil {
		writeError(w, r, err)
		return
	}
	maxDepth, err := coh.MaxDepth(preset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	allowed, err := gate.Allowed(preset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Data: model.COHPreview{
		Preset:             st.Preset,
		Depth:              st.Depth,
		MaxDepth:           maxDepth,
		HintLevel:          st.HintLevel,
		LevelName:          hint.LocalizedLevelName(ctx, st.HintLevel, st.LevelName),
		Style:              st.Style,
		CanGetMoreDetailed: st.CanGetMoreDetailed,
		NextLevelHint:      hint.NextLevelHint(ctx, st),
		AllowedComponents:  allowed.Names(),
		BlockedComponents:  st.Blocked.Names(),
	}})
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}
	userID, problemID := chi.URLParam(r, "userID"), chi.URLParam(r, "problemID")

	sess, err := h.history.GetSession(r.Context(), userID, problemID)
	if err != nil {
		writeError(w, r, fmt.Errorf("load history: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Data: sess})
}

func (h *Handler) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}
	userID, problemID := chi.URLParam(r, "userID"), chi.URLParam(r, "problemID")

	unlock := h.locks.Lock(userID + "\x00" + problemID)
	defer unlock()

	if err := h.history.ResetHistory(r.Context(), userID, problemID); err != nil {
		writeError(w, r, fmt.Errorf("reset history: %w", err))
		return
	}
	slog.Info("history reset", "user_id", userID, "problem_id", problemID)
	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Data: map[string]bool{"reset": true}})
}

func (h *Handler) requireHistory(w http.ResponseWriter) bool {
	if h.history != nil {
		return true
	}
	writeJSON(w, http.StatusNotImplemented, model.Envelope{
		Success: false,
		Data:    model.ErrorData{Error: "server-side history is disabled"},
	})
	return false
}

func (h *Handler) handleLadderPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.LadderPage(coh.Ladder(), h.path("/api/coh/")).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
