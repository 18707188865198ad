package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/hinter/internal/hint"
	appI18n "github.com/pavelanni/hinter/internal/i18n"
	"github.com/pavelanni/hinter/internal/model"
)

const maxBodyBytes = 1 << 20

// HistoryStore persists Chain-of-Hints sessions per (user, problem).
type HistoryStore interface {
	SelectPreset(ctx context.Context, userID, problemID string, p model.Preset) (bool, error)
	GetSession(ctx context.Context, userID, problemID string) (model.SessionHistory, error)
	AppendHint(ctx context.Context, userID, problemID string, e model.HistoryEntry) error
	ResetHistory(ctx context.Context, userID, problemID string) error
}

// SnapshotStore persists metrics validation runs.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, userID, problemID string, snap model.MetricSnapshot) (string, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc       *hint.Service
	history   HistoryStore
	snapshots SnapshotStore
	config    model.ServiceConfig
	locks     *keyedMutex
}

// New creates a new Handler. history and snapshots may be nil; without a history
// store the client's previous_hints are the only source of history.
func New(svc *hint.Service, history HistoryStore, snapshots SnapshotStore, cfg model.ServiceConfig) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("hint service is required")
	}
	return &Handler{
		svc:       svc,
		history:   history,
		snapshots: snapshots,
		config:    cfg,
		locks:     newKeyedMutex(),
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(userIDMiddleware)
	r.Route("/api", func(api chi.Router) {
		api.Post("/hint", h.handleHint)
		api.Post("/metrics/validate", h.handleValidate)
		api.Get("/coh/{preset}", h.handleCOHPreview)
		api.Get("/history/{userID}/{problemID}", h.handleGetHistory)
		api.Delete("/history/{userID}/{problemID}", h.handleResetHistory)
	})
	r.Get("/admin/ladder", h.handleLadderPage)
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	var req model.HintRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	userID := model.UserIDFromContext(ctx)

	if userID == "" || h.history == nil || req.ProblemID == "" {
		history, err := hint.HistoryFromClient(req.PreviousHints)
		if err != nil {
			writeError(w, r, err)
			return
		}
		res, err := h.svc.Generate(ctx, req, history)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, model.Envelope{Success: true, Data: res.Data})
		return
	}

	unlock := h.locks.Lock(userID + "\x00" + req.ProblemID)
	defer unlock()

	sess, err := h.history.GetSession(ctx, userID, req.ProblemID)
	if err != nil {
		writeError(w, r, fmt.Errorf("load history: %w", err))
		return
	}
	res, err := h.svc.Generate(ctx, req, sess.Hints)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Persist only once the hint exists, so a rejected request leaves the session untouched.
	reset, err := h.history.SelectPreset(ctx, userID, req.ProblemID, res.State.Preset)
	if err != nil {
		writeError(w, r, fmt.Errorf("select preset: %w", err))
		return
	}
	if reset {
		slog.Info("preset changed, history reset", "user_id", userID, "problem_id", req.ProblemID, "preset", res.State.Preset)
	}
	if err := h.history.AppendHint(ctx, userID, req.ProblemID, res.Entry); err != nil {
		writeError(w, r, fmt.Errorf("append hint: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Data: res.Data})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req model.ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	data, snap, err := h.svc.Validate(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.snapshots != nil {
		id, err := h.snapshots.SaveSnapshot(ctx, model.UserIDFromContext(ctx), req.ProblemID, snap)
		if err != nil {
			writeError(w, r, fmt.Errorf("save snapshot: %w", err))
			return
		}
		data.SnapshotID = id
	}
	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Data: data})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.Envelope{
			Success: false,
			Data:    model.ErrorData{Error: "invalid JSON body: " + err.Error()},
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

var validationMessages = []struct {
	err   error
	msgID string
}{
	{model.ErrInvalidPreset, "ErrInvalidPreset"},
	{model.ErrInvalidStarCount, "ErrInvalidStarCount"},
	{model.ErrInvalidHistory, "ErrInvalidHistory"},
	{model.ErrIncompleteMetrics, "ErrIncompleteMetrics"},
}

// writeError maps validation failures to 400 and everything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if model.IsValidation(err) {
		msg := err.Error()
		for _, vm := range validationMessages {
			if errors.Is(err, vm.err) {
				msg = appI18n.TOr(ctx, vm.msgID, vm.err.Error()) + " (" + err.Error() + ")"
				break
			}
		}
		slog.Debug("request rejected", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, model.Envelope{Success: false, Data: model.ErrorData{Error: msg}})
		return
	}

	if model.IsInternal(err) {
		slog.Error("internal invariant violated", "path", r.URL.Path, "error", err)
	} else {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, http.StatusInternalServerError, model.Envelope{
		Success: false,
		Data:    model.ErrorData{Error: appI18n.TOr(ctx, "ErrInternal", "internal error")},
	})
}
