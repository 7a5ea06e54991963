// Package httpapi serves the widget state over HTTP for graders and
// scripted checks.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	portraitclient "linphase/mathlet/client/portrait"
	"linphase/mathlet/tasks/portrait"
)

const (
	maxBody        = 4 << 10
	requestTimeout = 5 * time.Second
	maxScale       = 8
)

// State is the widget surface the handlers use.
type State interface {
	State(ctx context.Context) ([]byte, error)
	Grade(ctx context.Context) ([]byte, error)
	SetState(ctx context.Context, body []byte) ([]byte, error)
	Clear(ctx context.Context) error
}

// SnapshotFunc writes the last presented frame as PNG.
type SnapshotFunc func(w io.Writer, scale int) error

type Handler struct {
	state    State
	snapshot SnapshotFunc
	log      *zap.Logger
}

func NewHandler(state State, snapshot SnapshotFunc, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{state: state, snapshot: snapshot, log: log}
}

// NewRouter wires every route. session is echoed in X-Session-Id.
func NewRouter(h *Handler, session string) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery(h.log))
	r.Use(logging(h.log))
	r.Use(sessionHeader(session))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/state", h.GetState).Methods(http.MethodGet)
	r.HandleFunc("/state", h.PutState).Methods(http.MethodPut)
	r.HandleFunc("/grade", h.GetGrade).Methods(http.MethodGet)
	r.HandleFunc("/clear", h.PostClear).Methods(http.MethodPost)
	r.HandleFunc("/snapshot.png", h.GetSnapshot).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	body, err := h.state.State(ctx)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) GetGrade(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	body, err := h.state.Grade(ctx)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) PutState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "body too large"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	applied, err := h.state.SetState(ctx, body)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, applied)
}

func (h *Handler) PostClear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.state.Clear(ctx); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshot == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no framebuffer"})
		return
	}
	scale := 1
	if s := r.URL.Query().Get("scale"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxScale {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scale must be 1.." + strconv.Itoa(maxScale)})
			return
		}
		scale = n
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.snapshot(w, scale); err != nil {
		h.log.Error("snapshot failed", zap.Error(err))
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, portrait.ErrBadState):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, portraitclient.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "widget stopped"})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "widget busy"})
	default:
		h.log.Error("state request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
