// Package httpapi exposes the server's REST surface: encrypted room payloads,
// binary assets and snapshots, the AI proxy, and the websocket upgrade for the
// live channel.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/logging"
	"github.com/skomarov/boardkeeper/internal/server/ai"
	"github.com/skomarov/boardkeeper/internal/server/live"
	"github.com/skomarov/boardkeeper/internal/server/models"
	"github.com/skomarov/boardkeeper/internal/server/services"
)

// maxBodySize caps request bodies. Scenes and assets are pre-compressed and
// encrypted client-side, so anything larger is a misbehaving client.
const maxBodySize = 50 << 20

// Handler holds the services behind the REST routes.
type Handler struct {
	rooms     *services.RoomService
	assets    *services.AssetService
	snapshots *services.SnapshotService
	proxy     *ai.Proxy
	live      *live.Handler
	logger    logging.Logger
}

func NewHandler(
	rooms *services.RoomService,
	assets *services.AssetService,
	snapshots *services.SnapshotService,
	proxy *ai.Proxy,
	liveHandler *live.Handler,
	logger logging.Logger,
) *Handler {
	return &Handler{
		rooms:     rooms,
		assets:    assets,
		snapshots: snapshots,
		proxy:     proxy,
		live:      liveHandler,
		logger:    logger.With("component", "httpapi"),
	}
}

// Router builds the route table with logging, recovery and CORS middleware.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.recoveryMiddleware, h.loggingMiddleware, corsMiddleware)

	api := r.PathPrefix("/api/v2").Subrouter()
	api.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/rooms/{roomID}", h.handleGetRoom).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomID}", h.handleSaveRoom).Methods(http.MethodPost)

	api.HandleFunc("/assets/{key:.*}", h.handleGetAsset).Methods(http.MethodGet)
	api.HandleFunc("/assets/{key:.*}", h.handlePutAsset).Methods(http.MethodPost)

	// "new" must be registered before the {id} routes so it is not
	// captured as a snapshot id.
	api.HandleFunc("/snapshots/new", h.handleCreateSnapshot).Methods(http.MethodPost)
	api.HandleFunc("/snapshots/{id}", h.handleGetSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/snapshots/{id}", h.handlePutSnapshot).Methods(http.MethodPost)

	api.HandleFunc("/ai/text-to-diagram", h.handleTextToDiagram).Methods(http.MethodPost)
	api.HandleFunc("/ai/diagram-to-code", h.handleDiagramToCode).Methods(http.MethodPost)

	r.HandleFunc("/ws/rooms/{roomID}", h.handleLive).Methods(http.MethodGet)

	return r
}

// roomPayload is the wire shape of an encrypted room. IV and Ciphertext are
// base64 via encoding/json's []byte convention.
type roomPayload struct {
	SceneVersion int64  `json:"sceneVersion"`
	IV           []byte `json:"iv"`
	Ciphertext   []byte `json:"ciphertext"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]

	room, err := h.rooms.Get(r.Context(), roomID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomPayload{
		SceneVersion: room.SceneVersion,
		IV:           room.IV,
		Ciphertext:   room.Ciphertext,
	})
}

func (h *Handler) handleSaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]

	var payload roomPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&payload); err != nil {
		h.writeError(w, r, common.ErrInvalidPayload)
		return
	}

	room := &models.Room{
		ID:           roomID,
		SceneVersion: payload.SceneVersion,
		IV:           payload.IV,
		Ciphertext:   payload.Ciphertext,
	}
	if err := h.rooms.Save(r.Context(), room); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "roomID": roomID})
}

func (h *Handler) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	data, err := h.assets.Get(r.Context(), key)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (h *Handler) handlePutAsset(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, r, common.ErrInvalidPayload)
		return
	}
	if err := h.assets.Put(r.Context(), key, data); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": key})
}

func (h *Handler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	data, err := h.snapshots.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (h *Handler) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, r, common.ErrInvalidPayload)
		return
	}
	id, err := h.snapshots.Create(r.Context(), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, r, common.ErrInvalidPayload)
		return
	}
	if err := h.snapshots.Put(r.Context(), id, data); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

type aiRequest struct {
	Prompt string `json:"prompt"`
}

type aiResponse struct {
	Generated string `json:"generated"`
}

func (h *Handler) handleTextToDiagram(w http.ResponseWriter, r *http.Request) {
	h.handleAI(w, r, h.proxy.TextToDiagram)
}

func (h *Handler) handleDiagramToCode(w http.ResponseWriter, r *http.Request) {
	h.handleAI(w, r, h.proxy.DiagramToCode)
}

func (h *Handler) handleAI(w http.ResponseWriter, r *http.Request, generate func(ctx context.Context, caller, prompt string) (string, error)) {
	var req aiRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		h.writeError(w, r, common.ErrInvalidPayload)
		return
	}

	out, err := generate(r.Context(), callerID(r), req.Prompt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aiResponse{Generated: out})
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	h.live.ServeRoom(w, r, mux.Vars(r)["roomID"])
}

// callerID identifies the peer for quota accounting: the client address
// without the port.
func callerID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidPayload), errors.Is(err, common.ErrMalformedElement):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrQuotaExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, common.ErrProvider):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
