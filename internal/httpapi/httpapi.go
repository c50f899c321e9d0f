// Package httpapi serves the single-endpoint JSON API used by the hosted
// front end: list the roster, or upload rows and send a message in one call.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/blast/internal/auth"
	"github.com/mmynk/blast/internal/broadcast"
	"github.com/mmynk/blast/internal/middleware"
	"github.com/mmynk/blast/internal/models"
	"github.com/mmynk/blast/internal/roster"
	"github.com/mmynk/blast/internal/service"
)

const maxBodyBytes = 10 << 20

// MessageRequest is the POST /messages body.
type MessageRequest struct {
	Message       string           `json:"message"`
	AllNumbers    bool             `json:"all_numbers"`
	SelectNumbers []string         `json:"select_numbers"`
	Recipients    []string         `json:"recipients"`
	CSVData       []map[string]any `json:"csv_data"`
}

// MessageResponse reports both halves of a POST /messages call.
type MessageResponse struct {
	Upsert   *roster.UpsertSummary `json:"upsert,omitempty"`
	Dispatch *broadcast.Summary    `json:"dispatch"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the endpoint.
type Handler struct {
	relay *service.Relay
}

// NewRouter builds the endpoint's routes behind CORS and bearer auth.
func NewRouter(relay *service.Relay, jwtManager *auth.JWTManager, allowOrigin string) http.Handler {
	h := &Handler{relay: relay}

	r := chi.NewRouter()
	r.Use(middleware.CORS(allowOrigin))
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthHTTP(jwtManager))
		r.Get("/clients", h.ListClients)
		r.Post("/messages", h.PostMessage)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// ListClients returns the roster as a JSON array.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.relay.Clients(r.Context())
	if err != nil {
		slog.Error("Failed to list clients", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if clients == nil {
		clients = []*models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// PostMessage upserts csv_data (if any) and then broadcasts. An empty message
// still upserts; the dispatch is reported as rejected.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("failed to read request body: %v", err)})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body is required for POST requests"})
		return
	}

	var req MessageRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("Invalid JSON in request body: %v", err)})
		return
	}

	var resp MessageResponse
	if len(req.CSVData) > 0 {
		summary := h.relay.Upsert(r.Context(), toRawRows(req.CSVData))
		resp.Upsert = &summary
	}

	target := roster.Target{
		All: req.AllNumbers,
		IDs: append(append([]string(nil), req.SelectNumbers...), req.Recipients...),
	}
	summary, err := h.relay.Broadcast(r.Context(), req.Message, target, false)
	if err != nil && !errors.Is(err, broadcast.ErrEmptyMessage) {
		slog.Error("Broadcast failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	resp.Dispatch = summary
	writeJSON(w, http.StatusOK, resp)
}

// toRawRows flattens JSON row objects to strings. Numbers keep their literal
// form and nulls become empty.
func toRawRows(in []map[string]any) []roster.RawRow {
	rows := make([]roster.RawRow, len(in))
	for i, obj := range in {
		row := make(roster.RawRow, len(obj))
		for k, v := range obj {
			switch v := v.(type) {
			case nil:
				row[k] = ""
			case string:
				row[k] = v
			case json.Number:
				row[k] = v.String()
			default:
				row[k] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows
}
