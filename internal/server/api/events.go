package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/vmouse/internal/store"
)

// MaxEventLimit caps the limit query parameter.
const MaxEventLimit = 1000

// EventsHandler serves the recorded gesture history under /api/events.
type EventsHandler struct {
	events *store.EventRepository
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *store.EventRepository) *EventsHandler {
	return &EventsHandler{events: events}
}

type eventsResponse struct {
	Events []*store.Event `json:"events"`
}

type statsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type pruneResponse struct {
	Deleted int64 `json:"deleted"`
}

// ServeHTTP routes /api/events and /api/events/stats.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.Trim(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case path == "" && r.Method == http.MethodDelete:
		h.prune(w, r)
	case path == "stats" && r.Method == http.MethodGet:
		h.stats(w)
	case path == "" || path == "stats":
		methodNotAllowed(w)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// list handles GET /api/events?limit=N, newest first.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventLimit)
	}

	events, err := h.events.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

func (h *EventsHandler) stats(w http.ResponseWriter) {
	counts, err := h.events.CountByKind()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	var total int
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, statsResponse{Counts: counts, Total: total})
}

// prune handles DELETE /api/events?older_than=<duration>. Without
// older_than every event is removed.
func (h *EventsHandler) prune(w http.ResponseWriter, r *http.Request) {
	before := time.Now()
	if v := r.URL.Query().Get("older_than"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "older_than must be a non-negative duration")
			return
		}
		before = before.Add(-d)
	}

	n, err := h.events.Prune(before)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to prune events")
		return
	}
	writeJSON(w, http.StatusOK, pruneResponse{Deleted: n})
}
