package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// handleStream serves the live subscription over Server-Sent Events. The
// client gets an initial snapshot event, then one event per change to its
// records, each carrying the full record set.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "live updates unavailable")
		return
	}

	owner := ownerID(r.Context())
	records, err := s.expenses.List(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load snapshot")
		return
	}

	updates, cancel := s.hub.Subscribe(owner)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "snapshot", toExpenseResponses(records))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, open := <-updates:
			if !open {
				return
			}
			writeEvent(w, "expenses", toExpenseResponses(snapshot))
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
