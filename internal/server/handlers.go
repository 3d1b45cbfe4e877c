package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fabricshift/fabricshift/internal/history"
)

// convertRequest is the POST /api/convert body.
type convertRequest struct {
	SQL string `json:"sql"`
}

// convertResponse carries the three conversion outputs.
type convertResponse struct {
	ConvertedSQL string `json:"converted_sql"`
	Metrics      any    `json:"metrics"`
	Flags        any    `json:"flags"`
}

// mappingEntry is one row of GET /api/mappings.
type mappingEntry struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Category string `json:"category"`
	Special  bool   `json:"special_handling"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SQL == "" {
		http.Error(w, "missing sql field", http.StatusBadRequest)
		return
	}

	result := s.converter.Convert(req.SQL)
	snap := result.Metrics.Snapshot()

	if s.store != nil {
		if _, err := s.store.Record("api", req.SQL, result.SQL, snap); err != nil {
			// Persistence is best-effort; the conversion result still goes out.
			s.logger.Warn("recording conversion failed", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, convertResponse{
		ConvertedSQL: result.SQL,
		Metrics:      snap,
		Flags:        snap.FlaggedLines,
	})
}

func (s *Server) handleMappings(w http.ResponseWriter, _ *http.Request) {
	names := s.table.AllNames()
	entries := make([]mappingEntry, 0, len(names))
	for _, name := range names {
		m, ok := s.table.Lookup(name)
		if !ok {
			continue
		}
		entries = append(entries, mappingEntry{
			Source:   name,
			Target:   m.Target,
			Category: m.Category.String(),
			Special:  m.Special,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records, err := s.store.List(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
