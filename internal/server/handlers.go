package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/modules/allocation"
	"github.com/aristath/scenariodesk/internal/modules/views"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "scenariodesk",
	}

	s.writeJSON(w, http.StatusOK, response)
}

type sectorInfo struct {
	Ticker domain.Ticker `json:"ticker"`
	Name   string        `json:"name"`
	Color  string        `json:"color"`
}

// handleSectors handles GET /api/sectors
func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	sectors := domain.Sectors()
	out := make([]sectorInfo, len(sectors))
	for i, sec := range sectors {
		out[i] = sectorInfo{Ticker: sec.Ticker, Name: sec.Name, Color: allocation.ColorAt(i)}
	}
	s.writeData(w, out)
}

// handleTemplates handles GET /api/templates
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, views.Templates())
}

func (s *Server) writeData(w http.ResponseWriter, data interface{}) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
