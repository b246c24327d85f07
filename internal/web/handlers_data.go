package web

// handlers_data.go serves admin orders, settings and syncs.

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/leopold/internal/shop"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders := s.service.Orders()
	if orders == nil {
		orders = []shop.Order{}
	}
	writeJSON(w, orders)
}

func (s *Server) handleRemoveOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.service.ToggleOrderStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Settings())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var in shop.Settings
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := s.service.SaveSettings(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, saved)
}

// handleTestBot sends the test message with the settings in the body, or
// the saved settings when the body is empty.
func (s *Server) handleTestBot(w http.ResponseWriter, r *http.Request) {
	var in shop.Settings
	present, err := decodeOptionalJSON(w, r, &in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var candidate *shop.Settings
	if present {
		candidate = &in
	}
	if err := s.service.TestBot(r.Context(), candidate); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"sent": true})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.SyncStatus())
}

type syncSheetRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleSyncSheet(w http.ResponseWriter, r *http.Request) {
	var req syncSheetRequest
	if _, err := decodeOptionalJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.SyncCatalog(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleSyncOrders(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.SyncOrders(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}
