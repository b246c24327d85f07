package web

// handlers.go serves the public storefront: catalog browsing and checkout.

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/leopold/internal/shop"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"sync":   s.service.SyncStatus(),
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Categories())
}

// handleListToys returns one page of the catalog.
//
//	GET /api/toys?category=discount&q=лего&page=2
func (s *Server) handleListToys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := s.service.ListToys(shop.CatalogQuery{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "pageSize", 0),
	})
	writeJSON(w, page)
}

func (s *Server) handleGetToy(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.Toy(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleToyOfTheDay(w http.ResponseWriter, r *http.Request) {
	t, ok := s.service.ToyOfTheDay()
	if !ok {
		respondError(w, r, shop.ErrUnknownToy)
		return
	}
	writeJSON(w, t)
}

type orderRequest struct {
	Name  string              `json:"name"`
	Phone string              `json:"phone"`
	Items []shop.CheckoutLine `json:"items"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	order, err := s.service.PlaceOrder(r.Context(), shop.CheckoutInput{
		Name:  req.Name,
		Phone: req.Phone,
		Lines: req.Items,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}
