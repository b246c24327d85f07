package web

// handlers_mutations.go serves the admin catalog operations.

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/shop"
)

func (s *Server) handleCreateToy(w http.ResponseWriter, r *http.Request) {
	var in shop.ToyInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := s.service.AddToy(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateToy(w http.ResponseWriter, r *http.Request) {
	var in shop.ToyInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := s.service.UpdateToy(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleDeleteToy(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteToy(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toyOfTheDayRequest struct {
	ToyID string `json:"toyId"`
}

func (s *Server) handleSetToyOfTheDay(w http.ResponseWriter, r *http.Request) {
	var req toyOfTheDayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.SetToyOfTheDay(r.Context(), req.ToyID); err != nil {
		respondError(w, r, err)
		return
	}

	t, _ := s.service.ToyOfTheDay()
	writeJSON(w, t)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := s.service.AddCategory(r.Context(), req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportCatalog downloads the catalog as a re-importable CSV file.
// The file is built in memory so a failure can still be reported as JSON.
func (s *Server) handleExportCatalog(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.service.ExportCatalog(r.Context(), &buf); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvimport.ExportFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
