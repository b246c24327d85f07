package web

import (
	"net/http"
	"time"

	mw "github.com/JonMunkholm/leopold/internal/web/middleware"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	token, sess, err := s.service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, loginResponse{Token: token, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Logout(r.Context(), mw.BearerToken(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
