package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/leopold/internal/assistant"
)

type recommendRequest struct {
	Age       string `json:"age"`
	Interests string `json:"interests"`
}

type recommendResponse struct {
	Recommendations []assistant.Recommendation `json:"recommendations"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	picks, err := s.service.Recommend(r.Context(), req.Age, req.Interests)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if picks == nil {
		picks = []assistant.Recommendation{}
	}
	writeJSON(w, recommendResponse{Recommendations: picks})
}

type storyResponse struct {
	ToyID string `json:"toyId"`
	Story string `json:"story"`
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	story, err := s.service.Story(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, storyResponse{ToyID: id, Story: story})
}

type speechRequest struct {
	Text string `json:"text"`
}

// speechResponse carries raw PCM; Audio is base64 in JSON.
type speechResponse struct {
	MimeType string `json:"mimeType"`
	Audio    []byte `json:"audio"`
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	audio, err := s.service.Speech(r.Context(), req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, speechResponse{MimeType: audio.MimeType, Audio: audio.Data})
}
