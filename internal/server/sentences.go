package server

import (
	"net/http"
	"strings"

	"github.com/example/lemmabank/pkg/models"
	"github.com/go-chi/chi/v5"
)

type createPhraseRequest struct {
	Phrase      string `json:"phrase" validate:"required,max=500"`
	Translation string `json:"translation" validate:"max=1000"`
}

type createSentenceRequest struct {
	Sentence    string `json:"sentence" validate:"required,max=5000"`
	Translation string `json:"translation" validate:"max=5000"`
}

type sentenceResponse struct {
	*models.Sentence
	Linked int `json:"linked"`
}

func (s *Server) handleListPhrases(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	phrases, err := s.phrases.ListByLanguage(r.Context(), chi.URLParam(r, "lang"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(phrases, page))
}

func (s *Server) handleCreatePhrase(w http.ResponseWriter, r *http.Request) {
	var req createPhraseRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	phrase := &models.Phrase{
		Language:    chi.URLParam(r, "lang"),
		Phrase:      req.Phrase,
		Translation: strings.TrimSpace(req.Translation),
	}
	if err := s.phrases.Create(r.Context(), phrase); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, phrase)
}

func (s *Server) handleCreateSentence(w http.ResponseWriter, r *http.Request) {
	var req createSentenceRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sentence := &models.Sentence{
		Language:    chi.URLParam(r, "lang"),
		Sentence:    req.Sentence,
		Translation: strings.TrimSpace(req.Translation),
	}
	linked, err := s.sentences.Create(r.Context(), sentence)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sentenceResponse{Sentence: sentence, Linked: linked})
}

// handleListSentences lists the example sentences of the lemma named by
// the lemma query parameter.
func (s *Server) handleListSentences(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("lemma")
	if slug == "" {
		writeError(w, r, invalid("lemma query parameter is required"))
		return
	}
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lemma, err := s.lemmas.GetBySlug(r.Context(), chi.URLParam(r, "lang"), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sentences, err := s.sentences.ListForLemma(r.Context(), lemma.ID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(sentences, page))
}
