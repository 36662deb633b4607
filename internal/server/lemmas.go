package server

import (
	"net/http"
	"strings"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/pkg/models"
	"github.com/go-chi/chi/v5"
)

type createLemmaRequest struct {
	Lemma        string   `json:"lemma" validate:"required,max=200"`
	PartOfSpeech string   `json:"part_of_speech" validate:"max=32"`
	Gloss        string   `json:"gloss" validate:"max=1000"`
	Wordforms    []string `json:"wordforms" validate:"max=100,dive,required,max=200"`
}

type updateLemmaRequest struct {
	Lemma        *string `json:"lemma" validate:"omitempty,max=200"`
	PartOfSpeech *string `json:"part_of_speech" validate:"omitempty,max=32"`
	Gloss        *string `json:"gloss" validate:"omitempty,max=1000"`
}

type createWordformRequest struct {
	Wordform        string `json:"wordform" validate:"required,max=200"`
	GrammaticalInfo string `json:"grammatical_info" validate:"max=200"`
}

func (s *Server) lemmaFromPath(r *http.Request) (*models.Lemma, error) {
	return s.lemmas.GetBySlug(r.Context(), chi.URLParam(r, "lang"), chi.URLParam(r, "slug"))
}

func (s *Server) handleListLemmas(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		lemmas, err := s.lemmas.Search(r.Context(), lang, q, page)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newList(lemmas, page))
		return
	}

	lemmas, err := s.lemmas.ListByLanguage(r.Context(), lang, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := s.lemmas.Count(r.Context(), lang)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := newList(lemmas, page)
	resp.Total = &total
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateLemma(w http.ResponseWriter, r *http.Request) {
	var req createLemmaRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lemma := &models.Lemma{
		Language:     chi.URLParam(r, "lang"),
		Lemma:        req.Lemma,
		PartOfSpeech: strings.ToLower(strings.TrimSpace(req.PartOfSpeech)),
		Gloss:        strings.TrimSpace(req.Gloss),
	}
	if err := s.lemmas.CreateWithWordforms(r.Context(), lemma, req.Wordforms); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lemma)
}

func (s *Server) handleGetLemma(w http.ResponseWriter, r *http.Request) {
	lemma, err := s.lemmaFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	forms, err := s.wordforms.ListForLemma(r.Context(), lemma.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if forms == nil {
		forms = []models.Wordform{}
	}
	lemma.Wordforms = forms
	writeJSON(w, http.StatusOK, lemma)
}

func (s *Server) handleUpdateLemma(w http.ResponseWriter, r *http.Request) {
	var req updateLemmaRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lemma, err := s.lemmaFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Lemma != nil {
		lemma.Lemma = *req.Lemma
	}
	if req.PartOfSpeech != nil {
		lemma.PartOfSpeech = strings.ToLower(strings.TrimSpace(*req.PartOfSpeech))
	}
	if req.Gloss != nil {
		lemma.Gloss = strings.TrimSpace(*req.Gloss)
	}
	if err := s.lemmas.Update(r.Context(), lemma); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lemma)
}

func (s *Server) handleDeleteLemma(w http.ResponseWriter, r *http.Request) {
	lemma, err := s.lemmaFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.lemmas.Delete(r.Context(), lemma.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateWordform(w http.ResponseWriter, r *http.Request) {
	var req createWordformRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lemma, err := s.lemmaFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	wf := &models.Wordform{
		LemmaID:         lemma.ID,
		Wordform:        req.Wordform,
		GrammaticalInfo: strings.TrimSpace(req.GrammaticalInfo),
	}
	if err := s.wordforms.Create(r.Context(), wf); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) handleLookupWordform(w http.ResponseWriter, r *http.Request) {
	matches, err := s.wordforms.Lookup(r.Context(), chi.URLParam(r, "lang"), chi.URLParam(r, "form"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(matches) == 0 {
		writeError(w, r, database.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}
