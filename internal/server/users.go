package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/srs"
	"github.com/example/lemmabank/pkg/models"
	"github.com/go-chi/chi/v5"
)

// defaultDueLimit is the size of a review session when none is asked for.
const defaultDueLimit = 20

type createUserRequest struct {
	Username       string `json:"username" validate:"required,min=2,max=64,alphanum"`
	DisplayName    string `json:"display_name" validate:"max=100"`
	NativeLanguage string `json:"native_language" validate:"omitempty,len=2,lowercase"`
	TargetLanguage string `json:"target_language" validate:"omitempty,len=2,lowercase"`
}

type updateUserRequest struct {
	DisplayName    *string `json:"display_name" validate:"omitempty,max=100"`
	NativeLanguage *string `json:"native_language" validate:"omitempty,len=2,lowercase"`
	TargetLanguage *string `json:"target_language" validate:"omitempty,len=2,lowercase"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

type addVocabRequest struct {
	LemmaID  *int64 `json:"lemma_id" validate:"omitempty,gt=0"`
	PhraseID *int64 `json:"phrase_id" validate:"omitempty,gt=0"`
}

type reviewRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

func (s *Server) userFromPath(r *http.Request) (*models.User, error) {
	return s.users.GetByPublicID(r.Context(), chi.URLParam(r, "id"))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user := &models.User{
		Username:       req.Username,
		DisplayName:    strings.TrimSpace(req.DisplayName),
		NativeLanguage: req.NativeLanguage,
		TargetLanguage: req.TargetLanguage,
	}
	if user.TargetLanguage != "" && !s.cfg.IsSupported(user.TargetLanguage) {
		writeError(w, r, &badRequest{msg: "validation failed", fields: map[string]string{"target_language": "supported"}})
		return
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.userFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.NativeLanguage != nil {
		user.NativeLanguage = *req.NativeLanguage
	}
	if req.TargetLanguage != nil {
		if *req.TargetLanguage != "" && !s.cfg.IsSupported(*req.TargetLanguage) {
			writeError(w, r, &badRequest{msg: "validation failed", fields: map[string]string{"target_language": "supported"}})
			return
		}
		user.TargetLanguage = *req.TargetLanguage
	}
	if req.TelegramChatID != nil {
		// zero unlinks the chat
		if *req.TelegramChatID == 0 {
			user.TelegramChatID = nil
		} else {
			user.TelegramChatID = req.TelegramChatID
		}
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListVocab(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.vocab.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []models.VocabItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAddVocab(w http.ResponseWriter, r *http.Request) {
	var req addVocabRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if (req.LemmaID == nil) == (req.PhraseID == nil) {
		writeError(w, r, invalid("exactly one of lemma_id and phrase_id is required"))
		return
	}
	user, err := s.userFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var item *models.VocabItem
	if req.LemmaID != nil {
		if _, err = s.lemmas.GetByID(r.Context(), *req.LemmaID); err == nil {
			item, err = s.vocab.AddLemma(r.Context(), user.ID, *req.LemmaID)
		}
	} else {
		if _, err = s.phrases.GetByID(r.Context(), *req.PhraseID); err == nil {
			item, err = s.vocab.AddPhrase(r.Context(), user.ID, *req.PhraseID)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDueVocab(w http.ResponseWriter, r *http.Request) {
	limit := defaultDueLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > database.MaxPageSize {
			writeError(w, r, invalid("limit must be between 1 and %d", database.MaxPageSize))
			return
		}
		limit = n
	}
	user, err := s.userFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	items, err := s.vocab.Due(r.Context(), user.ID, now, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := s.vocab.CountDue(r.Context(), user.ID, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []models.VocabItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (s *Server) handleReviewVocab(w http.ResponseWriter, r *http.Request) {
	vocabID, err := strconv.ParseInt(chi.URLParam(r, "vocabID"), 10, 64)
	if err != nil {
		writeError(w, r, database.ErrNotFound)
		return
	}
	var req reviewRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.userFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := s.vocab.Review(r.Context(), user.ID, vocabID, srs.Quality(*req.Quality), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"item":     item,
		"mastered": srs.IsMastered(srs.State{IntervalDays: item.IntervalDays, Repetitions: item.Repetitions}),
	})
}
