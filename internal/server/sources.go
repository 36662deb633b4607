package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/lemmabank/internal/fetch"
	"github.com/example/lemmabank/internal/imageutil"
	"github.com/example/lemmabank/internal/segment"
	"github.com/example/lemmabank/internal/urlcheck"
	"github.com/example/lemmabank/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// multipart parts above this size are spooled to disk
const multipartMemory = 8 << 20

type createSourceRequest struct {
	Title     string `json:"title" validate:"max=300"`
	Text      string `json:"text" validate:"required_without=URL,max=2000000"`
	URL       string `json:"url" validate:"omitempty,http_url,max=2000"`
	Language  string `json:"language" validate:"omitempty,len=2,lowercase"`
	CreatedBy string `json:"created_by" validate:"omitempty,uuid"`
}

type sourceResponse struct {
	*models.Source
	Sentences []models.Sentence `json:"sentences"`
}

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	text := req.Text
	var sourceURL string
	if req.URL != "" {
		page, err := s.fetcher.Fetch(r.Context(), req.URL)
		if err != nil {
			writeFetchError(w, r, err)
			return
		}
		sourceURL = page.URL
		if strings.TrimSpace(text) == "" {
			text = page.Text
		}
		if title == "" {
			title = page.Title
		}
	}
	if title == "" {
		writeError(w, r, &badRequest{msg: "validation failed", fields: map[string]string{"title": "required"}})
		return
	}

	language := req.Language
	if language == "" {
		language = s.detector.Detect(text)
		if language == "" {
			writeError(w, r, invalid("could not detect the language of the text, pass language"))
			return
		}
	}
	if !s.cfg.IsSupported(language) {
		writeError(w, r, &badRequest{msg: "validation failed", fields: map[string]string{"language": "supported"}})
		return
	}

	src := &models.Source{
		Title:    title,
		URL:      sourceURL,
		Body:     strings.TrimSpace(text),
		Language: language,
	}
	if req.CreatedBy != "" {
		user, err := s.users.GetByPublicID(r.Context(), req.CreatedBy)
		if err != nil {
			writeError(w, r, err)
			return
		}
		src.CreatedBy = &user.ID
	}

	if err := s.sources.Create(r.Context(), src, segment.SplitSentences(src.Body)); err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().
		Str("slug", src.Slug).
		Str("language", src.Language).
		Int("sentences", src.SentenceCount).
		Msg("source created")
	writeJSON(w, http.StatusCreated, src)
}

// writeFetchError reports a failed download. Upstream failures are the
// remote host's fault, not the client's.
func writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, urlcheck.ErrInvalidURL) || errors.Is(err, urlcheck.ErrForbiddenHost) ||
		errors.Is(err, fetch.ErrUnsupportedContent) {
		writeError(w, r, err)
		return
	}
	log.Warn().Err(err).Msg("fetching source failed")
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not fetch url"})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sources, err := s.sources.List(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(sources, page))
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	src, err := s.sources.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	sentences, err := s.sentences.ListForSource(r.Context(), src.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sentences == nil {
		sentences = []models.Sentence{}
	}
	writeJSON(w, http.StatusOK, sourceResponse{Source: src, Sentences: sentences})
}

// handleUploadSourceImage stores the multipart field "image", scaled down
// to the configured dimension, as the picture of a source.
func (s *Server) handleUploadSourceImage(w http.ResponseWriter, r *http.Request) {
	src, err := s.sources.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imageutil.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "image too large"})
			return
		}
		writeError(w, r, invalid("malformed multipart body"))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, &badRequest{msg: "validation failed", fields: map[string]string{"image": "required"}})
		return
	}
	defer file.Close()

	img, err := imageutil.Resize(file, s.cfg.ImageMaxDimension)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := imageutil.Store(s.cfg.UploadDir, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.sources.SetImage(r.Context(), src.ID, name); err != nil {
		writeError(w, r, err)
		return
	}
	src.ImagePath = name

	log.Info().
		Str("slug", src.Slug).
		Str("image", name).
		Int("width", img.Width).
		Int("height", img.Height).
		Msg("source image stored")
	writeJSON(w, http.StatusOK, src)
}
