package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/lemmabank/internal/config"
	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/database/migrations"
	"github.com/example/lemmabank/internal/fetch"
	"github.com/example/lemmabank/internal/imageutil"
	"github.com/example/lemmabank/internal/urlcheck"
	"github.com/example/lemmabank/internal/vite"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
  "src/main.ts": {
    "file": "assets/main-4f2a.js",
    "src": "src/main.ts",
    "isEntry": true,
    "css": ["assets/main-77aa.css"]
  }
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := database.Connect("sqlite3", filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := migrations.NewMigrator(db)
	require.NoError(t, err)
	require.NoError(t, m.Up(context.Background()))

	manifest, err := vite.Parse([]byte(testManifest), "/static/")
	require.NoError(t, err)

	cfg := &config.Config{
		SupportedLanguages: []string{"de", "en", "es", "fr"},
		UploadDir:          t.TempDir(),
		ImageMaxDimension:  100,
		FetchTimeout:       2 * time.Second,
	}
	return New(cfg, db, manifest)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type lemmaJSON struct {
	ID        int64  `json:"id"`
	Lemma     string `json:"lemma"`
	Slug      string `json:"slug"`
	Language  string `json:"language"`
	Wordforms []struct {
		Wordform string `json:"wordform"`
	} `json:"wordforms"`
}

type errorJSON struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func TestHealthLanguagesAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/languages", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"languages":["de","en","es","fr"]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lemmabank_http_requests_total{method="GET",route="/api/languages",status="200"} 1`)
}

func TestUnsupportedLanguage(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/xx/lemmas", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported language")
}

func TestLemmaLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/es/lemmas", map[string]any{
		"lemma": "gato", "part_of_speech": "NOUN", "gloss": "cat", "wordforms": []string{"gatos", "gata", "gatos"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[lemmaJSON](t, rec)
	assert.Equal(t, "gato", created.Slug)
	assert.Len(t, created.Wordforms, 2)

	rec = do(t, s, http.MethodPost, "/api/es/lemmas", map[string]any{"lemma": "Gato"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "gato-2", decodeBody[lemmaJSON](t, rec).Slug)

	rec = do(t, s, http.MethodGet, "/api/es/lemmas/gato", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[lemmaJSON](t, rec)
	assert.Equal(t, "gato", got.Lemma)
	assert.Len(t, got.Wordforms, 2)

	rec = do(t, s, http.MethodGet, "/api/es/lemmas?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Items []lemmaJSON `json:"items"`
		Limit int         `json:"limit"`
		Total int         `json:"total"`
	}](t, rec)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Limit)
	assert.Equal(t, 2, list.Total)

	rec = do(t, s, http.MethodGet, "/api/es/lemmas?q=ga", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[struct {
		Items []lemmaJSON `json:"items"`
	}](t, rec).Items, 2)

	rec = do(t, s, http.MethodGet, "/api/de/lemmas/gato", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "slugs are scoped to a language")

	rec = do(t, s, http.MethodPatch, "/api/es/lemmas/gato", map[string]any{"gloss": "cat, tomcat"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tomcat")

	rec = do(t, s, http.MethodPost, "/api/es/lemmas/gato/wordforms", map[string]any{"wordform": "gatas", "grammatical_info": "f.pl"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/es/lemmas/gato/wordforms", map[string]any{"wordform": "gatas"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/es/lemmas/gato", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/es/lemmas/gato", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLemmaIsAtomic(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"lemma": "run", "wordforms": []string{"runs", "   "}}

	rec := do(t, s, http.MethodPost, "/api/en/lemmas", body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/en/lemmas/run", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/en/wordforms/runs", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body["wordforms"] = []string{"runs", "ran"}
	rec = do(t, s, http.MethodPost, "/api/en/lemmas", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "run", decodeBody[lemmaJSON](t, rec).Slug)
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   any
		fields map[string]string
	}{
		{"missing lemma", "/api/es/lemmas", map[string]any{"gloss": "x"}, map[string]string{"lemma": "required"}},
		{"empty wordform in list", "/api/es/lemmas", map[string]any{"lemma": "x", "wordforms": []string{""}}, map[string]string{"wordforms[0]": "required"}},
		{"bad username", "/api/users", map[string]any{"username": "a b"}, map[string]string{"username": "alphanum"}},
		{"source without text or url", "/api/sources", map[string]any{"title": "t"}, map[string]string{"text": "required_without=URL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decodeBody[errorJSON](t, rec)
			assert.Equal(t, "validation failed", body.Error)
			assert.Equal(t, tt.fields, body.Fields)
		})
	}

	rec := do(t, s, http.MethodPost, "/api/es/lemmas", map[string]any{"lemma": "x", "unknown": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWordformLookupAndSentences(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/es/lemmas", map[string]any{"lemma": "gato", "wordforms": []string{"gato", "gatos"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/es/wordforms/Gatos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	matches := decodeBody[struct {
		Matches []struct {
			Wordform  string `json:"wordform"`
			LemmaSlug string `json:"lemma_slug"`
		} `json:"matches"`
	}](t, rec).Matches
	require.Len(t, matches, 1)
	assert.Equal(t, "gatos", matches[0].Wordform)
	assert.Equal(t, "gato", matches[0].LemmaSlug)

	rec = do(t, s, http.MethodGet, "/api/es/wordforms/perro", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/es/sentences", map[string]any{"sentence": "Los gatos duermen y el gato come.", "translation": "Cats sleep and the cat eats."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decodeBody[struct {
		Linked int `json:"linked"`
	}](t, rec).Linked)

	rec = do(t, s, http.MethodGet, "/api/es/sentences?lemma=gato", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sentences := decodeBody[struct {
		Items []struct {
			Sentence string `json:"sentence"`
		} `json:"items"`
	}](t, rec).Items
	require.Len(t, sentences, 1)
	assert.Equal(t, "Los gatos duermen y el gato come.", sentences[0].Sentence)

	rec = do(t, s, http.MethodGet, "/api/es/sentences", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/es/sentences?lemma=perro", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPhrases(t *testing.T) {
	s := newTestServer(t)

	for _, p := range []string{"de vez en cuando", "a lo mejor"} {
		rec := do(t, s, http.MethodPost, "/api/es/phrases", map[string]any{"phrase": p})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := do(t, s, http.MethodGet, "/api/es/phrases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody[struct {
		Items []struct {
			Phrase string `json:"phrase"`
		} `json:"items"`
	}](t, rec).Items
	require.Len(t, items, 2)
	assert.Equal(t, "a lo mejor", items[0].Phrase, "newest first")

	rec = do(t, s, http.MethodGet, "/api/fr/phrases", nil)
	assert.JSONEq(t, `{"items":[],"limit":50,"offset":0}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/es/phrases?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type sourceJSON struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Language      string `json:"language"`
	ImagePath     string `json:"image_path"`
	SentenceCount int    `json:"sentence_count"`
	TokenCount    int    `json:"token_count"`
	Sentences     []struct {
		Sentence string `json:"sentence"`
		Position int    `json:"position"`
	} `json:"sentences"`
}

func TestCreateSourceFromText(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/es/lemmas", map[string]any{"lemma": "gato", "wordforms": []string{"gato", "gatos"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/users", map[string]any{"username": "ana"})
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := decodeBody[struct {
		ID string `json:"id"`
	}](t, rec).ID

	rec = do(t, s, http.MethodPost, "/api/sources", map[string]any{
		"title": "Fábula", "text": "El gato duerme. Los gatos comen pescado.", "language": "es", "created_by": userID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[sourceJSON](t, rec)
	assert.Equal(t, "fabula", created.Slug)
	assert.Equal(t, 2, created.SentenceCount)
	assert.Equal(t, 2, created.TokenCount)

	rec = do(t, s, http.MethodGet, "/api/sources/fabula", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[sourceJSON](t, rec)
	require.Len(t, got.Sentences, 2)
	assert.Equal(t, "Los gatos comen pescado.", got.Sentences[1].Sentence)
	assert.Equal(t, 1, got.Sentences[1].Position)

	rec = do(t, s, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[struct {
		Items []sourceJSON `json:"items"`
	}](t, rec).Items, 1)

	rec = do(t, s, http.MethodGet, "/api/sources/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSourceDetectsLanguage(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/sources", map[string]any{
		"title": "Fox",
		"text":  "The quick brown fox jumps over the lazy dog while the children are playing in the garden.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "en", decodeBody[sourceJSON](t, rec).Language)

	rec = do(t, s, http.MethodPost, "/api/sources", map[string]any{"title": "Ciao", "text": "Ciao.", "language": "it"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"language": "supported"}, decodeBody[errorJSON](t, rec).Fields)
}

func TestCreateSourceFromURL(t *testing.T) {
	s := newTestServer(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Die Katze</title></head><body>
			<p>Die Katze schläft auf dem Sofa.</p><p>Der Hund bellt im Garten.</p></body></html>`)
	}))
	defer upstream.Close()

	t.Run("private addresses are refused", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/sources", map[string]any{"url": upstream.URL, "language": "de"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("fetched page becomes the source", func(t *testing.T) {
		checker := urlcheck.New(true)
		checker.Ports = []string{upstream.URL[strings.LastIndex(upstream.URL, ":")+1:]}
		s.fetcher = fetch.New(checker, 2*time.Second)

		rec := do(t, s, http.MethodPost, "/api/sources", map[string]any{"url": upstream.URL + "/katze", "language": "de"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		src := decodeBody[sourceJSON](t, rec)
		assert.Equal(t, "Die Katze", src.Title)
		assert.Equal(t, "die-katze", src.Slug)
		assert.Equal(t, upstream.URL+"/katze", src.URL)
		assert.Equal(t, 2, src.SentenceCount)
	})
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(t *testing.T, s *Server, path, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "page.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestUploadSourceImage(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/sources", map[string]any{"title": "Photo", "text": "Hola.", "language": "es"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = upload(t, s, "/api/sources/photo/image", "image", pngBytes(t, 300, 200))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	src := decodeBody[sourceJSON](t, rec)
	require.True(t, strings.HasSuffix(src.ImagePath, ".png"), src.ImagePath)

	f, err := os.Open(filepath.Join(s.cfg.UploadDir, src.ImagePath))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 66, cfg.Height)

	rec = do(t, s, http.MethodGet, "/uploads/"+src.ImagePath, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = upload(t, s, "/api/sources/photo/image", "image", []byte("not an image"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = upload(t, s, "/api/sources/photo/image", "file", pngBytes(t, 10, 10))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, s, "/api/sources/missing/image", "image", pngBytes(t, 10, 10))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type vocabJSON struct {
	ID           int64   `json:"id"`
	Label        string  `json:"label"`
	IntervalDays int     `json:"interval_days"`
	Repetitions  int     `json:"repetitions"`
	Easiness     float64 `json:"easiness"`
}

func TestWriteErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("upload: %w", imageutil.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{imageutil.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{fmt.Errorf("lemma 3: %w", database.ErrNotFound), http.StatusNotFound},
		{database.ErrConflict, http.StatusConflict},
		{invalid("bad"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}
}

func TestUsersAndVocabulary(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/users", map[string]any{"username": "ana", "target_language": "es"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decodeBody[struct {
		ID             string `json:"id"`
		NativeLanguage string `json:"native_language"`
	}](t, rec)
	assert.Len(t, user.ID, 36)
	assert.Equal(t, "en", user.NativeLanguage)
	base := "/api/users/" + user.ID

	rec = do(t, s, http.MethodPost, "/api/users", map[string]any{"username": "ana"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPatch, base, map[string]any{"display_name": "Ana", "telegram_chat_id": 4242})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"telegram_chat_id":4242`)

	rec = do(t, s, http.MethodPatch, base, map[string]any{"target_language": "it"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_name":"Ana"`)

	rec = do(t, s, http.MethodPost, "/api/es/lemmas", map[string]any{"lemma": "gato"})
	require.Equal(t, http.StatusCreated, rec.Code)
	lemma := decodeBody[lemmaJSON](t, rec)
	rec = do(t, s, http.MethodPost, "/api/es/phrases", map[string]any{"phrase": "a lo mejor"})
	require.Equal(t, http.StatusCreated, rec.Code)
	phraseID := decodeBody[struct {
		ID int64 `json:"id"`
	}](t, rec).ID

	rec = do(t, s, http.MethodPost, base+"/vocab", map[string]any{"lemma_id": lemma.ID, "phrase_id": phraseID})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "lemma and phrase are exclusive")
	rec = do(t, s, http.MethodPost, base+"/vocab", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, base+"/vocab", map[string]any{"lemma_id": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/vocab", map[string]any{"lemma_id": lemma.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decodeBody[vocabJSON](t, rec)
	assert.Equal(t, "gato", item.Label)
	rec = do(t, s, http.MethodPost, base+"/vocab", map[string]any{"lemma_id": lemma.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, s, http.MethodPost, base+"/vocab", map[string]any{"phrase_id": phraseID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, base+"/vocab/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	due := decodeBody[struct {
		Items []vocabJSON `json:"items"`
		Total int         `json:"total"`
	}](t, rec)
	assert.Len(t, due.Items, 2)
	assert.Equal(t, 2, due.Total)

	reviewPath := fmt.Sprintf("%s/vocab/%d/review", base, item.ID)
	rec = do(t, s, http.MethodPost, reviewPath, map[string]any{"quality": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviewed := decodeBody[struct {
		Item     vocabJSON `json:"item"`
		Mastered bool      `json:"mastered"`
	}](t, rec)
	assert.Equal(t, 1, reviewed.Item.IntervalDays)
	assert.Equal(t, 1, reviewed.Item.Repetitions)
	assert.InDelta(t, 2.5, reviewed.Item.Easiness, 1e-9)
	assert.False(t, reviewed.Mastered)

	rec = do(t, s, http.MethodGet, base+"/vocab/due?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[struct {
		Total int `json:"total"`
	}](t, rec).Total)

	rec = do(t, s, http.MethodGet, base+"/vocab", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[struct {
		Items []vocabJSON `json:"items"`
	}](t, rec).Items, 2)

	rec = do(t, s, http.MethodPost, reviewPath, map[string]any{"quality": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, reviewPath, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, base+"/vocab/999/review", map[string]any{"quality": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodGet, base+"/vocab/due?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/users/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexAndTokenize(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<script type="module" src="/static/assets/main-4f2a.js"></script>`)
	assert.Contains(t, rec.Body.String(), `<link rel="stylesheet" href="/static/assets/main-77aa.css">`)

	rec = do(t, s, http.MethodPost, "/api/tokenize", map[string]any{"text": "Don't stop. Go!"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Tokens []struct {
			Text   string `json:"text"`
			IsWord bool   `json:"is_word"`
		} `json:"tokens"`
		Sentences []string `json:"sentences"`
	}](t, rec)
	var words []string
	for _, tok := range body.Tokens {
		if tok.IsWord {
			words = append(words, tok.Text)
		}
	}
	assert.Equal(t, []string{"Don't", "stop", "Go"}, words)
	assert.Equal(t, []string{"Don't stop.", "Go!"}, body.Sentences)
}

func TestRoutesAreRegistered(t *testing.T) {
	s := newTestServer(t)
	patterns := map[string]bool{}
	require.NoError(t, chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		patterns[strings.TrimSuffix(route, "/")] = true
		return nil
	}))
	for name, pattern := range Routes {
		assert.True(t, patterns[pattern], "%s: %s", name, pattern)
	}
}

func TestDistDir(t *testing.T) {
	assert.Equal(t, "web/dist", distDir("web/dist/.vite/manifest.json"))
	assert.Equal(t, "build", distDir("build/manifest.json"))
	assert.Equal(t, "", distDir(""))
}
