package server

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/example/lemmabank/internal/segment"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>lemmabank</title>
{{.Tags}}
</head>
<body>
<div id="app"></div>
</body>
</html>
`))

type tokenizeRequest struct {
	Text string `json:"text" validate:"required,max=100000"`
}

// handleIndex renders the HTML shell the frontend mounts into.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var tags template.HTML
	if s.manifest != nil {
		var err error
		if tags, err = s.manifest.Tags(EntryPoint); err != nil {
			writeError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, struct{ Tags template.HTML }{tags})
	if err != nil {
		writeError(w, r, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"languages": s.cfg.SupportedLanguages})
}

// handleTokenize shows how a text is segmented and which language it is
// taken for.
func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var req tokenizeRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tokens := segment.Tokenize(req.Text)
	if tokens == nil {
		tokens = []segment.Token{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language":  s.detector.Detect(req.Text),
		"tokens":    tokens,
		"sentences": segment.SplitSentences(req.Text),
	})
}
