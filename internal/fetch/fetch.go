// Package fetch downloads web pages for use as reading sources and reduces
// them to plain text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/example/lemmabank/internal/urlcheck"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxBodyBytes bounds the size of a downloaded page.
const MaxBodyBytes = 5 << 20

// ErrUnsupportedContent is returned for responses that are neither HTML nor plain text.
var ErrUnsupportedContent = errors.New("unsupported content type")

// Page is the readable content of a fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher downloads validated URLs.
type Fetcher struct {
	checker *urlcheck.Checker
	client  *http.Client
}

// New returns a fetcher whose requests are guarded by checker.
func New(checker *urlcheck.Checker, timeout time.Duration) *Fetcher {
	return &Fetcher{checker: checker, client: checker.Client(timeout)}
}

// Fetch validates raw, downloads it and extracts its title and text.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (*Page, error) {
	u, err := f.checker.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "lemmabank/1.0")
	req.Header.Set("Accept", "text/html, text/plain;q=0.9")

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", u.Host, resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "text/html"
	}
	body := io.LimitReader(resp.Body, MaxBodyBytes)

	page := &Page{URL: u.String()}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		page.Title, page.Text, err = ExtractText(body)
		if err != nil {
			return nil, err
		}
	case "text/plain":
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", u.Host, err)
		}
		page.Text = strings.TrimSpace(string(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, mediaType)
	}

	log.Debug().
		Str("host", u.Host).
		Int("chars", len(page.Text)).
		Dur("took", time.Since(started)).
		Msg("page fetched")
	return page, nil
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Form:     true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Article: true, atom.Section: true, atom.Pre: true, atom.Td: true, atom.Br: true,
	atom.Dd: true, atom.Dt: true, atom.Figcaption: true,
}

// ExtractText returns the document title and the readable text of an HTML
// document, one paragraph per block element.
func ExtractText(r io.Reader) (string, string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse html: %w", err)
	}

	var title string
	var paragraphs []string
	var current strings.Builder
	flush := func() {
		if p := strings.Join(strings.Fields(current.String()), " "); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Title {
				if title == "" && n.FirstChild != nil {
					title = strings.Join(strings.Fields(n.FirstChild.Data), " ")
				}
				return
			}
			if skipped[n.DataAtom] {
				return
			}
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			current.WriteByte(' ')
		}
		isBlock := n.Type == html.ElementNode && blocks[n.DataAtom]
		if isBlock {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBlock {
			flush()
		}
	}
	walk(doc)
	flush()

	return title, strings.Join(paragraphs, "\n\n"), nil
}
