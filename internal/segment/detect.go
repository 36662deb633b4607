package segment

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

var linguaLanguages = map[string]lingua.Language{
	"ar": lingua.Arabic,
	"cs": lingua.Czech,
	"da": lingua.Danish,
	"de": lingua.German,
	"el": lingua.Greek,
	"en": lingua.English,
	"es": lingua.Spanish,
	"fi": lingua.Finnish,
	"fr": lingua.French,
	"he": lingua.Hebrew,
	"hu": lingua.Hungarian,
	"it": lingua.Italian,
	"ja": lingua.Japanese,
	"ko": lingua.Korean,
	"nl": lingua.Dutch,
	"pl": lingua.Polish,
	"pt": lingua.Portuguese,
	"ro": lingua.Romanian,
	"ru": lingua.Russian,
	"sv": lingua.Swedish,
	"th": lingua.Thai,
	"tr": lingua.Turkish,
	"uk": lingua.Ukrainian,
	"zh": lingua.Chinese,
}

// Detector guesses the language of a text among a fixed set of ISO 639-1 codes.
type Detector struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
	only     string
}

// NewDetector builds a detector for the given codes. Codes lingua does not
// know are ignored.
func NewDetector(codes []string) *Detector {
	d := &Detector{codes: make(map[lingua.Language]string)}
	var languages []lingua.Language
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if lang, ok := linguaLanguages[code]; ok {
			if _, dup := d.codes[lang]; !dup {
				d.codes[lang] = code
				languages = append(languages, lang)
			}
		}
	}

	switch len(languages) {
	case 0:
	case 1:
		// lingua needs at least two candidates
		d.only = d.codes[languages[0]]
	default:
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	}
	return d
}

// Detect returns the ISO 639-1 code of the language of text, or "" when the
// text is too short or ambiguous.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if d.detector == nil {
		return d.only
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return d.codes[lang]
}
