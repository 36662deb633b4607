package tsgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	c := Constants{
		Languages:         []string{"el", "en"},
		MaxPageSize:       200,
		ImageMaxDimension: 1600,
		Grades:            map[string]int{"perfect": 5, "blackout": 0, "correct-difficult": 3},
		Routes:            map[string]string{"lemmas": "/api/{lang}/lemmas", "languages": "/api/languages"},
	}

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, c))

	want := `// Code generated by lemmabank gen-ts. DO NOT EDIT.

export const SUPPORTED_LANGUAGES = ["el", "en"] as const;

export type LanguageCode = (typeof SUPPORTED_LANGUAGES)[number];

export const MAX_PAGE_SIZE = 200;

export const IMAGE_MAX_DIMENSION = 1600;

export const REVIEW_GRADES = {
  BLACKOUT: 0,
  CORRECT_DIFFICULT: 3,
  PERFECT: 5,
} as const;

export type ReviewGrade = (typeof REVIEW_GRADES)[keyof typeof REVIEW_GRADES];

export const API_ROUTES = {
  LANGUAGES: "/api/languages",
  LEMMAS: "/api/{lang}/lemmas",
} as const;
`
	assert.Equal(t, want, buf.String())
}

func TestGenerateIsDeterministic(t *testing.T) {
	c := Constants{
		Languages: []string{"fr"},
		Routes:    map[string]string{"a": "/a", "b": "/b", "c": "/c", "d": "/d"},
		Grades:    map[string]int{"x": 1, "y": 2, "z": 3},
	}
	var first, second bytes.Buffer
	require.NoError(t, Generate(&first, c))
	require.NoError(t, Generate(&second, c))
	assert.Equal(t, first.String(), second.String())
}
