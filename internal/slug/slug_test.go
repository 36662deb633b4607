package slug

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  café au lait  ", "cafe-au-lait"},
		{"Ελληνικά", "ελληνικα"},
		{"αγάπη", "αγαπη"},
		{"Привет, мир!", "привет-мир"},
		{"naïve---résumé", "naive-resume"},
		{"2 + 2 = 4", "2-2-4"},
		{"???", Empty},
		{"", Empty},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeTruncates(t *testing.T) {
	got := Make(strings.Repeat("ab ", 60))
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"word": true, "word-2": true}
	got, err := Unique("word", func(c string) (bool, error) { return taken[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "word-3", got)

	got, err = Unique("free", func(c string) (bool, error) { return taken[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "free", got)

	boom := errors.New("boom")
	_, err = Unique("x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestSetClaim(t *testing.T) {
	set := Set{}
	assert.Equal(t, "run", set.Claim("run"))
	assert.Equal(t, "run-2", set.Claim("Run"))
	assert.Equal(t, "run-3", set.Claim("rún"))
	assert.Equal(t, "walk", set.Claim("walk"))
}
