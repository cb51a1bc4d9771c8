package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[{"a":1}]`, `[{"a":1}]`},
		{"plain fence", "```\n[1,2]\n```", "[1,2]"},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"prose around fence", "sure thing\n```json\n[1,2]\n```\nenjoy", "[1,2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[{"x":1}]`, extractJSONArray(`prefix [{"x":1}] suffix`))
	assert.Equal(t, "", extractJSONArray("no array here"))
	assert.Equal(t, "", extractJSONArray("] backwards ["))
}

func TestTitleFromContent(t *testing.T) {
	assert.Equal(t, "First line", titleFromContent("\n\nFirst line\nsecond line"))
	assert.Equal(t, "Untitled chapter", titleFromContent("   \n  "))

	long := make([]rune, 0, 120)
	for i := 0; i < 120; i++ {
		long = append(long, 'x')
	}
	assert.Len(t, []rune(titleFromContent(string(long))), 80)
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, countWords(""))
	assert.Equal(t, 0, countWords("   \n\t"))
	assert.Equal(t, 4, countWords("one  two\nthree\tfour"))
}
