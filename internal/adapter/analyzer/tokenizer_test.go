package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_Example(t *testing.T) {
	tokens := Tokenize("The Quick fox-jumps! 测试 测试", StopwordSet([]string{"the"}))
	assert.Equal(t, []string{"quick", "fox", "jumps", "测试", "测试"}, tokens)
}

func TestTokenize_DigitsSurvive(t *testing.T) {
	tokens := Tokenize("v0 11 22 33 44 55 66 77 88 99 x123456789", nil)
	assert.Equal(t, []string{"v0", "11", "22", "33", "44", "55", "66", "77", "88", "99", "x123456789"}, tokens)
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer(StopwordSet([]string{"the", "的"}))

	tokens := tok.Tokenize("the quick brown fox 的确")
	assert.Equal(t, []string{"quick", "brown", "fox", "的确"}, tokens)
	assert.True(t, tok.IsStopword("the"))
	assert.False(t, tok.IsStopword("fox"))
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer(nil)

	tokens := tok.Tokenize("a I go 我 x_")
	assert.Equal(t, []string{"go", "x_"}, tokens)
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(nil)

	tokens := tok.Tokenize("")
	assert.NotNil(t, tokens)
	assert.Empty(t, tokens)

	assert.Empty(t, tok.Tokenize("!!! ... ---"))
}

func TestTokenize_Separators(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"hello_world", []string{"hello_world"}},
		{"hello-world", []string{"hello", "world"}},
		{"func(xy, yz)", []string{"func", "xy", "yz"}},
		{"CamelCase", []string{"camelcase"}},
		{"snake_case_name", []string{"snake_case_name"}},
		{"123numbers456", []string{"123numbers456"}},
		{"café naïve", []string{"caf", "na", "ve"}},
		{"中文abc混合", []string{"中文abc混合"}},
		{"line1\nline2\ttab", []string{"line1", "line2", "tab"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input, nil))
		})
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	text := "retrieval ranks chunks; ranks retrieval again"
	assert.Equal(t, Tokenize(text, nil), Tokenize(text, nil))
}
