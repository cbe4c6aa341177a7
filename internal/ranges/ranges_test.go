package ranges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []int
	}{
		{"ranges and singles", "1-3,5,7", []int{1, 2, 3, 5, 7}},
		{"sorted and deduped", "5,1-3", []int{1, 2, 3, 5}},
		{"overlapping ranges", "2-4,3-6,4", []int{2, 3, 4, 5, 6}},
		{"non-numeric ignored", "abc,2", []int{2}},
		{"empty", "", []int{}},
		{"all invalid", "x,y-z,-", []int{}},
		{"whitespace trimmed", " 1 , 3 - 4 ", []int{1, 3, 4}},
		{"reversed range is empty", "5-3", []int{}},
		{"reversed range next to valid token", "5-3,8", []int{8}},
		{"single element range", "4-4", []int{4}},
		{"signed numbers ignored", "+2,-3,4", []int{4}},
		{"three-part range ignored", "1-2-3,6", []int{6}},
		{"empty tokens skipped", "1,,2,", []int{1, 2}},
		{"zero kept", "0,1", []int{0, 1}},
		{"decimal ignored", "1.5,2", []int{2}},
		{"max int range ignored", "1-9223372036854775807", []int{}},
		{"huge range ignored", "1-100000000000,3", []int{3}},
		{"span past limit ignored", "1-10001,2", []int{2}},
		{"overflowing number ignored", "99999999999999999999", []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.spec)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("1-3, abc ,7,9-2")
	require.Len(t, tokens, 4)

	assert.Equal(t, Token{Raw: "1-3", Kind: KindRange, Start: 1, End: 3}, tokens[0])
	assert.Equal(t, Token{Raw: "abc", Kind: KindIgnored}, tokens[1])
	assert.Equal(t, Token{Raw: "7", Kind: KindSingle, Start: 7, End: 7}, tokens[2])
	assert.Equal(t, KindRange, tokens[3].Kind)
	assert.True(t, tokens[3].Empty())
	assert.Nil(t, tokens[3].Indices())

	assert.Equal(t, []string{"abc"}, Ignored(tokens))
}

func TestParse_LargestSpan(t *testing.T) {
	got := Parse("1-10000")
	require.Len(t, got, MaxSpan)
	assert.Equal(t, 1, got[0])
	assert.Equal(t, MaxSpan, got[MaxSpan-1])
}

func TestTokenize_OversizedRange(t *testing.T) {
	tokens := Tokenize("5,1-9223372036854775807")
	require.Len(t, tokens, 2)

	big := tokens[1]
	assert.Equal(t, KindRange, big.Kind)
	assert.Equal(t, 1, big.Start)
	assert.True(t, big.Oversized())
	assert.False(t, big.Empty())
	assert.Nil(t, big.Indices())
	assert.False(t, tokens[0].Oversized())

	assert.Equal(t, []string{"1-9223372036854775807"}, Ignored(tokens))
	assert.Equal(t, []int{5}, Expand(tokens))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "single", KindSingle.String())
	assert.Equal(t, "range", KindRange.String())
	assert.Equal(t, "ignored", KindIgnored.String())
}
