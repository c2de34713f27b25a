package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerm(t *testing.T) {
	testCases := []struct {
		word     string
		expected string
		ok       bool
	}{
		{"Dogs", "dog", true},
		{"running", "run", true},
		{"cats,", "cat", true},
		{"don't", "dont", true},
		{"1234", "", false},
		{"12,34", "", false},
		{"...", "", false},
		{"", "", false},
		{"a", "a", true},
		{"bb", "bb", true},
		// digit check runs pre-stem, mixed tokens survive it
		{"3rd", "3rd", true},
	}

	for _, tc := range testCases {
		term, ok := Term(tc.word, nil)
		assert.Equal(t, tc.ok, ok, "word %q", tc.word)
		if tc.ok {
			assert.Equal(t, tc.expected, term, "word %q", tc.word)
		}
	}
}

func TestTermsSplitsSentencesAndWords(t *testing.T) {
	raw := []byte("Dogs run. Cats sleep!\nBirds fly.")
	terms := Terms(raw, nil)
	assert.Equal(t, []string{"dog", "run", "cat", "sleep", "bird", "fli"}, terms)
}

func TestTermsRejectsNumericTokens(t *testing.T) {
	terms := Terms([]byte("call 911 now"), nil)
	assert.Equal(t, []string{"call", "now"}, terms)
}

func TestMemoDoesNotChangeOutput(t *testing.T) {
	raw := []byte("Running runners run. Running again.")

	plain := Terms(raw, nil)

	memo := NewMemo()
	cached := Terms(raw, memo)
	require.Equal(t, plain, cached)

	// a second pass through the warm memo still matches
	again := Terms(raw, memo)
	assert.Equal(t, plain, again)
}
