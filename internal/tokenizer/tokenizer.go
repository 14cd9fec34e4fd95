package tokenizer

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// wordSeparators splits text on any run of characters outside
// [a-zA-Z0-9-_], mirroring how terms are stored in the lexicon.
var wordSeparators = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)

type Tokenizer struct {
	StopWords map[string]bool

	// Stemming applies the Snowball english stemmer to every surviving
	// token. It must be enabled (or disabled) consistently at index and
	// query time.
	Stemming bool
}

func New() *Tokenizer {
	return &Tokenizer{
		StopWords: defaultStopWords(),
	}
}

// Tokenize lowercases text, splits it into terms and drops stopwords and
// empty tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := wordSeparators.Split(strings.ToLower(text), -1)

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		if t.StopWords[word] {
			continue
		}
		if t.Stemming {
			word = t.stem(word)
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func (t *Tokenizer) stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil {
		return word
	}
	return stemmed
}

func defaultStopWords() map[string]bool {
	words := []string{
		"the", "of", "at", "on", "in", "is", "it",
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
		"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
		"and", "or",
	}

	stopWords := make(map[string]bool, len(words))
	for _, word := range words {
		stopWords[word] = true
	}
	return stopWords
}
