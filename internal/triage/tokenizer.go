package triage

import (
	"strings"
)

// DefaultFilters are the characters stripped from text before splitting.
const DefaultFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// TokenizerConfig is the serialised vocabulary of a fitted tokenizer.
type TokenizerConfig struct {
	WordIndex map[string]int `json:"word_index"`
	NumWords  int            `json:"num_words"`
	OOVToken  string         `json:"oov_token"`
	Lower     *bool          `json:"lower,omitempty"`
	Filters   *string        `json:"filters,omitempty"`
}

// Tokenizer converts text to sequences of word indices. Index 0 is reserved
// for padding and never produced.
type Tokenizer struct {
	wordIndex map[string]int
	numWords  int
	oovIndex  int
	lower     bool
	replacer  *strings.Replacer
}

// NewTokenizer builds a Tokenizer from its serialised form.
func NewTokenizer(cfg TokenizerConfig) *Tokenizer {
	lower := true
	if cfg.Lower != nil {
		lower = *cfg.Lower
	}
	filters := DefaultFilters
	if cfg.Filters != nil {
		filters = *cfg.Filters
	}

	pairs := make([]string, 0, 2*len(filters))
	for _, r := range filters {
		pairs = append(pairs, string(r), " ")
	}

	t := &Tokenizer{
		wordIndex: cfg.WordIndex,
		numWords:  cfg.NumWords,
		lower:     lower,
		replacer:  strings.NewReplacer(pairs...),
	}
	if t.wordIndex == nil {
		t.wordIndex = map[string]int{}
	}
	if cfg.OOVToken != "" {
		t.oovIndex = t.wordIndex[cfg.OOVToken]
	}
	return t
}

// Words splits text into filtered words. Only spaces separate words, so
// whitespace missing from the filters stays inside a word.
func (t *Tokenizer) Words(text string) []string {
	if t.lower {
		text = strings.ToLower(text)
	}
	text = t.replacer.Replace(text)
	parts := strings.Split(text, " ")
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// Sequence maps text to word indices. Words outside the vocabulary, or ranked
// at or beyond NumWords, become the OOV index when one exists and are dropped
// otherwise.
func (t *Tokenizer) Sequence(text string) []int {
	words := t.Words(text)
	seq := make([]int, 0, len(words))
	for _, w := range words {
		idx, ok := t.wordIndex[w]
		if ok && (t.numWords <= 0 || idx < t.numWords) {
			seq = append(seq, idx)
			continue
		}
		if t.oovIndex > 0 {
			seq = append(seq, t.oovIndex)
		}
	}
	return seq
}

// VocabularySize returns the number of embedding rows the tokenizer can address.
func (t *Tokenizer) VocabularySize() int {
	if t.numWords > 0 {
		return t.numWords
	}
	highest := 0
	for _, idx := range t.wordIndex {
		if idx > highest {
			highest = idx
		}
	}
	return highest + 1
}

// PadSequence fixes seq to length maxLen. Short sequences are left-padded
// with zeros; long ones keep their last maxLen entries.
func PadSequence(seq []int, maxLen int) []int {
	out := make([]int, maxLen)
	if len(seq) >= maxLen {
		copy(out, seq[len(seq)-maxLen:])
		return out
	}
	copy(out[maxLen-len(seq):], seq)
	return out
}
