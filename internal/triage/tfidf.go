package triage

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const maxNgram = 3

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// stopWords is scikit-learn's English stop-word list.
var stopWords = toSet(
	"a", "about", "above", "across", "after", "afterwards", "again", "against",
	"all", "almost", "alone", "along", "already", "also", "although", "always",
	"am", "among", "amongst", "amoungst", "amount", "an", "and", "another", "any",
	"anyhow", "anyone", "anything", "anyway", "anywhere", "are", "around", "as",
	"at", "back", "be", "became", "because", "become", "becomes", "becoming",
	"been", "before", "beforehand", "behind", "being", "below", "beside",
	"besides", "between", "beyond", "bill", "both", "bottom", "but", "by", "call",
	"can", "cannot", "cant", "co", "con", "could", "couldnt", "cry", "de",
	"describe", "detail", "do", "done", "down", "due", "during", "each", "eg",
	"eight", "either", "eleven", "else", "elsewhere", "empty", "enough", "etc",
	"even", "ever", "every", "everyone", "everything", "everywhere", "except",
	"few", "fifteen", "fifty", "fill", "find", "fire", "first", "five", "for",
	"former", "formerly", "forty", "found", "four", "from", "front", "full",
	"further", "get", "give", "go", "had", "has", "hasnt", "have", "he", "hence",
	"her", "here", "hereafter", "hereby", "herein", "hereupon", "hers", "herself",
	"him", "himself", "his", "how", "however", "hundred", "i", "ie", "if", "in",
	"inc", "indeed", "interest", "into", "is", "it", "its", "itself", "keep",
	"last", "latter", "latterly", "least", "less", "ltd", "made", "many", "may",
	"me", "meanwhile", "might", "mill", "mine", "more", "moreover", "most",
	"mostly", "move", "much", "must", "my", "myself", "name", "namely", "neither",
	"never", "nevertheless", "next", "nine", "no", "nobody", "none", "noone",
	"nor", "not", "nothing", "now", "nowhere", "of", "off", "often", "on", "once",
	"one", "only", "onto", "or", "other", "others", "otherwise", "our", "ours",
	"ourselves", "out", "over", "own", "part", "per", "perhaps", "please", "put",
	"rather", "re", "same", "see", "seem", "seemed", "seeming", "seems",
	"serious", "several", "she", "should", "show", "side", "since", "sincere",
	"six", "sixty", "so", "some", "somehow", "someone", "something", "sometime",
	"sometimes", "somewhere", "still", "such", "system", "take", "ten", "than",
	"that", "the", "their", "them", "themselves", "then", "thence", "there",
	"thereafter", "thereby", "therefore", "therein", "thereupon", "these", "they",
	"thick", "thin", "third", "this", "those", "though", "three", "through",
	"throughout", "thru", "thus", "to", "together", "too", "top", "toward",
	"towards", "twelve", "twenty", "two", "un", "under", "until", "up", "upon",
	"us", "very", "via", "was", "we", "well", "were", "what", "whatever", "when",
	"whence", "whenever", "where", "whereafter", "whereas", "whereby", "wherein",
	"whereupon", "wherever", "whether", "which", "while", "whither", "who",
	"whoever", "whole", "whom", "whose", "why", "will", "with", "within",
	"without", "would", "yet", "you", "your", "yours", "yourself", "yourselves",
)

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

type sparseVec map[int]float64

// TFIDFClassifier scores text by cosine similarity against a phrase corpus.
type TFIDFClassifier struct {
	vocab  map[string]int
	idf    []float64
	docs   []sparseVec
	labels []string
}

// NewTFIDFClassifier fits a vectorizer on corpus. Phrases are visited in
// category order so ties resolve the same way on every run.
func NewTFIDFClassifier(corpus map[Category][]string) (*TFIDFClassifier, error) {
	var (
		texts  []string
		labels []string
	)
	for _, cat := range categoryOrder {
		for _, p := range corpus[cat] {
			texts = append(texts, p)
			labels = append(labels, string(cat))
		}
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("tfidf corpus is empty")
	}

	c := &TFIDFClassifier{vocab: map[string]int{}, labels: labels}
	docTerms := make([][]string, len(texts))
	var df []int
	for i, text := range texts {
		terms := ngrams(text)
		docTerms[i] = terms
		seen := map[int]bool{}
		for _, t := range terms {
			idx, ok := c.vocab[t]
			if !ok {
				idx = len(c.vocab)
				c.vocab[t] = idx
				df = append(df, 0)
			}
			if !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}

	n := float64(len(texts))
	c.idf = make([]float64, len(df))
	for i, d := range df {
		c.idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	c.docs = make([]sparseVec, len(texts))
	for i, terms := range docTerms {
		c.docs[i] = c.vectorize(terms)
	}
	return c, nil
}

func (c *TFIDFClassifier) Name() string { return BackendTFIDF }

func (c *TFIDFClassifier) Predict(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	q := c.vectorize(ngrams(text))

	best, bestScore := 0, -1.0
	for i, d := range c.docs {
		s := dot(q, d)
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return Prediction{Label: c.labels[best], Confidence: bestScore}, nil
}

// vectorize builds an L2-normalised tf-idf vector. Terms outside the fitted
// vocabulary are ignored.
func (c *TFIDFClassifier) vectorize(terms []string) sparseVec {
	v := sparseVec{}
	for _, t := range terms {
		if idx, ok := c.vocab[t]; ok {
			v[idx]++
		}
	}
	var norm float64
	for idx, tf := range v {
		w := tf * c.idf[idx]
		v[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for idx := range v {
		v[idx] /= norm
	}
	return v
}

func dot(a, b sparseVec) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var s float64
	for idx, x := range a {
		s += x * b[idx]
	}
	return s
}

// ngrams lowercases text, drops stop words and returns all 1..3 word n-grams.
func ngrams(text string) []string {
	var words []string
	for _, w := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[w]; !stop {
			words = append(words, w)
		}
	}
	var out []string
	for n := 1; n <= maxNgram; n++ {
		for i := 0; i+n <= len(words); i++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}
