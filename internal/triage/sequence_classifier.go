package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefaultMaxLen is the padded sequence length the network was trained on.
const DefaultMaxLen = 50

// Artifact is the exported form of a trained sequence classifier: vocabulary,
// label encoder classes and layer weights.
type Artifact struct {
	MaxLen    int             `json:"max_len"`
	Tokenizer TokenizerConfig `json:"tokenizer"`
	Labels    []string        `json:"labels"`
	Layers    []LayerSpec     `json:"layers"`
}

// SequenceClassifier runs tokenize, pad, network inference and label decoding.
type SequenceClassifier struct {
	tokenizer *Tokenizer
	network   *Network
	labels    []string
	maxLen    int
}

// NewSequenceClassifier validates an artifact and builds the classifier.
func NewSequenceClassifier(a *Artifact) (*SequenceClassifier, error) {
	if len(a.Labels) == 0 {
		return nil, fmt.Errorf("artifact has no labels")
	}
	maxLen := a.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	net, err := NewNetwork(a.Layers)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	if net.OutputDim() != len(a.Labels) {
		return nil, fmt.Errorf("network emits %d classes but artifact has %d labels", net.OutputDim(), len(a.Labels))
	}

	tok := NewTokenizer(a.Tokenizer)
	if v := tok.VocabularySize(); v > net.InputVocabulary() {
		return nil, fmt.Errorf("tokenizer addresses %d words but embedding has %d rows", v, net.InputVocabulary())
	}

	return &SequenceClassifier{
		tokenizer: tok,
		network:   net,
		labels:    append([]string(nil), a.Labels...),
		maxLen:    maxLen,
	}, nil
}

// LoadArtifact decodes an artifact from r.
func LoadArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return &a, nil
}

// LoadSequenceClassifier reads the artifact at path and builds a classifier.
func LoadSequenceClassifier(path string) (*SequenceClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	a, err := LoadArtifact(f)
	if err != nil {
		return nil, err
	}
	return NewSequenceClassifier(a)
}

func (s *SequenceClassifier) Name() string { return BackendSequence }

// Labels returns the encoder classes in index order.
func (s *SequenceClassifier) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Probabilities returns the network's output vector for text.
func (s *SequenceClassifier) Probabilities(text string) ([]float64, error) {
	seq := PadSequence(s.tokenizer.Sequence(text), s.maxLen)
	return s.network.Forward(seq)
}

func (s *SequenceClassifier) Predict(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	probs, err := s.Probabilities(text)
	if err != nil {
		return Prediction{}, err
	}
	idx := argmax(probs)
	return Prediction{Label: s.labels[idx], Confidence: probs[idx]}, nil
}
