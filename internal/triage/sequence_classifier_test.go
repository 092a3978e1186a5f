package triage

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyArtifact(labels []string, outBias []float64) *Artifact {
	return &Artifact{
		MaxLen: 6,
		Tokenizer: TokenizerConfig{
			WordIndex: map[string]int{"<OOV>": 1, "deep": 2, "cut": 3},
			NumWords:  4,
			OOVToken:  "<OOV>",
		},
		Labels: labels,
		Layers: tinyLayers(4, len(labels), outBias),
	}
}

func writeArtifact(t *testing.T, a *Artifact) string {
	t.Helper()
	b, err := json.Marshal(a)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestSequenceClassifier_Predict(t *testing.T) {
	c, err := NewSequenceClassifier(tinyArtifact([]string{"bleeding", "burns"}, []float64{0, 5}))
	require.NoError(t, err)
	assert.Equal(t, BackendSequence, c.Name())

	pred, err := c.Predict(context.Background(), "deep cut on my arm")
	require.NoError(t, err)
	assert.Equal(t, "burns", pred.Label)
	assert.InDelta(t, 1/(1+math.Exp(-5)), pred.Confidence, 1e-9)
}

func TestSequenceClassifier_UniformOutputIsUnknown(t *testing.T) {
	labels := []string{"bleeding", "burns", "seizure", "stroke"}
	c, err := NewSequenceClassifier(tinyArtifact(labels, nil))
	require.NoError(t, err)

	res, err := NewAssessor(c, DefaultThreshold).Assess(context.Background(), "deep cut")
	require.NoError(t, err)
	assert.Equal(t, CategoryUnknown, res.EmergencyType)
	assert.InDelta(t, 0.25, res.Confidence, 1e-9)
}

func TestSequenceClassifier_DefaultsMaxLen(t *testing.T) {
	a := tinyArtifact([]string{"bleeding", "burns"}, nil)
	a.MaxLen = 0
	c, err := NewSequenceClassifier(a)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxLen, c.maxLen)
}

func TestSequenceClassifier_Validation(t *testing.T) {
	_, err := NewSequenceClassifier(tinyArtifact(nil, nil))
	assert.Error(t, err)

	a := tinyArtifact([]string{"bleeding", "burns"}, nil)
	a.Labels = []string{"bleeding", "burns", "stroke"}
	_, err = NewSequenceClassifier(a)
	assert.ErrorContains(t, err, "labels")

	a = tinyArtifact([]string{"bleeding", "burns"}, nil)
	a.Tokenizer.NumWords = 50
	_, err = NewSequenceClassifier(a)
	assert.ErrorContains(t, err, "embedding")
}

func TestLoadSequenceClassifier(t *testing.T) {
	path := writeArtifact(t, tinyArtifact([]string{"bleeding", "burns"}, []float64{3, 0}))

	c, err := LoadSequenceClassifier(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bleeding", "burns"}, c.Labels())

	pred, err := c.Predict(context.Background(), "cut")
	require.NoError(t, err)
	assert.Equal(t, "bleeding", pred.Label)
}

func TestLoadSequenceClassifier_Errors(t *testing.T) {
	_, err := LoadSequenceClassifier(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadArtifact(strings.NewReader("{not json"))
	assert.ErrorContains(t, err, "decode model artifact")
}
