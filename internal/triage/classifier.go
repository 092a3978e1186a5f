package triage

import (
	"context"
	"errors"
)

// ErrEmptyInput is returned when there is nothing to classify.
var ErrEmptyInput = errors.New("empty input")

// Prediction is the raw output of a classifier before thresholding.
type Prediction struct {
	Label      string
	Confidence float64
}

// Classifier maps free text to a label and a confidence score.
type Classifier interface {
	// Predict classifies already-normalised text.
	Predict(ctx context.Context, text string) (Prediction, error)

	// Name identifies the backend in logs and health output.
	Name() string
}

// Backend names accepted by New.
const (
	BackendAuto     = "auto"
	BackendSequence = "lstm"
	BackendTFIDF    = "tfidf"
)
