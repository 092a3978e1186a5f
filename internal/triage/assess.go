package triage

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultThreshold is the probability a prediction must exceed to be reported.
	DefaultThreshold = 0.35

	Disclaimer    = "This is not medical advice. Call emergency services for serious situations."
	UnknownMsg    = "Unable to determine emergency type confidently. When in doubt, call 911."
	GeneralAdvice = "Ensure scene safety, check responsiveness, and call for help."
)

// Result is the response body for a classified message.
type Result struct {
	EmergencyType Category `json:"emergency_type"`
	Confidence    float64  `json:"confidence"`
	Remedy        *Remedy  `json:"remedy,omitempty"`
	Message       string   `json:"message,omitempty"`
	GeneralAdvice string   `json:"general_advice,omitempty"`
	Disclaimer    string   `json:"disclaimer"`
}

// IsUnknown reports whether the result fell below the threshold.
func (r *Result) IsUnknown() bool {
	return r.EmergencyType == CategoryUnknown
}

// Assessor turns classifier output into first-aid guidance.
type Assessor struct {
	classifier Classifier
	threshold  float64
}

// NewAssessor creates an Assessor. A threshold outside (0,1) falls back to
// DefaultThreshold.
func NewAssessor(c Classifier, threshold float64) *Assessor {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Assessor{classifier: c, threshold: threshold}
}

// Threshold returns the configured confidence cutoff.
func (a *Assessor) Threshold() float64 {
	return a.threshold
}

// ClassifierName returns the name of the underlying backend.
func (a *Assessor) ClassifierName() string {
	return a.classifier.Name()
}

// Assess classifies text and attaches the remedy for the predicted category.
func (a *Assessor) Assess(ctx context.Context, text string) (*Result, error) {
	text = Normalize(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	pred, err := a.classifier.Predict(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s classifier: %w", a.classifier.Name(), err)
	}
	conf := clamp01(pred.Confidence)

	if conf > a.threshold {
		if cat, ok := ParseCategory(pred.Label); ok {
			remedy, _ := RemedyFor(cat)
			return &Result{
				EmergencyType: cat,
				Confidence:    conf,
				Remedy:        &remedy,
				Disclaimer:    Disclaimer,
			}, nil
		}
	}

	return &Result{
		EmergencyType: CategoryUnknown,
		Confidence:    conf,
		Message:       UnknownMsg,
		GeneralAdvice: GeneralAdvice,
		Disclaimer:    Disclaimer,
	}, nil
}

// Normalize trims and lowercases a message. Both the cache key and the
// classifier input are derived from it.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
