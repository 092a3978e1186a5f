package triage

import "fmt"

// New builds the classifier for backend. BackendAuto selects the sequence
// network when modelPath is set and the TF-IDF corpus otherwise.
func New(backend, modelPath string) (Classifier, error) {
	switch backend {
	case "", BackendAuto:
		if modelPath != "" {
			return loadSequence(modelPath)
		}
		return loadTFIDF()
	case BackendSequence:
		if modelPath == "" {
			return nil, fmt.Errorf("backend %q requires a model path", backend)
		}
		return loadSequence(modelPath)
	case BackendTFIDF:
		return loadTFIDF()
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", backend)
	}
}

func loadSequence(path string) (Classifier, error) {
	c, err := LoadSequenceClassifier(path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func loadTFIDF() (Classifier, error) {
	c, err := NewTFIDFClassifier(DefaultPhrases)
	if err != nil {
		return nil, err
	}
	return c, nil
}
