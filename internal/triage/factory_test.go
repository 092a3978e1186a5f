package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	modelPath := writeArtifact(t, tinyArtifact([]string{"bleeding", "burns"}, nil))

	tests := []struct {
		name     string
		backend  string
		path     string
		wantName string
		wantErr  bool
	}{
		{"auto without model", BackendAuto, "", BackendTFIDF, false},
		{"empty backend", "", "", BackendTFIDF, false},
		{"auto with model", BackendAuto, modelPath, BackendSequence, false},
		{"lstm", BackendSequence, modelPath, BackendSequence, false},
		{"lstm without model", BackendSequence, "", "", true},
		{"tfidf ignores model", BackendTFIDF, modelPath, BackendTFIDF, false},
		{"unknown backend", "bert", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.backend, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}
