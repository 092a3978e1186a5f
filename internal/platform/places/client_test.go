package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "status": "OK",
  "results": [
    {"name": "City General", "vicinity": "1 Main St", "rating": 4.2,
     "geometry": {"location": {"lat": 40.71, "lng": -74.0}}},
    {"name": "No Rating Clinic", "vicinity": "2 Side St",
     "geometry": {"location": {"lat": 40.72, "lng": -74.01}}},
    {"name": "Nowhere Hospital", "vicinity": "unknown"}
  ]
}`

func TestNearbyHospitals(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"location": q.Get("location"),
			"radius":   q.Get("radius"),
			"type":     q.Get("type"),
			"key":      q.Get("key"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL+"/"))
	places, err := c.NearbyHospitals(context.Background(), 40.7128, -74.006, 0)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"location": "40.7128,-74.006",
		"radius":   "5000",
		"type":     "hospital",
		"key":      "test-key",
	}, gotQuery)

	require.Len(t, places, 3)
	assert.Equal(t, "City General", places[0].Name)
	require.NotNil(t, places[0].Rating)
	assert.Equal(t, 4.2, *places[0].Rating)
	assert.Nil(t, places[1].Rating)
	assert.Equal(t, &Location{Lat: 40.72, Lng: -74.01}, places[1].Location())
	assert.Nil(t, places[2].Location())
}

func TestNearbyHospitals_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1200", r.URL.Query().Get("radius"))
		w.Write([]byte(`{"status":"ZERO_RESULTS"}`))
	}))
	defer srv.Close()

	places, err := NewClient("k", WithBaseURL(srv.URL)).NearbyHospitals(context.Background(), 1, 2, 1200)
	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestNearbyHospitals_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewClient("", WithBaseURL(srv.URL)).NearbyHospitals(context.Background(), 1, 2, 0)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called)
}

func TestNearbyHospitals_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"http status", http.StatusBadGateway, "oops", "status 502"},
		{"bad json", http.StatusOK, "{", "decode response"},
		{"denied", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`, "REQUEST_DENIED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("k", WithBaseURL(srv.URL)).NearbyHospitals(context.Background(), 1, 2, 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNearbyHospitals_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OVER_QUERY_LIMIT"}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).NearbyHospitals(context.Background(), 1, 2, 0)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "OVER_QUERY_LIMIT", se.Status)
}

func TestNearbyHospitals_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("super-secret", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := c.NearbyHospitals(context.Background(), 1, 2, 0)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
}

func TestWithTimeout_LeavesSharedClientUntouched(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	before := NewClient("key", WithTimeout(2*time.Second), WithHTTPClient(shared))
	after := NewClient("key", WithHTTPClient(shared), WithTimeout(2*time.Second))

	assert.Equal(t, time.Minute, shared.Timeout)
	for _, c := range []*Client{before, after} {
		assert.NotSame(t, shared, c.httpClient)
		assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	}
	assert.Same(t, shared, NewClient("key", WithHTTPClient(shared)).httpClient)
}
