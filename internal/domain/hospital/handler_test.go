package hospital

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/firstaid/firstaid/internal/platform/cache"
	"github.com/firstaid/firstaid/internal/platform/middleware"
	"github.com/firstaid/firstaid/internal/platform/places"
)

func newTestHandler(s *stubSearcher) (*Handler, *echo.Echo) {
	return NewHandler(NewService(s, cache.NewMemoryStore())), echo.New()
}

func getHospitals(e *echo.Echo, h *Handler, query string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/api/nearby-hospitals"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h.NearbyHospitals(c)
}

func TestHandler_NearbyHospitals(t *testing.T) {
	h, e := newTestHandler(&stubSearcher{places: []places.Place{
		place("City Hospital", "1 Main St", rating(4), &places.Location{Lat: 1, Lng: 2}),
	}})

	rec, err := getHospitals(e, h, "?lat=1&long=2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(middleware.CacheHeader) != "MISS" {
		t.Errorf("expected MISS header")
	}

	rec, _ = getHospitals(e, h, "?lat=1&long=2")
	if rec.Header().Get(middleware.CacheHeader) != "HIT" {
		t.Errorf("expected HIT header")
	}
}

func TestHandler_NearbyHospitals_MissingCoordinates(t *testing.T) {
	h, e := newTestHandler(&stubSearcher{})

	for _, q := range []string{"", "?lat=1", "?long=2", "?lat=&long="} {
		_, err := getHospitals(e, h, q)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %v", q, err)
			continue
		}
		if he.Message != MissingCoordinatesMsg {
			t.Errorf("%q: unexpected message %v", q, he.Message)
		}
	}
}

func TestHandler_NearbyHospitals_InvalidCoordinates(t *testing.T) {
	h, e := newTestHandler(&stubSearcher{})

	_, err := getHospitals(e, h, "?lat=abc&long=2")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_NearbyHospitals_UpstreamError(t *testing.T) {
	h, e := newTestHandler(&stubSearcher{err: errors.New("dial tcp: timeout")})

	_, err := getHospitals(e, h, "?lat=1&long=2")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	if he.Message != "dial tcp: timeout" {
		t.Errorf("unexpected message %v", he.Message)
	}
}
