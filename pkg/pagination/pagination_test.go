package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/incidents"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=500", MaxLimit, 0},
		{"?limit=-3&offset=-1", DefaultLimit, 0},
		{"?limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tt := range tests {
		p := paramsFor(t, tt.query)
		if p.Limit != tt.wantLimit {
			t.Errorf("%q: expected limit %d, got %d", tt.query, tt.wantLimit, p.Limit)
		}
		if p.Offset != tt.wantOffset {
			t.Errorf("%q: expected offset %d, got %d", tt.query, tt.wantOffset, p.Offset)
		}
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse([]int{1, 2}, 5, Params{Limit: 2, Offset: 0})
	if !r.HasMore {
		t.Error("expected HasMore to be true")
	}
	if r.NextOffset == nil || *r.NextOffset != 2 {
		t.Errorf("expected next offset 2, got %v", r.NextOffset)
	}
}

func TestNewResponse_LastPage(t *testing.T) {
	r := NewResponse([]int{5}, 5, Params{Limit: 2, Offset: 4})
	if r.HasMore {
		t.Error("expected HasMore to be false on the last page")
	}
	if r.NextOffset != nil {
		t.Errorf("expected no next offset, got %d", *r.NextOffset)
	}
	if r.Total != 5 || r.Limit != 2 || r.Offset != 4 {
		t.Errorf("unexpected response %+v", r)
	}
}
