package incident

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/firstaid/firstaid/internal/platform/auth"
	"github.com/firstaid/firstaid/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the incident log under an already-authenticated group.
func (h *Handler) RegisterRoutes(admin *echo.Group) {
	g := admin.Group("", auth.RequireRole(auth.RoleAdmin))
	g.GET("/incidents", h.ListIncidents)
	g.GET("/incidents/stats", h.Stats)
}

func (h *Handler) ListIncidents(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Stats(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	counts, err := h.svc.Stats(c.Request().Context(), f)
	if err != nil {
		return serviceError(err)
	}
	total := 0
	for _, tc := range counts {
		total += tc.Count
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":   total,
		"by_type": counts,
	})
}

func filterFromQuery(c echo.Context) (Filter, error) {
	f := Filter{EmergencyType: strings.TrimSpace(c.QueryParam("type"))}
	var err error
	if f.Since, err = timeParam(c, "since"); err != nil {
		return Filter{}, err
	}
	if f.Until, err = timeParam(c, "until"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func timeParam(c echo.Context, name string) (*time.Time, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func serviceError(err error) error {
	if errors.Is(err, ErrInvalidFilter) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
