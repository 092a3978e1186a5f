package hospital

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firstaid/firstaid/internal/platform/middleware"
)

// MissingCoordinatesMsg is the exact 400 body text for absent lat/long.
const MissingCoordinatesMsg = "Latitude and Longitude are required"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/nearby-hospitals", h.NearbyHospitals)
}

func (h *Handler) NearbyHospitals(c echo.Context) error {
	body, hit, err := h.svc.Respond(c.Request().Context(), c.QueryParam("lat"), c.QueryParam("long"))
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCoordinates):
			return echo.NewHTTPError(http.StatusBadRequest, MissingCoordinatesMsg)
		case errors.Is(err, ErrInvalidCoordinates):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	middleware.SetCacheStatus(c, hit)
	return c.JSONBlob(http.StatusOK, body)
}
