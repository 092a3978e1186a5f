package emergency

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firstaid/firstaid/internal/platform/middleware"
	"github.com/firstaid/firstaid/internal/triage"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/emergency-response", h.EmergencyResponse)
}

type emergencyRequest struct {
	Message string `json:"message"`
}

func (h *Handler) EmergencyResponse(c echo.Context) error {
	var req emergencyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	body, hit, err := h.svc.Respond(c.Request().Context(), req.Message)
	if err != nil {
		if errors.Is(err, triage.ErrEmptyInput) {
			return echo.NewHTTPError(http.StatusBadRequest, "message is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	middleware.SetCacheStatus(c, hit)
	return c.JSONBlob(http.StatusOK, body)
}

