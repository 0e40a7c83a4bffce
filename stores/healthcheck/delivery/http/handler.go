package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketplace/base/ctx"
	hcdomain "github.com/x-xyz/marketplace/domain/healthcheck"
)

type healthCheckHandler struct {
	healthCheck hcdomain.HealthCheckUsecase
}

func New(e *echo.Echo, us hcdomain.HealthCheckUsecase) {
	handler := &healthCheckHandler{
		healthCheck: us,
	}
	e.GET("/health", handler.check)
}

//	@Summary	backend health
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	hcdomain.Report
//	@Failure	503	{object}	hcdomain.Report
//	@Router		/health [get]
func (h *healthCheckHandler) check(c echo.Context) error {
	rep := h.healthCheck.Check(c.Get("ctx").(ctx.Ctx))
	if !rep.Healthy {
		return c.JSON(http.StatusServiceUnavailable, rep)
	}
	return c.JSON(http.StatusOK, rep)
}
