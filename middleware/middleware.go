package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/delivery"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/base/validator"
	"github.com/x-xyz/marketplace/domain"
)

type GoMiddleware struct {
	met metrics.Service
}

func InitMiddleware() *GoMiddleware {
	return &GoMiddleware{met: metrics.New("http")}
}

// AddContext puts a ctx.Ctx tagged with the request id under "ctx"
func (m *GoMiddleware) AddContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			c.Set("ctx", ctx.WithValue(ctx.From(c.Request().Context()), "requestID", reqID))
			return next(c)
		}
	}
}

// ResponseLogger logs and times every request. Handler errors are rendered
// here so the logged status is the one the client sees.
func (m *GoMiddleware) ResponseLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			status := strconv.Itoa(res.Status)
			elapsed := time.Since(start)
			m.met.BumpHistogram("request.ms", float64(elapsed.Milliseconds()), "method", req.Method, "path", c.Path(), "status", status[:1]+"xx")

			fields := log.Fields{
				"ms":         elapsed.Milliseconds(),
				"httpStatus": res.Status,
				"httpMethod": req.Method,
				"uri":        req.URL.Path,
				"route":      c.Path(),
				"remoteIP":   c.RealIP(),
				"size":       res.Size,
				"userAgent":  req.UserAgent(),
			}
			if addr, ok := c.Get("address").(domain.Address); ok {
				fields["account"] = addr
			}

			logger := c.Get("ctx").(ctx.Ctx).WithFields(fields)
			switch {
			case res.Status >= 500:
				logger.WithField("err", err).Error("response")
			case res.Status >= 400:
				logger.WithField("err", err).Warn("response")
			default:
				logger.Info("response")
			}
			return nil
		}
	}
}

// IsValidAddress rejects requests whose path param is not a hex address
func IsValidAddress(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !validator.IsValidAddress(c.Param(param)) {
				return delivery.MakeJsonResp(c, 0, domain.ErrInvalidAddress)
			}
			return next(c)
		}
	}
}
