package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketplace/base/ctx"
	hcdomain "github.com/x-xyz/marketplace/domain/healthcheck"
	"github.com/x-xyz/marketplace/middleware"
	"github.com/x-xyz/marketplace/stores/healthcheck/usecase"
)

type pinger struct {
	name string
	err  error
}

func (p *pinger) Name() string         { return p.name }
func (p *pinger) Ping(ctx.Ctx) error { return p.err }

func TestHealth(t *testing.T) {
	req := require.New(t)
	redis := &pinger{name: "redis"}

	e := echo.New()
	e.Use(middleware.InitMiddleware().AddContext())
	New(e, usecase.New(0, &pinger{name: "mongo"}, redis))

	get := func() (int, hcdomain.Report) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var rep hcdomain.Report
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &rep))
		return rec.Code, rep
	}

	code, rep := get()
	req.Equal(http.StatusOK, code)
	req.True(rep.Healthy)

	redis.err = errors.New("connection refused")
	code, rep = get()
	req.Equal(http.StatusServiceUnavailable, code)
	req.Equal(map[string]string{"mongo": hcdomain.StatusOK, "redis": hcdomain.StatusDown}, rep.Components)
}
