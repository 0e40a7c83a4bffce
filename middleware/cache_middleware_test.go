package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/service/cache"
	"github.com/x-xyz/marketplace/service/cache/provider/primitive"
)

type cacheMiddlewareSuite struct {
	suite.Suite

	cache cache.Service
	e     *echo.Echo
	calls int
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) SetupTest() {
	s.cache = cache.New(cache.ServiceConfig{
		Pfx:   "httpCacheMiddleware",
		Cache: primitive.NewPrimitive("httpCacheMiddleware", 1),
	})
	s.calls = 0
	s.e = echo.New()
	s.e.Use(InitMiddleware().AddContext())
	g := s.e.Group("", CacheHttp(s.cache))
	g.GET("/hello", func(c echo.Context) error {
		s.calls++
		if s.calls == 1 {
			return c.String(http.StatusOK, "Hello, World")
		}
		return c.String(http.StatusOK, "Hello, again")
	})
	g.GET("/missing", func(c echo.Context) error {
		s.calls++
		return c.String(http.StatusNotFound, "not yet")
	})
	g.POST("/hello", func(c echo.Context) error {
		s.calls++
		return c.String(http.StatusCreated, "posted")
	})
}

func (s *cacheMiddlewareSuite) serve(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func (s *cacheMiddlewareSuite) TestHit() {
	rec := s.serve(http.MethodGet, "/hello?b=2&a=1")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Hello, World", rec.Body.String())
	s.Equal("miss", rec.Header().Get(HeaderXCache))

	// same query in another order hits the same entry
	rec = s.serve(http.MethodGet, "/hello?a=1&b=2")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Hello, World", rec.Body.String())
	s.Equal("hit", rec.Header().Get(HeaderXCache))
	s.Equal(echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
	s.Equal(1, s.calls)

	u, err := url.Parse("/hello?a=1&b=2")
	s.Require().NoError(err)
	res := Response{}
	s.NoError(s.cache.Get(ctx.Background(), cacheKey(u), &res))
	s.Equal(http.StatusOK, res.Status)
	s.Empty(res.Header.Get(HeaderXCache))

	// another path is another entry
	s.Equal("Hello, again", s.serve(http.MethodGet, "/hello?a=1").Body.String())
}

func (s *cacheMiddlewareSuite) TestErrorsNotCached() {
	s.Equal(http.StatusNotFound, s.serve(http.MethodGet, "/missing").Code)
	s.Equal(http.StatusNotFound, s.serve(http.MethodGet, "/missing").Code)
	s.Equal(2, s.calls)
}

func (s *cacheMiddlewareSuite) TestOnlyGet() {
	s.Equal(http.StatusCreated, s.serve(http.MethodPost, "/hello").Code)
	s.Equal(http.StatusCreated, s.serve(http.MethodPost, "/hello").Code)
	s.Equal(2, s.calls)
}
