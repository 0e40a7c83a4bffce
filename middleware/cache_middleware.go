package middleware

import (
	"bufio"
	"bytes"
	"errors"
	"hash/fnv"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	bCtx "github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/service/cache"
)

const HeaderXCache = "X-Cache"

// Response is what CacheHttp stores per url
type Response struct {
	Status int
	Value  []byte
	Header http.Header
}

// recorder tees the body into buf and remembers the status
type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) Flush() {
	r.ResponseWriter.(http.Flusher).Flush()
}

func (r *recorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return r.ResponseWriter.(http.Hijacker).Hijack()
}

// cacheKey hashes the path and the query with values sorted, so parameter
// order never splits an entry
func cacheKey(u *url.URL) string {
	h := fnv.New64a()
	h.Write([]byte(u.Path))
	h.Write([]byte{'?'})
	h.Write([]byte(u.Query().Encode()))
	return strconv.FormatUint(h.Sum64(), 36)
}

// CacheHttp serves GET responses from cacheService. Only 2xx responses are
// stored, so it suits routes whose answer never changes once it exists.
func CacheHttp(cacheService cache.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Get("ctx").(bCtx.Ctx)
			key := cacheKey(c.Request().URL)

			var cached Response
			switch err := cacheService.Get(ctx, key, &cached); {
			case err == nil:
				header := c.Response().Header()
				for k, v := range cached.Header {
					header[k] = v
				}
				header.Set(HeaderXCache, "hit")
				return c.Blob(cached.Status, header.Get(echo.HeaderContentType), cached.Value)
			case !errors.Is(err, cache.ErrNotFound):
				ctx.WithField("err", err).Error("cacheService.Get failed")
			}

			c.Response().Header().Set(HeaderXCache, "miss")
			rec := &recorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			if rec.status < 200 || rec.status >= 300 {
				return nil
			}
			header := rec.Header().Clone()
			header.Del(HeaderXCache)
			if err := cacheService.Set(ctx, key, Response{Status: rec.status, Value: rec.buf.Bytes(), Header: header}); err != nil {
				ctx.WithFields(log.Fields{"err": err, "path": c.Request().URL.Path}).Error("cacheService.Set failed")
			}
			return nil
		}
	}
}
