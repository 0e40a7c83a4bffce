package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/redisclient"
	"github.com/x-xyz/marketplace/service/cache/provider"
)

type testsuite struct {
	suite.Suite
	ctx ctx.Ctx
	im  provider.Provider
}

func Test(t *testing.T) {
	uri := os.Getenv("TEST_REDIS_URI")
	if uri == "" {
		t.Skip("TEST_REDIS_URI not set")
	}
	pool, err := redisclient.Connect(context.Background(), redisclient.Config{URI: uri})
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	suite.Run(t, &testsuite{ctx: ctx.Background(), im: NewRedis(pool, "cache-test-"+uuid.NewString())})
}

func (ts *testsuite) TestSetGetDel() {
	_, _, err := ts.im.Get(ts.ctx, "nonce")
	ts.ErrorIs(err, provider.ErrNotFound)

	ts.Require().NoError(ts.im.Set(ts.ctx, "nonce", []byte("abc"), 0))
	v, ttl, err := ts.im.Get(ts.ctx, "nonce")
	ts.Require().NoError(err)
	ts.Equal([]byte("abc"), v)
	ts.Equal(time.Duration(0), ttl)

	ts.Require().NoError(ts.im.Del(ts.ctx, "nonce"))
	_, _, err = ts.im.Get(ts.ctx, "nonce")
	ts.ErrorIs(err, provider.ErrNotFound)
}

func (ts *testsuite) TestTtl() {
	ts.Require().NoError(ts.im.Set(ts.ctx, "short", []byte("x"), time.Minute))
	_, ttl, err := ts.im.Get(ts.ctx, "short")
	ts.Require().NoError(err)
	ts.True(ttl > 50*time.Second && ttl <= time.Minute, ttl)
}
