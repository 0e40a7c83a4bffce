package primitive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/service/cache/provider"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	im *impl
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) SetupTest() {
	ts.im = NewPrimitive("test", 1).(*impl)
}

func (ts *testsuite) TearDownTest() {
	ts.im.cache.Clear()
}

func (ts *testsuite) TestSetGet() {
	ts.Require().NoError(ts.im.Set(mockCtx, "key", []byte("value"), 0))
	v, ttl, err := ts.im.Get(mockCtx, "key")
	ts.NoError(err)
	ts.Equal([]byte("value"), v)
	ts.Equal(time.Duration(0), ttl)

	_, _, err = ts.im.Get(mockCtx, "missing")
	ts.Equal(provider.ErrNotFound, err)
}

func (ts *testsuite) TestExpire() {
	ts.Require().NoError(ts.im.Set(mockCtx, "key", []byte("value"), time.Second))
	_, ttl, err := ts.im.Get(mockCtx, "key")
	ts.NoError(err)
	ts.True(ttl <= time.Second)

	time.Sleep(1100 * time.Millisecond)
	_, _, err = ts.im.Get(mockCtx, "key")
	ts.Equal(provider.ErrNotFound, err)
}

func (ts *testsuite) TestDel() {
	ts.Require().NoError(ts.im.Set(mockCtx, "key", []byte("value"), 0))
	ts.NoError(ts.im.Del(mockCtx, "key"))
	_, _, err := ts.im.Get(mockCtx, "key")
	ts.Equal(provider.ErrNotFound, err)
}
