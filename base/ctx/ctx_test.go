package ctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketplace/base/log"
)

type testsuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestWithValues() {
	c := WithValues(Background(), map[string]interface{}{
		"collection": "0xabc",
		"tokenId":    "1",
	})
	ts.Equal("0xabc", c.Value("collection"))
	ts.Equal("1", c.Value("tokenId"))
}

func (ts *testsuite) TestWithFieldsKeepsContext() {
	parent := WithValue(Background(), "requestID", "r-1")
	c := WithFields(parent, log.Fields{"op": "bid"})
	ts.Equal("r-1", c.Value("requestID"))
	ts.Nil(c.Value("op"))
}

func (ts *testsuite) TestFrom() {
	parent := WithValue(Background(), "k", "v")
	ts.Equal(parent, From(parent))

	plain := context.WithValue(context.Background(), "k", "plain")
	ts.Equal("plain", From(plain).Value("k"))
}

func (ts *testsuite) TestWithCancel() {
	c, cancel := WithCancel(Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		ts.Fail("context not cancelled")
	}
	ts.Equal(context.Canceled, c.Err())
}

func (ts *testsuite) TestTimeout() {
	c, cancel := WithTimeout(Background(), 10*time.Millisecond)
	defer cancel()
	<-c.Done()
	ts.Equal(context.DeadlineExceeded, c.Err())
}
