package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

type contractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, number *big.Int) ([]byte, error)
}

// ThrottledCaller allows at most n concurrent calls to the rpc
type ThrottledCaller struct {
	caller contractCaller
	tokens chan struct{}
}

func NewThrottledCaller(caller contractCaller, n int) *ThrottledCaller {
	if n < 1 {
		n = 1
	}
	return &ThrottledCaller{
		caller: caller,
		tokens: make(chan struct{}, n),
	}
}

func (c *ThrottledCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, number *big.Int) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c.tokens <- struct{}{}:
	}
	defer func() { <-c.tokens }()
	return c.caller.CallContract(ctx, msg, number)
}
