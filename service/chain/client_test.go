package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	baseabi "github.com/x-xyz/marketplace/base/abi"
	bCtx "github.com/x-xyz/marketplace/base/ctx"
)

type fakeCaller struct {
	calls []ethereum.CallMsg
	out   []byte
	err   error
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	return f.out, f.err
}

type clientSuite struct {
	suite.Suite
	caller *fakeCaller
	im     Client
}

func TestClient(t *testing.T) {
	suite.Run(t, new(clientSuite))
}

func (s *clientSuite) SetupTest() {
	s.caller = &fakeCaller{}
	s.im = NewClientWithCallers(map[int32]ContractCaller{1: s.caller})
}

func (s *clientSuite) TestCall() {
	out, err := baseabi.ERC721TokenABI.Methods["supportsInterface"].Outputs.Pack(true)
	s.Require().NoError(err)
	s.caller.out = out

	addr := common.HexToAddress("0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d")
	res, err := s.im.Call(bCtx.Background(), 1, addr, baseabi.ERC721TokenABI, "supportsInterface", baseabi.Erc721InterfaceId)
	s.Require().NoError(err)
	s.Equal(true, res[0])
	s.Require().Len(s.caller.calls, 1)
	s.Equal(addr, *s.caller.calls[0].To)
}

func (s *clientSuite) TestUnsupportedChain() {
	_, err := s.im.Call(bCtx.Background(), 5, common.Address{}, baseabi.ERC721TokenABI, "supportsInterface", baseabi.Erc721InterfaceId)
	s.ErrorIs(err, ErrUnsupportedChain)
}

func (s *clientSuite) TestCallError() {
	rpcErr := errors.New("execution reverted")
	s.caller.err = rpcErr
	_, err := s.im.Call(bCtx.Background(), 1, common.Address{}, baseabi.ERC721TokenABI, "supportsInterface", baseabi.Erc721InterfaceId)
	s.ErrorIs(err, rpcErr)
}
