package registrar

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/suite"

	baseabi "github.com/x-xyz/marketplace/base/abi"
	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/service/chain"
)

const (
	registrarAddr = domain.Address("0x5000000000000000000000000000000000000001")
	alice         = domain.Address("0x2000000000000000000000000000000000000002")
	bob           = domain.Address("0x2000000000000000000000000000000000000003")
)

type fakeCaller struct {
	msgs   []ethereum.CallMsg
	active bool
	err    error
}

func (f *fakeCaller) CallContract(c context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.msgs = append(f.msgs, msg)
	if f.err != nil {
		return nil, f.err
	}
	return baseabi.RegistrarABI.Methods["active"].Outputs.Pack(f.active)
}

type registrarSuite struct {
	suite.Suite
	ctx ctx.Ctx
}

func TestRegistrar(t *testing.T) {
	suite.Run(t, new(registrarSuite))
}

func (s *registrarSuite) SetupTest() {
	s.ctx = ctx.Background()
}

func (s *registrarSuite) TestNode() {
	node, err := Node("eth")
	s.Require().NoError(err)
	s.Equal(domain.Node("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"), node)
}

func (s *registrarSuite) TestChainNeverCaches() {
	caller := &fakeCaller{active: true}
	im := NewChain(chain.NewClientWithCallers(map[int32]chain.ContractCaller{1: caller}), 1, registrarAddr, metrics.New("registrar"))
	node, err := Node("alice.eth")
	s.Require().NoError(err)

	ok, err := im.Active(s.ctx, node, alice)
	s.Require().NoError(err)
	s.True(ok)

	caller.active = false
	ok, err = im.Active(s.ctx, node, alice)
	s.Require().NoError(err)
	s.False(ok)
	s.Require().Len(caller.msgs, 2)
	s.Equal(registrarAddr.ToCommon(), *caller.msgs[0].To)

	want, err := baseabi.RegistrarABI.Pack("active", node.ToHash(), alice.ToCommon())
	s.Require().NoError(err)
	s.Equal(want, caller.msgs[1].Data)
}

func (s *registrarSuite) TestChainError() {
	rpcErr := errors.New("connection refused")
	caller := &fakeCaller{err: rpcErr}
	im := NewChain(chain.NewClientWithCallers(map[int32]chain.ContractCaller{1: caller}), 1, registrarAddr, metrics.New("registrar"))
	_, err := im.Active(s.ctx, "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae", alice)
	s.ErrorIs(err, rpcErr)
}

func (s *registrarSuite) TestAllowList() {
	im := NewAllowList()
	node, err := Node("alice.eth")
	s.Require().NoError(err)

	ok, err := im.Active(s.ctx, node, alice)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(im.Grant("alice.eth", "0x2000000000000000000000000000000000000002"))
	ok, err = im.Active(s.ctx, node, alice)
	s.Require().NoError(err)
	s.True(ok)
	ok, err = im.Active(s.ctx, node, bob)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(im.Revoke("alice.eth", alice))
	ok, err = im.Active(s.ctx, node, alice)
	s.Require().NoError(err)
	s.False(ok)
}
