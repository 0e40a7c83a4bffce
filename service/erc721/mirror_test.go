package erc721

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/token"
)

const kats = domain.Address("0x71C4658ACc7b53EE814a29CE31100FF85ca23CA7")

var errReverted = errors.New("execution reverted")

// chainState stands in for the erc721 contracts on chain
type chainState struct {
	owners    map[domain.TokenId]domain.Address
	operators map[domain.Address]domain.Address
}

func (ch *chainState) OwnerOf(_ ctx.Ctx, _ domain.Address, id domain.TokenId) (domain.Address, error) {
	owner, ok := ch.owners[id]
	if !ok {
		return "", errReverted
	}
	return owner, nil
}

func (ch *chainState) GetApproved(_ ctx.Ctx, _ domain.Address, id domain.TokenId) (domain.Address, error) {
	if _, ok := ch.owners[id]; !ok {
		return "", errReverted
	}
	return domain.EmptyAddress, nil
}

func (ch *chainState) IsApprovedForAll(_ ctx.Ctx, _ domain.Address, owner, operator domain.Address) (bool, error) {
	return ch.operators[owner.ToLower()].Equals(operator), nil
}

func (ch *chainState) TokenURI(_ ctx.Ctx, _ domain.Address, id domain.TokenId) (string, error) {
	return "ipfs://QmKats/" + string(id), nil
}

type mirrorSuite struct {
	suite.Suite
	ctx   ctx.Ctx
	chain *chainState
	dir   *Directory
}

func TestMirror(t *testing.T) {
	suite.Run(t, new(mirrorSuite))
}

func (s *mirrorSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.chain = &chainState{
		owners:    map[domain.TokenId]domain.Address{"7": "0x2000000000000000000000000000000000000002"},
		operators: map[domain.Address]domain.Address{},
	}
	s.dir = NewDirectory().MirrorFrom(s.chain)
}

func (s *mirrorSuite) track() token.Erc721 {
	t, err := s.dir.Track(s.ctx, kats)
	s.Require().NoError(err)
	return t
}

func (s *mirrorSuite) TestTrack() {
	t := s.track()
	s.Equal(kats.ToLower(), t.Address())

	again, err := s.dir.Track(s.ctx, kats.ToLower())
	s.Require().NoError(err)
	s.Same(t, again)

	resolved, err := s.dir.Contract(s.ctx, kats)
	s.Require().NoError(err)
	s.Same(t, resolved)

	// deployed contracts are returned as they are
	s.Require().NoError(s.dir.Deploy(New(Cfg{Address: factoryAddr})))
	own, err := s.dir.Track(s.ctx, factoryAddr)
	s.Require().NoError(err)
	s.IsType(&Erc721{}, own)
}

func (s *mirrorSuite) TestTrackWithoutChain() {
	_, err := NewDirectory().Track(s.ctx, kats)
	s.ErrorIs(err, token.ErrUnknownCollection)
}

func (s *mirrorSuite) TestReadsFallThrough() {
	t := s.track()
	owner, err := t.OwnerOf(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal(alice, owner)

	_, err = t.OwnerOf(s.ctx, "8")
	s.ErrorIs(err, errReverted)

	uri, err := t.(token.URIReader).TokenURI(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal("ipfs://QmKats/7", uri)

	s.chain.operators[alice] = minter
	ok, err := t.IsApprovedForAll(s.ctx, alice, minter)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *mirrorSuite) TestTransferNeedsApproval() {
	t := s.track()
	err := t.TransferFrom(s.ctx, minter, alice, minter, "7")
	s.ErrorIs(err, token.ErrNotAuthorized)

	err = t.TransferFrom(s.ctx, minter, bob, minter, "7")
	s.ErrorIs(err, token.ErrNotOwner)

	// bob cannot approve for alice
	err = t.(token.Approver).Approve(s.ctx, bob, minter, "7")
	s.ErrorIs(err, token.ErrNotAuthorized)

	s.Require().NoError(t.(token.Approver).Approve(s.ctx, alice, minter, "7"))
	approved, err := t.GetApproved(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal(minter, approved)

	s.Require().NoError(t.TransferFrom(s.ctx, minter, alice, minter, "7"))
	owner, err := t.OwnerOf(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal(minter, owner)

	// the approval is spent and the chain is no longer asked
	approved, err = t.GetApproved(s.ctx, "7")
	s.Require().NoError(err)
	s.True(approved.IsEmpty())
	s.chain.owners["7"] = bob
	owner, err = t.OwnerOf(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal(minter, owner)
}

func (s *mirrorSuite) TestChainOperatorMayTransfer() {
	t := s.track()
	s.chain.operators[alice] = minter
	s.Require().NoError(t.TransferFrom(s.ctx, minter, alice, minter, "7"))
	s.Require().NoError(t.TransferFrom(s.ctx, minter, minter, bob, "7"))

	owner, err := t.OwnerOf(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal(bob, owner)
	s.ErrorIs(t.TransferFrom(s.ctx, bob, bob, domain.EmptyAddress, "7"), token.ErrTransferToZero)
}

func (s *mirrorSuite) TestLocalOperator() {
	t := s.track()
	s.Require().NoError(t.(token.Approver).SetApprovalForAll(s.ctx, alice, bob, true))
	ok, err := t.IsApprovedForAll(s.ctx, alice, bob)
	s.Require().NoError(err)
	s.True(ok)

	// an operator may approve on the owner's behalf
	s.Require().NoError(t.(token.Approver).Approve(s.ctx, bob, minter, "7"))
	s.Require().NoError(t.TransferFrom(s.ctx, minter, alice, minter, "7"))
}
