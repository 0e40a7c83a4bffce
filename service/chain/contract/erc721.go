package contract

import (
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"

	baseabi "github.com/x-xyz/marketplace/base/abi"
	bCtx "github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/service/chain"
)

var ErrUnexpectedOutput = errors.New("unexpected contract output")

// Erc721 reads erc721 contracts of one chain
type Erc721 struct {
	chainService chain.Client
	chainId      int32
	abi          ethabi.ABI
}

func NewErc721(chainService chain.Client, chainId int32) *Erc721 {
	return &Erc721{
		abi:          baseabi.ERC721TokenABI,
		chainService: chainService,
		chainId:      chainId,
	}
}

func (e *Erc721) call(ctx bCtx.Ctx, addr domain.Address, method string, params ...interface{}) (interface{}, error) {
	unpacked, err := e.chainService.Call(ctx, e.chainId, addr.ToCommon(), e.abi, method, params...)
	if err != nil {
		return nil, err
	}
	if len(unpacked) == 0 {
		return nil, xerrors.Errorf("%s returned nothing: %w", method, ErrUnexpectedOutput)
	}
	return unpacked[0], nil
}

func (e *Erc721) callAddress(ctx bCtx.Ctx, addr domain.Address, method string, params ...interface{}) (domain.Address, error) {
	out, err := e.call(ctx, addr, method, params...)
	if err != nil {
		return "", err
	}
	res, ok := out.(common.Address)
	if !ok {
		return "", xerrors.Errorf("%s output %T: %w", method, out, ErrUnexpectedOutput)
	}
	return domain.AddressFromCommon(res), nil
}

func (e *Erc721) callBool(ctx bCtx.Ctx, addr domain.Address, method string, params ...interface{}) (bool, error) {
	out, err := e.call(ctx, addr, method, params...)
	if err != nil {
		return false, err
	}
	res, ok := out.(bool)
	if !ok {
		return false, xerrors.Errorf("%s output %T: %w", method, out, ErrUnexpectedOutput)
	}
	return res, nil
}

// Supports721Interface asks the contract through ERC-165
func (e *Erc721) Supports721Interface(ctx bCtx.Ctx, addr domain.Address) (bool, error) {
	return e.callBool(ctx, addr, "supportsInterface", baseabi.Erc721InterfaceId)
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, addr domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	id, err := tokenId.ToBigInt()
	if err != nil {
		return "", err
	}
	return e.callAddress(ctx, addr, "ownerOf", id)
}

func (e *Erc721) GetApproved(ctx bCtx.Ctx, addr domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	id, err := tokenId.ToBigInt()
	if err != nil {
		return "", err
	}
	return e.callAddress(ctx, addr, "getApproved", id)
}

func (e *Erc721) IsApprovedForAll(ctx bCtx.Ctx, addr, owner, operator domain.Address) (bool, error) {
	return e.callBool(ctx, addr, "isApprovedForAll", owner.ToCommon(), operator.ToCommon())
}

func (e *Erc721) TokenURI(ctx bCtx.Ctx, addr domain.Address, tokenId domain.TokenId) (string, error) {
	id, err := tokenId.ToBigInt()
	if err != nil {
		return "", err
	}
	out, err := e.call(ctx, addr, "tokenURI", id)
	if err != nil {
		return "", err
	}
	uri, ok := out.(string)
	if !ok {
		return "", xerrors.Errorf("tokenURI output %T: %w", out, ErrUnexpectedOutput)
	}
	return uri, nil
}
