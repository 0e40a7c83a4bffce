package token

import (
	"errors"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
)

var (
	ErrNonexistentToken  = errors.New("nonexistent token")
	ErrNotOwner          = errors.New("from is not the owner")
	ErrNotAuthorized     = errors.New("operator is not owner nor approved")
	ErrTransferToZero    = errors.New("transfer to the zero address")
	ErrMintNotAllowed    = errors.New("minter is not allowed")
	ErrRoyaltyTooHigh    = errors.New("royalty exceeds 100%")
	ErrUnknownCollection = errors.New("no contract at address")
	ErrApprovalOnChain   = errors.New("approvals of this contract are managed on chain")
)

// Erc721 is the capability set the marketplace needs from any token
// contract, first party or imported.
type Erc721 interface {
	Address() domain.Address
	OwnerOf(c ctx.Ctx, id domain.TokenId) (domain.Address, error)
	GetApproved(c ctx.Ctx, id domain.TokenId) (domain.Address, error)
	IsApprovedForAll(c ctx.Ctx, owner, operator domain.Address) (bool, error)
	// TransferFrom moves id from `from` to `to` on behalf of operator
	TransferFrom(c ctx.Ctx, operator, from, to domain.Address, id domain.TokenId) error
}

// Approver is implemented by contracts whose approvals are recorded in
// process
type Approver interface {
	Approve(c ctx.Ctx, caller, to domain.Address, id domain.TokenId) error
	SetApprovalForAll(c ctx.Ctx, caller, operator domain.Address, approved bool) error
}

type URIReader interface {
	TokenURI(c ctx.Ctx, id domain.TokenId) (string, error)
}

// RoyaltyReader is implemented by contracts that record a royalty per token
// at mint time. royalty is a Wad fraction.
type RoyaltyReader interface {
	RoyaltyInfo(c ctx.Ctx, id domain.TokenId) (beneficiary domain.Address, royalty domain.Amount, err error)
}

type MintParams struct {
	Uri                string
	To                 domain.Address
	RoyaltyBeneficiary domain.Address
	Royalty            domain.Amount
	IdentityNode       domain.Node
}

// Mintable is implemented by first party project contracts
type Mintable interface {
	Erc721
	RoyaltyReader
	Name() string
	Symbol() string
	Owner() domain.Address
	URIReader
	Mint(c ctx.Ctx, minter domain.Address, p MintParams) (domain.TokenId, error)
}

// Factory deploys first party project contracts
type Factory interface {
	CreateCollection(c ctx.Ctx, metadataURI, name, symbol string, owner domain.Address) (domain.Address, error)
}

// Directory resolves a contract address to its capability set
type Directory interface {
	Contract(c ctx.Ctx, address domain.Address) (Erc721, error)
}

// Tracker brings a contract deployed elsewhere into the directory
type Tracker interface {
	Track(c ctx.Ctx, address domain.Address) (Erc721, error)
}

// Reader reads erc721 state of contracts living on chain
type Reader interface {
	OwnerOf(c ctx.Ctx, contract domain.Address, id domain.TokenId) (domain.Address, error)
	GetApproved(c ctx.Ctx, contract domain.Address, id domain.TokenId) (domain.Address, error)
	IsApprovedForAll(c ctx.Ctx, contract, owner, operator domain.Address) (bool, error)
	TokenURI(c ctx.Ctx, contract domain.Address, id domain.TokenId) (string, error)
}

// IsOwnerOrApproved reports whether principal may dispose of id
func IsOwnerOrApproved(c ctx.Ctx, t Erc721, principal domain.Address, id domain.TokenId) (bool, error) {
	owner, err := t.OwnerOf(c, id)
	if err != nil {
		return false, err
	}
	if owner.Equals(principal) {
		return true, nil
	}
	approved, err := t.GetApproved(c, id)
	if err != nil {
		return false, err
	}
	if approved.Equals(principal) {
		return true, nil
	}
	return t.IsApprovedForAll(c, owner, principal)
}

// InterfaceChecker answers ERC-165 style "is this address an ERC-721"
type InterfaceChecker interface {
	Supports721Interface(c ctx.Ctx, address domain.Address) (bool, error)
}
