// Package erc721 is an in-process ERC-721 implementation. It backs first
// party projects created by the factory and any contract deployed directly
// into the directory.
package erc721

import (
	"strconv"
	"strings"
	"sync"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/token"
)

const uriScheme = "ipfs://"

type royaltyInfo struct {
	beneficiary domain.Address
	royalty     domain.Amount
}

type Erc721 struct {
	mu sync.RWMutex

	address     domain.Address
	name        string
	symbol      string
	contractURI string
	owner       domain.Address
	// minter may mint on behalf of anyone, usually the marketplace
	minter domain.Address

	nextId    uint64
	owners    map[domain.TokenId]domain.Address
	balances  map[domain.Address]int
	approved  map[domain.TokenId]domain.Address
	operators map[domain.Address]map[domain.Address]bool
	uris      map[domain.TokenId]string
	royalties map[domain.TokenId]royaltyInfo
	nodes     map[domain.TokenId]domain.Node
}

type Cfg struct {
	Address     domain.Address
	Name        string
	Symbol      string
	ContractURI string
	Owner       domain.Address
	Minter      domain.Address
}

func New(cfg Cfg) *Erc721 {
	return &Erc721{
		address:     cfg.Address.ToLower(),
		name:        cfg.Name,
		symbol:      cfg.Symbol,
		contractURI: cfg.ContractURI,
		owner:       cfg.Owner.ToLower(),
		minter:      cfg.Minter.ToLower(),
		owners:      make(map[domain.TokenId]domain.Address),
		balances:    make(map[domain.Address]int),
		approved:    make(map[domain.TokenId]domain.Address),
		operators:   make(map[domain.Address]map[domain.Address]bool),
		uris:        make(map[domain.TokenId]string),
		royalties:   make(map[domain.TokenId]royaltyInfo),
		nodes:       make(map[domain.TokenId]domain.Node),
	}
}

func (e *Erc721) Address() domain.Address { return e.address }
func (e *Erc721) Name() string            { return e.name }
func (e *Erc721) Symbol() string          { return e.symbol }
func (e *Erc721) Owner() domain.Address   { return e.owner }
func (e *Erc721) ContractURI() string     { return uriScheme + e.contractURI }

func (e *Erc721) OwnerOf(c ctx.Ctx, id domain.TokenId) (domain.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	owner, ok := e.owners[id]
	if !ok {
		return "", token.ErrNonexistentToken
	}
	return owner, nil
}

func (e *Erc721) BalanceOf(c ctx.Ctx, owner domain.Address) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.balances[owner.ToLower()]
}

func (e *Erc721) GetApproved(c ctx.Ctx, id domain.TokenId) (domain.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.owners[id]; !ok {
		return "", token.ErrNonexistentToken
	}
	if approved, ok := e.approved[id]; ok {
		return approved, nil
	}
	return domain.EmptyAddress, nil
}

func (e *Erc721) IsApprovedForAll(c ctx.Ctx, owner, operator domain.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.operators[owner.ToLower()][operator.ToLower()], nil
}

// Approve lets `to` transfer id, caller must be the owner or an operator
func (e *Erc721) Approve(c ctx.Ctx, caller, to domain.Address, id domain.TokenId) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	owner, ok := e.owners[id]
	if !ok {
		return token.ErrNonexistentToken
	}
	if !owner.Equals(caller) && !e.operators[owner][caller.ToLower()] {
		return token.ErrNotAuthorized
	}
	e.approved[id] = to.ToLower()
	return nil
}

func (e *Erc721) SetApprovalForAll(c ctx.Ctx, caller, operator domain.Address, approved bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	caller = caller.ToLower()
	if e.operators[caller] == nil {
		e.operators[caller] = make(map[domain.Address]bool)
	}
	e.operators[caller][operator.ToLower()] = approved
	return nil
}

func (e *Erc721) TransferFrom(c ctx.Ctx, operator, from, to domain.Address, id domain.TokenId) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	owner, ok := e.owners[id]
	if !ok {
		return token.ErrNonexistentToken
	}
	if !owner.Equals(from) {
		return token.ErrNotOwner
	}
	if to.IsEmpty() {
		return token.ErrTransferToZero
	}
	operator = operator.ToLower()
	if !owner.Equals(operator) && !e.approved[id].Equals(operator) && !e.operators[owner][operator] {
		return token.ErrNotAuthorized
	}
	delete(e.approved, id)
	e.balances[owner]--
	e.owners[id] = to.ToLower()
	e.balances[to.ToLower()]++
	c.WithFields(log.Fields{
		"contract": e.address,
		"tokenId":  id,
		"from":     from,
		"to":       to,
	}).Debug("erc721 transfer")
	return nil
}

// Mint creates the next token id. Only the contract owner and the trusted
// minter may mint.
func (e *Erc721) Mint(c ctx.Ctx, minter domain.Address, p token.MintParams) (domain.TokenId, error) {
	if !minter.Equals(e.owner) && (e.minter.IsEmpty() || !minter.Equals(e.minter)) {
		return "", token.ErrMintNotAllowed
	}
	if p.To.IsEmpty() {
		return "", token.ErrTransferToZero
	}
	if !p.Royalty.IsValid() || p.Royalty.BigInt().Cmp(domain.Wad) > 0 {
		return "", token.ErrRoyaltyTooHigh
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	id := domain.TokenId(strconv.FormatUint(e.nextId, 10))
	e.nextId++
	to := p.To.ToLower()
	e.owners[id] = to
	e.balances[to]++
	e.uris[id] = strings.TrimPrefix(p.Uri, uriScheme)
	if !p.RoyaltyBeneficiary.IsEmpty() && !p.Royalty.IsZero() {
		e.royalties[id] = royaltyInfo{p.RoyaltyBeneficiary.ToLower(), domain.NewAmount(p.Royalty.BigInt())}
	}
	if !p.IdentityNode.IsEmpty() {
		e.nodes[id] = p.IdentityNode
	}
	return id, nil
}

func (e *Erc721) TokenURI(c ctx.Ctx, id domain.TokenId) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	uri, ok := e.uris[id]
	if !ok {
		return "", token.ErrNonexistentToken
	}
	return uriScheme + uri, nil
}

// RoyaltyInfo returns the royalty recorded at mint, zero when none was set
func (e *Erc721) RoyaltyInfo(c ctx.Ctx, id domain.TokenId) (domain.Address, domain.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.owners[id]; !ok {
		return "", "", token.ErrNonexistentToken
	}
	r, ok := e.royalties[id]
	if !ok {
		return domain.EmptyAddress, domain.Amount("0"), nil
	}
	return r.beneficiary, r.royalty, nil
}
