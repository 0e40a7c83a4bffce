package erc721

import (
	"sync"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/token"
)

// Mirror keeps custody of an imported contract. Ownership and approvals are
// read from chain until the marketplace moves a token, from then on the
// in-process record of that token wins.
type Mirror struct {
	address domain.Address
	reader  token.Reader

	mu        sync.RWMutex
	owners    map[domain.TokenId]domain.Address
	approved  map[domain.TokenId]domain.Address
	operators map[domain.Address]map[domain.Address]bool
}

func NewMirror(address domain.Address, reader token.Reader) *Mirror {
	return &Mirror{
		address:   address.ToLower(),
		reader:    reader,
		owners:    make(map[domain.TokenId]domain.Address),
		approved:  make(map[domain.TokenId]domain.Address),
		operators: make(map[domain.Address]map[domain.Address]bool),
	}
}

func (m *Mirror) Address() domain.Address { return m.address }

func (m *Mirror) tracked(id domain.TokenId) (domain.Address, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.owners[id]
	return owner, ok
}

func (m *Mirror) OwnerOf(c ctx.Ctx, id domain.TokenId) (domain.Address, error) {
	if owner, ok := m.tracked(id); ok {
		return owner, nil
	}
	owner, err := m.reader.OwnerOf(c, m.address, id)
	if err != nil {
		return "", err
	}
	return owner.ToLower(), nil
}

func (m *Mirror) GetApproved(c ctx.Ctx, id domain.TokenId) (domain.Address, error) {
	m.mu.RLock()
	approved, ok := m.approved[id]
	_, moved := m.owners[id]
	m.mu.RUnlock()
	if ok {
		return approved, nil
	}
	if moved {
		return domain.EmptyAddress, nil
	}
	approved, err := m.reader.GetApproved(c, m.address, id)
	if err != nil {
		return "", err
	}
	return approved.ToLower(), nil
}

func (m *Mirror) IsApprovedForAll(c ctx.Ctx, owner, operator domain.Address) (bool, error) {
	m.mu.RLock()
	local := m.operators[owner.ToLower()][operator.ToLower()]
	m.mu.RUnlock()
	if local {
		return true, nil
	}
	return m.reader.IsApprovedForAll(c, m.address, owner, operator)
}

func (m *Mirror) TokenURI(c ctx.Ctx, id domain.TokenId) (string, error) {
	return m.reader.TokenURI(c, m.address, id)
}

func (m *Mirror) Approve(c ctx.Ctx, caller, to domain.Address, id domain.TokenId) error {
	owner, err := m.OwnerOf(c, id)
	if err != nil {
		return err
	}
	if !owner.Equals(caller) {
		if ok, err := m.IsApprovedForAll(c, owner, caller); err != nil {
			return err
		} else if !ok {
			return token.ErrNotAuthorized
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approved[id] = to.ToLower()
	return nil
}

func (m *Mirror) SetApprovalForAll(c ctx.Ctx, caller, operator domain.Address, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	caller = caller.ToLower()
	if m.operators[caller] == nil {
		m.operators[caller] = make(map[domain.Address]bool)
	}
	m.operators[caller][operator.ToLower()] = approved
	return nil
}

func (m *Mirror) TransferFrom(c ctx.Ctx, operator, from, to domain.Address, id domain.TokenId) error {
	owner, err := m.OwnerOf(c, id)
	if err != nil {
		return err
	}
	if !owner.Equals(from) {
		return token.ErrNotOwner
	}
	if to.IsEmpty() {
		return token.ErrTransferToZero
	}
	if ok, err := token.IsOwnerOrApproved(c, m, operator, id); err != nil {
		return err
	} else if !ok {
		return token.ErrNotAuthorized
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.owners[id]; ok && !current.Equals(owner) {
		return token.ErrNotOwner
	}
	delete(m.approved, id)
	m.owners[id] = to.ToLower()
	c.WithFields(log.Fields{
		"contract": m.address,
		"tokenId":  id,
		"from":     from,
		"to":       to,
	}).Debug("mirrored transfer")
	return nil
}
