package erc721

import (
	"sync"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/token"
)

// Directory maps contract addresses to in-process contracts
type Directory struct {
	mu        sync.RWMutex
	contracts map[domain.Address]token.Erc721
	// source of imported contracts, nil when no chain is configured
	reader token.Reader
}

func NewDirectory() *Directory {
	return &Directory{contracts: make(map[domain.Address]token.Erc721)}
}

// MirrorFrom lets Track mirror contracts read through r
func (d *Directory) MirrorFrom(r token.Reader) *Directory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reader = r
	return d
}

// Deploy makes t reachable at its address, replacing nothing
func (d *Directory) Deploy(t token.Erc721) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	addr := t.Address().ToLower()
	if _, ok := d.contracts[addr]; ok {
		return domain.ErrConflict
	}
	d.contracts[addr] = t
	return nil
}

func (d *Directory) Contract(c ctx.Ctx, address domain.Address) (token.Erc721, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.contracts[address.ToLower()]
	if !ok {
		return nil, token.ErrUnknownCollection
	}
	return t, nil
}

// Supports721Interface is true for every contract deployed in the directory
func (d *Directory) Supports721Interface(c ctx.Ctx, address domain.Address) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.contracts[address.ToLower()]
	return ok, nil
}

// Track returns the contract at address, mirroring it from chain when it is
// not deployed in process
func (d *Directory) Track(c ctx.Ctx, address domain.Address) (token.Erc721, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	addr := address.ToLower()
	if t, ok := d.contracts[addr]; ok {
		return t, nil
	}
	if d.reader == nil {
		return nil, token.ErrUnknownCollection
	}
	m := NewMirror(addr, d.reader)
	d.contracts[addr] = m
	return m, nil
}
