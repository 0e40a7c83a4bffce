package registrar

import (
	"sync"

	goens "github.com/wealdtech/go-ens/v3"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
)

// AllowList is an in process registrar for local setups. Names are stored
// by their namehash.
type AllowList struct {
	mu      sync.RWMutex
	holders map[domain.Node]map[domain.Address]bool
}

func NewAllowList() *AllowList {
	return &AllowList{holders: make(map[domain.Node]map[domain.Address]bool)}
}

// Node hashes a human readable identity name
func Node(name string) (domain.Node, error) {
	h, err := goens.NameHash(name)
	if err != nil {
		return "", domain.ErrBadParamInput
	}
	return domain.NodeFromHash(h), nil
}

// Grant activates name for principal
func (a *AllowList) Grant(name string, principal domain.Address) error {
	node, err := Node(name)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.holders[node] == nil {
		a.holders[node] = make(map[domain.Address]bool)
	}
	a.holders[node][principal.ToLower()] = true
	return nil
}

// Revoke deactivates name for principal
func (a *AllowList) Revoke(name string, principal domain.Address) error {
	node, err := Node(name)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.holders[node], principal.ToLower())
	return nil
}

func (a *AllowList) Active(c ctx.Ctx, node domain.Node, principal domain.Address) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.holders[domain.Node(node.ToHash().Hex())][principal.ToLower()], nil
}
