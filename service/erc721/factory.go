package erc721

import (
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain"
)

// Factory deploys project contracts into a directory. Addresses are derived
// from the factory address and a nonce the same way CREATE does.
type Factory struct {
	mu        sync.Mutex
	address   domain.Address
	nonce     uint64
	minter    domain.Address
	directory *Directory
}

func NewFactory(address, minter domain.Address, directory *Directory) *Factory {
	return &Factory{
		address:   address.ToLower(),
		minter:    minter.ToLower(),
		directory: directory,
	}
}

func (f *Factory) CreateCollection(c ctx.Ctx, metadataURI, name, symbol string, owner domain.Address) (domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	addr := domain.AddressFromCommon(crypto.CreateAddress(f.address.ToCommon(), f.nonce))
	contract := New(Cfg{
		Address:     addr,
		Name:        name,
		Symbol:      symbol,
		ContractURI: metadataURI,
		Owner:       owner,
		Minter:      f.minter,
	})
	if err := f.directory.Deploy(contract); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"address": addr,
		}).Error("directory.Deploy failed")
		return "", err
	}
	f.nonce++
	return addr, nil
}
