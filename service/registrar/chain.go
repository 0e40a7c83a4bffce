package registrar

import (
	"golang.org/x/xerrors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"

	baseabi "github.com/x-xyz/marketplace/base/abi"
	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/registrar"
	"github.com/x-xyz/marketplace/service/chain"
)

type chainImpl struct {
	client  chain.Client
	chainId int32
	address domain.Address
	abi     ethabi.ABI
	met     metrics.Service
}

// NewChain asks the registrar contract at address on every call
func NewChain(client chain.Client, chainId int32, address domain.Address, met metrics.Service) registrar.Registrar {
	return &chainImpl{
		client:  client,
		chainId: chainId,
		address: address.ToLower(),
		abi:     baseabi.RegistrarABI,
		met:     met,
	}
}

func (im *chainImpl) Active(c ctx.Ctx, node domain.Node, principal domain.Address) (bool, error) {
	defer im.met.BumpTime("active.latency").End()
	unpacked, err := im.client.Call(c, im.chainId, im.address.ToCommon(), im.abi, "active", node.ToHash(), principal.ToCommon())
	if err != nil {
		im.met.BumpSum("active.err", 1)
		c.WithFields(log.Fields{
			"err":       err,
			"node":      node,
			"principal": principal,
		}).Error("client.Call failed")
		return false, err
	}
	active, ok := unpacked[0].(bool)
	if !ok {
		return false, xerrors.Errorf("unexpected active output %T", unpacked[0])
	}
	return active, nil
}
