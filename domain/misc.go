package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"
)

var (
	Big0 = big.NewInt(0)

	// Wad is the fixed point scale for royalty and fee fractions, 1e18 = 100%
	Wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func AddressFromCommon(a common.Address) Address {
	return Address(a.Hex()).ToLower()
}

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

// IsEmpty is true for both "" and the zero address
func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

func (a Address) ToCommon() common.Address {
	return common.HexToAddress(string(a))
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func (i TokenId) ToBigInt() (*big.Int, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok || id.Sign() < 0 {
		return nil, xerrors.Errorf("invalid id %s", i)
	}
	return id, nil
}

// Node is an EIP-137 namehash in 0x-prefixed hex. The empty node disables
// identity gating.
type Node string

func NodeFromHash(h [32]byte) Node {
	if h == ([32]byte{}) {
		return ""
	}
	return Node(common.Hash(h).Hex())
}

func (n Node) IsEmpty() bool {
	return len(n) == 0 || common.HexToHash(string(n)) == common.Hash{}
}

func (n Node) ToHash() common.Hash {
	return common.HexToHash(string(n))
}
