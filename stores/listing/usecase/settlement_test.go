package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketplace/domain"
)

func wei(s string) *big.Int {
	return domain.MustParseEther(s).BigInt()
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		royalty string
		fee     string
		want    [3]string
	}{
		{"no royalty no fee", "2", "0", "0", [3]string{"0", "0", "2"}},
		{"royalty only", "2.6", "0.1", "0", [3]string{"0.26", "0", "2.34"}},
		{"royalty and fee", "2", "0.1", "0.025", [3]string{"0.2", "0.05", "1.75"}},
		{"everything goes away", "1", "0.5", "0.5", [3]string{"0.5", "0.5", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			p, err := Split(wei(tt.amount), wei(tt.royalty), wei(tt.fee))
			req.NoError(err)
			req.Equal(domain.MustParseEther(tt.amount), p.Amount)
			req.Equal(tt.want[0], p.Royalty.Ether())
			req.Equal(tt.want[1], p.Fee.Ether())
			req.Equal(tt.want[2], p.Seller.Ether())
		})
	}
}

func TestSplitRoundsDown(t *testing.T) {
	req := require.New(t)
	// 1 wei at 10% rounds the royalty to zero, the seller keeps it
	p, err := Split(big.NewInt(7), wei("0.1"), wei("0.1"))
	req.NoError(err)
	req.Equal(domain.Amount("0"), p.Royalty)
	req.Equal(domain.Amount("0"), p.Fee)
	req.Equal(domain.Amount("7"), p.Seller)

	// the parts always add up
	amount := big.NewInt(1000000000000000003)
	p, err = Split(amount, wei("0.333333333333333333"), wei("0.025"))
	req.NoError(err)
	sum := new(big.Int).Add(p.Royalty.BigInt(), p.Fee.BigInt())
	sum.Add(sum, p.Seller.BigInt())
	req.Equal(0, sum.Cmp(amount))
}

func TestSplitInvalid(t *testing.T) {
	req := require.New(t)
	_, err := Split(wei("1"), wei("0.9"), wei("0.2"))
	req.ErrorIs(err, domain.ErrInvalidRoyalty)
	_, err = Split(wei("1"), big.NewInt(-1), wei("0"))
	req.ErrorIs(err, domain.ErrInvalidRoyalty)
}
