package ledger

import (
	"errors"
	"math/big"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountFrozen     = errors.New("account frozen")
	ErrInvalidAmount     = errors.New("invalid amount")
)

type Transfer struct {
	From   domain.Address
	To     domain.Address
	Amount *big.Int
}

// Ledger moves native value between accounts. Transfers only move balances,
// no code of the recipient is ever executed.
type Ledger interface {
	Balance(c ctx.Ctx, account domain.Address) (*big.Int, error)
	Transfer(c ctx.Ctx, from, to domain.Address, amount *big.Int) error
	// TransferBatch applies all transfers or none of them
	TransferBatch(c ctx.Ctx, transfers []Transfer) error
}

// Reverse returns the transfers that undo ts
func Reverse(ts []Transfer) []Transfer {
	res := make([]Transfer, 0, len(ts))
	for i := len(ts) - 1; i >= 0; i-- {
		res = append(res, Transfer{From: ts[i].To, To: ts[i].From, Amount: ts[i].Amount})
	}
	return res
}
