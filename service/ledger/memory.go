package ledger

import (
	"math/big"
	"sync"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/ledger"
)

// Memory keeps balances in process. Frozen accounts refuse incoming value,
// which is how a recipient that cannot be paid is simulated.
type Memory struct {
	mu       sync.Mutex
	balances map[domain.Address]*big.Int
	frozen   map[domain.Address]bool
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[domain.Address]*big.Int),
		frozen:   make(map[domain.Address]bool),
	}
}

func (m *Memory) Deposit(c ctx.Ctx, account domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ledger.ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account = account.ToLower()
	m.balances[account] = new(big.Int).Add(m.balanceOf(account), amount)
	return nil
}

func (m *Memory) Freeze(account domain.Address, frozen bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen[account.ToLower()] = frozen
}

func (m *Memory) Balance(c ctx.Ctx, account domain.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balanceOf(account.ToLower())), nil
}

func (m *Memory) Transfer(c ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	return m.TransferBatch(c, []ledger.Transfer{{From: from, To: to, Amount: amount}})
}

func (m *Memory) TransferBatch(c ctx.Ctx, transfers []ledger.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[domain.Address]*big.Int)
	get := func(a domain.Address) *big.Int {
		if b, ok := next[a]; ok {
			return b
		}
		return new(big.Int).Set(m.balanceOf(a))
	}
	for _, t := range transfers {
		if t.Amount == nil || t.Amount.Sign() < 0 {
			return ledger.ErrInvalidAmount
		}
		from, to := t.From.ToLower(), t.To.ToLower()
		if m.frozen[to] {
			return ledger.ErrAccountFrozen
		}
		fb := get(from)
		if fb.Cmp(t.Amount) < 0 {
			return ledger.ErrInsufficientFunds
		}
		next[from] = fb.Sub(fb, t.Amount)
		tb := get(to)
		next[to] = tb.Add(tb, t.Amount)
	}
	for a, b := range next {
		m.balances[a] = b
	}
	return nil
}

func (m *Memory) balanceOf(account domain.Address) *big.Int {
	if b, ok := m.balances[account]; ok {
		return b
	}
	return domain.Big0
}
