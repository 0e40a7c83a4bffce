package ledger

import (
	"math/big"

	"github.com/gomodule/redigo/redis"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/keys"
	"github.com/x-xyz/marketplace/domain/ledger"
)

const maxTxRetry = 8

type applyFunc func(balances map[domain.Address]*big.Int, frozen map[domain.Address]bool) error

var errTxConflict = xerrors.New("redis transaction conflict")

type RedisCfg struct {
	Pool    *redis.Pool
	Prefix  string
	Metrics metrics.Service
}

// Redis stores balances as decimal strings. Batches run inside an optimistic
// WATCH/MULTI/EXEC transaction and are retried when a watched key changes.
type Redis struct {
	pool *redis.Pool
	pfx  string
	met  metrics.Service
}

func NewRedis(cfg *RedisCfg) *Redis {
	pfx := cfg.Prefix
	if pfx == "" {
		pfx = keys.PfxLedger
	}
	return &Redis{
		pool: cfg.Pool,
		pfx:  pfx,
		met:  cfg.Metrics,
	}
}

func (r *Redis) balanceKey(account domain.Address) string {
	return keys.RedisKey(r.pfx, "balance", account.ToLowerStr())
}

func (r *Redis) frozenKey() string {
	return keys.RedisKey(r.pfx, "frozen")
}

func (r *Redis) Balance(c ctx.Ctx, account domain.Address) (*big.Int, error) {
	conn, err := r.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return nil, err
	}
	defer conn.Close()

	s, err := redis.String(conn.Do("GET", r.balanceKey(account)))
	if err == redis.ErrNil {
		return new(big.Int), nil
	} else if err != nil {
		c.WithField("err", err).Error("redis GET failed")
		return nil, err
	}
	return parseBalance(s)
}

func (r *Redis) Deposit(c ctx.Ctx, account domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ledger.ErrInvalidAmount
	}
	return r.run(c, "deposit", []domain.Address{account}, func(balances map[domain.Address]*big.Int, _ map[domain.Address]bool) error {
		b := balances[account.ToLower()]
		b.Add(b, amount)
		return nil
	})
}

// Freeze marks an account as unable to receive value
func (r *Redis) Freeze(c ctx.Ctx, account domain.Address, frozen bool) error {
	conn, err := r.pool.GetContext(c)
	if err != nil {
		return err
	}
	defer conn.Close()
	cmd := "SREM"
	if frozen {
		cmd = "SADD"
	}
	_, err = conn.Do(cmd, r.frozenKey(), account.ToLowerStr())
	return err
}

func (r *Redis) Transfer(c ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	return r.TransferBatch(c, []ledger.Transfer{{From: from, To: to, Amount: amount}})
}

func (r *Redis) TransferBatch(c ctx.Ctx, transfers []ledger.Transfer) error {
	accounts := []domain.Address{}
	for _, t := range transfers {
		if t.Amount == nil || t.Amount.Sign() < 0 {
			return ledger.ErrInvalidAmount
		}
		accounts = append(accounts, t.From, t.To)
	}
	return r.run(c, "transferBatch", accounts, func(balances map[domain.Address]*big.Int, frozen map[domain.Address]bool) error {
		for _, t := range transfers {
			if frozen[t.To.ToLower()] {
				return ledger.ErrAccountFrozen
			}
			from := balances[t.From.ToLower()]
			if from.Cmp(t.Amount) < 0 {
				return ledger.ErrInsufficientFunds
			}
			from.Sub(from, t.Amount)
			to := balances[t.To.ToLower()]
			to.Add(to, t.Amount)
		}
		return nil
	})
}

// run loads the balances of accounts under WATCH, lets apply mutate them and
// commits the result in one MULTI/EXEC
func (r *Redis) run(c ctx.Ctx, op string, accounts []domain.Address, apply applyFunc) error {
	defer r.met.BumpTime("ledger."+op+".time").End()

	conn, err := r.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()

	uniq := []domain.Address{}
	seen := map[domain.Address]bool{}
	for _, a := range accounts {
		a = a.ToLower()
		if !seen[a] {
			seen[a] = true
			uniq = append(uniq, a)
		}
	}
	ks := make([]interface{}, 0, len(uniq)+1)
	for _, a := range uniq {
		ks = append(ks, r.balanceKey(a))
	}

	for i := 0; i < maxTxRetry; i++ {
		err = r.tx(c, conn, uniq, ks, apply)
		if err != errTxConflict {
			break
		}
		r.met.BumpSum("ledger."+op+".conflict", 1)
	}
	if err != nil {
		r.met.BumpSum("ledger."+op+".err", 1)
	}
	return err
}

func (r *Redis) tx(c ctx.Ctx, conn redis.Conn, accounts []domain.Address, ks []interface{}, apply applyFunc) error {
	watch := append([]interface{}{r.frozenKey()}, ks...)
	if _, err := conn.Do("WATCH", watch...); err != nil {
		return err
	}
	vals, err := redis.Strings(conn.Do("MGET", ks...))
	if err != nil {
		conn.Do("UNWATCH")
		return err
	}
	frozen, err := redis.Strings(conn.Do("SMEMBERS", r.frozenKey()))
	if err != nil {
		conn.Do("UNWATCH")
		return err
	}

	balances := make(map[domain.Address]*big.Int, len(accounts))
	for i, a := range accounts {
		b, err := parseBalance(vals[i])
		if err != nil {
			conn.Do("UNWATCH")
			return err
		}
		balances[a] = b
	}
	frozenSet := make(map[domain.Address]bool, len(frozen))
	for _, f := range frozen {
		frozenSet[domain.Address(f)] = true
	}
	if err := apply(balances, frozenSet); err != nil {
		conn.Do("UNWATCH")
		return err
	}

	if err := conn.Send("MULTI"); err != nil {
		return err
	}
	for i, a := range accounts {
		if err := conn.Send("SET", ks[i], balances[a].String()); err != nil {
			return err
		}
	}
	reply, err := conn.Do("EXEC")
	if err != nil {
		c.WithField("err", err).Error("redis EXEC failed")
		return err
	}
	if reply == nil {
		return errTxConflict
	}
	return nil
}

func parseBalance(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	return b, nil
}
