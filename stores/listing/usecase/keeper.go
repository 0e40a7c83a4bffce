package usecase

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/marketplace/base/backoff"
	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/listing"
)

const keeperPageSize = 100

type KeeperCfg struct {
	Listing listing.Usecase
	// Operator is recorded as the claim caller
	Operator domain.Address
	Interval time.Duration
	Workers  int
	Clock    clock.Clock
	Metrics  metrics.Service
}

// Keeper claims auctions that ended with a bid so that nobody has to call
// claim by hand
type Keeper struct {
	listing  listing.Usecase
	operator domain.Address
	interval time.Duration
	workers  int
	clock    clock.Clock
	met      metrics.Service
}

func NewKeeper(cfg *KeeperCfg) *Keeper {
	k := &Keeper{
		listing:  cfg.Listing,
		operator: cfg.Operator,
		interval: cfg.Interval,
		workers:  cfg.Workers,
		clock:    cfg.Clock,
		met:      cfg.Metrics,
	}
	if k.interval == 0 {
		k.interval = time.Minute
	}
	if k.workers == 0 {
		k.workers = 4
	}
	if k.clock == nil {
		k.clock = clock.New()
	}
	return k
}

// due returns open auctions whose derived status is successful
func (k *Keeper) due(c ctx.Ctx) ([]listing.Id, error) {
	now := k.clock.Now()
	res := []listing.Id{}
	for offset := 0; ; offset += keeperPageSize {
		page, err := k.listing.FindAll(c,
			listing.WithKind(listing.KindAuction),
			listing.WithFinalized(false),
			listing.WithPagination(offset, keeperPageSize),
		)
		if err != nil {
			return nil, err
		}
		for i := range page {
			if page[i].StatusAt(now) == listing.StatusSuccessful {
				res = append(res, page[i].ToId())
			}
		}
		if len(page) < keeperPageSize {
			return res, nil
		}
	}
}

// Sweep claims every due auction and returns how many were settled
func (k *Keeper) Sweep(c ctx.Ctx) (int, error) {
	defer k.met.BumpTime("keeper.sweep.time").End()

	ids, err := k.due(c)
	if err != nil {
		c.WithField("err", err).Error("keeper due failed")
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	b := goroutines.NewBatch(k.workers, goroutines.WithBatchSize(len(ids)))
	defer b.Close()
	for _, id := range ids {
		id := id
		b.Queue(func() (interface{}, error) {
			_, err := k.listing.ClaimNFT(c, k.operator, id)
			return id, err
		})
	}
	b.QueueComplete()

	settled := 0
	var firstErr error
	for ret := range b.Results() {
		switch err := ret.Error(); {
		case err == nil:
			settled++
		case errors.Is(err, domain.ErrAlreadyFinalized):
			// claimed by someone else in between
		default:
			c.WithFields(log.Fields{"err": err, "listing": ret.Value()}).Warn("keeper claim failed")
			k.met.BumpSum("keeper.claim.err", 1)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	k.met.BumpSum("keeper.claim.settled", float64(settled))
	return settled, firstErr
}

// Run sweeps every interval until c is done. Failing sweeps back off
// exponentially up to the interval.
func (k *Keeper) Run(c ctx.Ctx) {
	bo := backoff.NewExponential(k.clock, time.Second, k.interval)
	ticker := k.clock.Ticker(k.interval)
	defer ticker.Stop()

	for {
		if _, err := k.Sweep(c); err != nil {
			if bo.Wait(c) != nil {
				return
			}
			continue
		}
		bo.Reset()

		select {
		case <-c.Done():
			return
		case <-ticker.C:
		}
	}
}
