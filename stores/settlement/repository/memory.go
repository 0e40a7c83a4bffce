package repository

import (
	"sort"
	"sync"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/settlement"
)

type memoryImpl struct {
	mu      sync.RWMutex
	records []settlement.Record
}

func NewMemory() settlement.Repo {
	return &memoryImpl{}
}

func (im *memoryImpl) Insert(c ctx.Ctx, r *settlement.Record) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	for _, rec := range im.records {
		if rec.Id == r.Id {
			return domain.ErrConflict
		}
	}
	im.records = append(im.records, *r)
	return nil
}

func (im *memoryImpl) Remove(c ctx.Ctx, id string) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	for i, rec := range im.records {
		if rec.Id == id {
			im.records = append(im.records[:i], im.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (im *memoryImpl) FindAll(c ctx.Ctx, optFns ...settlement.FindAllOptionsFunc) ([]settlement.Record, error) {
	opts, err := settlement.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("settlement.GetFindAllOptions failed")
		return nil, err
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	res := []settlement.Record{}
	for _, r := range im.records {
		if opts.Collection != nil && !r.Collection.Equals(*opts.Collection) {
			continue
		}
		if opts.TokenId != nil && r.TokenId != *opts.TokenId {
			continue
		}
		if opts.Seller != nil && !r.Seller.Equals(*opts.Seller) {
			continue
		}
		if opts.Buyer != nil && !r.Buyer.Equals(*opts.Buyer) {
			continue
		}
		res = append(res, r)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].SettledAt.Before(res[j].SettledAt) })
	return res, nil
}
