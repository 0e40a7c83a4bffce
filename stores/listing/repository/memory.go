package repository

import (
	"sort"
	"sync"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/listing"
)

type memoryImpl struct {
	mu       sync.RWMutex
	seq      uint64
	listings map[listing.Id]*listing.Listing
}

// NewMemory keeps listings in process, for tests and single node setups
func NewMemory() listing.Repo {
	return &memoryImpl{listings: make(map[listing.Id]*listing.Listing)}
}

func (im *memoryImpl) FindOne(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	l, ok := im.listings[id.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l.Clone(), nil
}

func (im *memoryImpl) Upsert(c ctx.Ctx, l *listing.Listing) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.listings[l.ToId().ToLower()] = l.Clone()
	return nil
}

func (im *memoryImpl) NextSeq(c ctx.Ctx) (uint64, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.seq++
	return im.seq, nil
}

func matches(l *listing.Listing, opts listing.FindAllOptions) bool {
	if opts.Collection != nil && !l.Collection.Equals(*opts.Collection) {
		return false
	}
	if opts.Seller != nil && !l.Seller.Equals(*opts.Seller) {
		return false
	}
	if opts.Kind != nil && l.Kind != *opts.Kind {
		return false
	}
	if opts.Finalized != nil && l.Finalized != *opts.Finalized {
		return false
	}
	return true
}

func (im *memoryImpl) filter(optFns ...listing.FindAllOptionsFunc) ([]listing.Listing, listing.FindAllOptions, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, opts, err
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	res := []listing.Listing{}
	for _, l := range im.listings {
		if matches(l, opts) {
			res = append(res, *l.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Seq < res[j].Seq })
	return res, opts, nil
}

func (im *memoryImpl) FindAll(c ctx.Ctx, optFns ...listing.FindAllOptionsFunc) ([]listing.Listing, error) {
	res, opts, err := im.filter(optFns...)
	if err != nil {
		c.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return nil, err
	}
	if opts.Offset != nil {
		if *opts.Offset >= len(res) {
			return []listing.Listing{}, nil
		}
		res = res[*opts.Offset:]
	}
	if opts.Limit != nil && *opts.Limit > 0 && *opts.Limit < len(res) {
		res = res[:*opts.Limit]
	}
	return res, nil
}

func (im *memoryImpl) Count(c ctx.Ctx, optFns ...listing.FindAllOptionsFunc) (int, error) {
	res, _, err := im.filter(optFns...)
	if err != nil {
		c.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return 0, err
	}
	return len(res), nil
}
