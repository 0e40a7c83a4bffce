package repository

import (
	"sort"
	"sync"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/collection"
)

type memoryImpl struct {
	mu          sync.RWMutex
	collections map[domain.Address]collection.Collection
}

func NewMemory() collection.Repo {
	return &memoryImpl{collections: make(map[domain.Address]collection.Collection)}
}

func (im *memoryImpl) FindOne(c ctx.Ctx, address domain.Address) (*collection.Collection, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	col, ok := im.collections[address.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &col, nil
}

func (im *memoryImpl) Insert(c ctx.Ctx, col *collection.Collection) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	addr := col.Address.ToLower()
	if _, ok := im.collections[addr]; ok {
		return domain.ErrConflict
	}
	for _, existing := range im.collections {
		if existing.Kind == col.Kind && existing.Index == col.Index {
			return domain.ErrConflict
		}
	}
	im.collections[addr] = *col
	return nil
}

func (im *memoryImpl) FindAll(c ctx.Ctx, optFns ...collection.FindAllOptionsFunc) ([]collection.Collection, error) {
	opts, err := collection.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("collection.GetFindAllOptions failed")
		return nil, err
	}
	im.mu.RLock()
	res := []collection.Collection{}
	for _, col := range im.collections {
		if opts.Kind == nil || col.Kind == *opts.Kind {
			res = append(res, col)
		}
	}
	im.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].Kind != res[j].Kind {
			return res[i].Kind < res[j].Kind
		}
		return res[i].Index < res[j].Index
	})
	if opts.Offset != nil {
		if *opts.Offset >= len(res) {
			return []collection.Collection{}, nil
		}
		res = res[*opts.Offset:]
	}
	if opts.Limit != nil && *opts.Limit > 0 && *opts.Limit < len(res) {
		res = res[:*opts.Limit]
	}
	return res, nil
}

func (im *memoryImpl) Count(c ctx.Ctx, kind collection.Kind) (int, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	n := 0
	for _, col := range im.collections {
		if col.Kind == kind {
			n++
		}
	}
	return n, nil
}
