package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/mongoclient"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/collection"
	"github.com/x-xyz/marketplace/service/query"
)

type collectionImpl struct {
	q query.Mongo
}

func NewCollection(q query.Mongo) collection.Repo {
	return &collectionImpl{q}
}

func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	return q.EnsureIndexes(c, domain.TableCollections,
		query.Index{Keys: []string{"address"}, Unique: true},
		query.Index{Keys: []string{"kind", "index"}, Unique: true},
	)
}

func (im *collectionImpl) FindOne(c ctx.Ctx, address domain.Address) (*collection.Collection, error) {
	res := &collection.Collection{}
	if err := im.q.FindOne(c, domain.TableCollections, bson.M{"address": address.ToLower()}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *collectionImpl) Insert(c ctx.Ctx, col *collection.Collection) error {
	if err := im.q.Insert(c, domain.TableCollections, col); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *collectionImpl) FindAll(c ctx.Ctx, optFns ...collection.FindAllOptionsFunc) ([]collection.Collection, error) {
	opts, err := collection.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("collection.GetFindAllOptions failed")
		return nil, err
	}
	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	res := []collection.Collection{}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if err := im.q.Search(c, domain.TableCollections, offset, limit, []string{"kind", "index"}, qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *collectionImpl) Count(c ctx.Ctx, kind collection.Kind) (int, error) {
	res, err := im.q.Count(c, domain.TableCollections, bson.M{"kind": kind})
	if err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return res, nil
}
