package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/mongoclient"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/settlement"
	"github.com/x-xyz/marketplace/service/query"
)

type settlementImpl struct {
	q query.Mongo
}

func NewSettlement(q query.Mongo) settlement.Repo {
	return &settlementImpl{q}
}

func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	return q.EnsureIndexes(c, domain.TableSettlements,
		query.Index{Keys: []string{"collection", "tokenId", "settledAt"}},
		query.Index{Keys: []string{"seller", "settledAt"}},
		query.Index{Keys: []string{"buyer", "settledAt"}},
	)
}

func (im *settlementImpl) Insert(c ctx.Ctx, r *settlement.Record) error {
	if err := im.q.Insert(c, domain.TableSettlements, r); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *settlementImpl) Remove(c ctx.Ctx, id string) error {
	if err := im.q.Remove(c, domain.TableSettlements, bson.M{"_id": id}); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.Remove failed")
		return err
	}
	return nil
}

func (im *settlementImpl) FindAll(c ctx.Ctx, optFns ...settlement.FindAllOptionsFunc) ([]settlement.Record, error) {
	opts, err := settlement.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("settlement.GetFindAllOptions failed")
		return nil, err
	}
	res := []settlement.Record{}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if err := im.q.Search(c, domain.TableSettlements, 0, 0, []string{"settledAt"}, qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
