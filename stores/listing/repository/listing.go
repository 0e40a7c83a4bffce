package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/mongoclient"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/listing"
	"github.com/x-xyz/marketplace/service/query"
)

const seqCounter = "listingSeq"

func idSelector(id listing.Id) bson.M {
	id = id.ToLower()
	return bson.M{"collection": id.Collection, "tokenId": id.TokenId}
}

type listingImpl struct {
	q query.Mongo
}

func NewListing(q query.Mongo) listing.Repo {
	return &listingImpl{q}
}

func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	return q.EnsureIndexes(c, domain.TableListings,
		query.Index{Keys: []string{"collection", "tokenId"}, Unique: true},
		query.Index{Keys: []string{"seq"}},
		query.Index{Keys: []string{"seller", "seq"}},
	)
}

func (im *listingImpl) FindOne(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	res := &listing.Listing{}
	if err := im.q.FindOne(c, domain.TableListings, idSelector(id), res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *listingImpl) Upsert(c ctx.Ctx, l *listing.Listing) error {
	if err := im.q.Upsert(c, domain.TableListings, idSelector(l.ToId()), l); err != nil {
		c.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (im *listingImpl) NextSeq(c ctx.Ctx) (uint64, error) {
	res := struct {
		Seq int64 `bson:"seq"`
	}{}
	if err := im.q.Increment(c, domain.TableCounters, bson.M{"_id": seqCounter}, &res, "seq", int64(1)); err != nil {
		c.WithField("err", err).Error("q.Increment failed")
		return 0, err
	}
	return uint64(res.Seq), nil
}

func (im *listingImpl) FindAll(c ctx.Ctx, optFns ...listing.FindAllOptionsFunc) ([]listing.Listing, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return nil, err
	}
	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	res := []listing.Listing{}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if err := im.q.Search(c, domain.TableListings, offset, limit, []string{"seq"}, qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *listingImpl) Count(c ctx.Ctx, optFns ...listing.FindAllOptionsFunc) (int, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return 0, err
	}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return 0, err
	}
	res, err := im.q.Count(c, domain.TableListings, qry)
	if err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return res, nil
}
