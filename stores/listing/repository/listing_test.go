package repository

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/mongoclient"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/listing"
	"github.com/x-xyz/marketplace/service/query"
)

const (
	project  = domain.Address("0x1000000000000000000000000000000000000001")
	external = domain.Address("0x1000000000000000000000000000000000000002")
	seller   = domain.Address("0x2000000000000000000000000000000000000001")
	other    = domain.Address("0x2000000000000000000000000000000000000002")
)

type listingSuite struct {
	suite.Suite
	ctx     ctx.Ctx
	newRepo func() listing.Repo
	im      listing.Repo
}

func TestMemory(t *testing.T) {
	suite.Run(t, &listingSuite{newRepo: NewMemory})
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	suite.Run(t, &listingSuite{newRepo: func() listing.Repo {
		client := mongoclient.MustConnect(mongoclient.Config{URI: uri, AuthDB: "admin", DB: "listing-"+uuid.NewString(), Majority: true})
		q := query.New(client, metrics.New("listing-test"), false)
		if err := EnsureIndexes(ctx.Background(), q); err != nil {
			t.Fatal(err)
		}
		return NewListing(q)
	}})
}

func (s *listingSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.im = s.newRepo()
}

func (s *listingSuite) insert(collection domain.Address, tokenId domain.TokenId, from domain.Address, kind listing.Kind) *listing.Listing {
	seq, err := s.im.NextSeq(s.ctx)
	s.Require().NoError(err)
	l := &listing.Listing{
		Seq:        seq,
		Collection: collection,
		TokenId:    tokenId,
		Seller:     from,
		Kind:       kind,
		StartTime:  time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
		Duration:   200 * time.Second,
		Royalty:    "0",
		CreatedAt:  time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.im.Upsert(s.ctx, l))
	return l
}

func (s *listingSuite) TestFindOne() {
	_, err := s.im.FindOne(s.ctx, listing.Id{Collection: project, TokenId: "1"})
	s.ErrorIs(err, domain.ErrNotFound)

	l := s.insert(project, "1", seller, listing.KindAuction)
	got, err := s.im.FindOne(s.ctx, listing.Id{Collection: "0x1000000000000000000000000000000000000001", TokenId: "1"})
	s.Require().NoError(err)
	s.Equal(l.Seq, got.Seq)
	s.Equal(l.Duration, got.Duration)
	s.True(l.StartTime.Equal(got.StartTime))
}

func (s *listingSuite) TestUpsertReplaces() {
	l := s.insert(project, "1", seller, listing.KindAuction)
	l.LastBidder = other
	l.LastBid = domain.MustParseEther("2.6")
	s.Require().NoError(s.im.Upsert(s.ctx, l))

	got, err := s.im.FindOne(s.ctx, l.ToId())
	s.Require().NoError(err)
	s.Equal(other, got.LastBidder)
	s.Equal(domain.MustParseEther("2.6"), got.LastBid)

	n, err := s.im.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *listingSuite) TestNextSeqIncreases() {
	prev := uint64(0)
	for i := 0; i < 3; i++ {
		seq, err := s.im.NextSeq(s.ctx)
		s.Require().NoError(err)
		s.Greater(seq, prev)
		prev = seq
	}
}

func (s *listingSuite) TestFindAll() {
	a := s.insert(project, "1", seller, listing.KindAuction)
	b := s.insert(external, "7", other, listing.KindFixedPrice)
	c := s.insert(project, "2", seller, listing.KindFixedPrice)

	cases := []struct {
		name string
		opts []listing.FindAllOptionsFunc
		want []uint64
	}{
		{"all in creation order", nil, []uint64{a.Seq, b.Seq, c.Seq}},
		{"by collection", []listing.FindAllOptionsFunc{listing.WithCollection(project)}, []uint64{a.Seq, c.Seq}},
		{"by seller", []listing.FindAllOptionsFunc{listing.WithSeller(other)}, []uint64{b.Seq}},
		{"by kind", []listing.FindAllOptionsFunc{listing.WithKind(listing.KindFixedPrice)}, []uint64{b.Seq, c.Seq}},
		{"page", []listing.FindAllOptionsFunc{listing.WithPagination(1, 1)}, []uint64{b.Seq}},
		{"past the end", []listing.FindAllOptionsFunc{listing.WithPagination(5, 1)}, []uint64{}},
		{"open", []listing.FindAllOptionsFunc{listing.WithFinalized(false)}, []uint64{a.Seq, b.Seq, c.Seq}},
	}
	for _, tc := range cases {
		res, err := s.im.FindAll(s.ctx, tc.opts...)
		s.Require().NoError(err, tc.name)
		seqs := []uint64{}
		for _, l := range res {
			seqs = append(seqs, l.Seq)
		}
		s.Equal(tc.want, seqs, tc.name)
	}

	n, err := s.im.Count(s.ctx, listing.WithCollection(project))
	s.Require().NoError(err)
	s.Equal(2, n)
}
