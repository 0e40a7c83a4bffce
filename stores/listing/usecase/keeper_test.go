package usecase

import (
	"time"

	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/listing"
)

func (ts *listingSuite) TestKeeperSweep() {
	k := NewKeeper(&KeeperCfg{
		Listing:  ts.im,
		Operator: escrow,
		Workers:  2,
		Clock:    ts.clk,
		Metrics:  metrics.New("keeper"),
	})

	withBid := ts.mintAuction("0.1")
	_, err := ts.im.Bid(ts.ctx, alice, withBid.ToId(), domain.MustParseEther("1"))
	ts.Require().NoError(err)
	noBid := ts.mintAuction("0.1")
	fixed := ts.mintFixedPrice("1")

	// nothing has ended yet
	n, err := k.Sweep(ts.ctx)
	ts.Require().NoError(err)
	ts.Equal(0, n)

	ts.clk.Add(time.Hour)
	n, err = k.Sweep(ts.ctx)
	ts.Require().NoError(err)
	ts.Equal(1, n)

	l, err := ts.im.Get(ts.ctx, withBid.ToId())
	ts.Require().NoError(err)
	ts.True(l.Finalized)
	ts.Equal(alice, ts.ownerOf(withBid.ToId()))

	// unsold listings stay for the seller to reclaim
	ts.Equal(listing.StatusRejected, ts.status(noBid.ToId()))
	ts.Equal(escrow, ts.ownerOf(noBid.ToId()))
	ts.Equal(escrow, ts.ownerOf(fixed.ToId()))

	n, err = k.Sweep(ts.ctx)
	ts.Require().NoError(err)
	ts.Equal(0, n)
}

func (ts *listingSuite) TestKeeperPages() {
	k := NewKeeper(&KeeperCfg{Listing: ts.im, Operator: escrow, Clock: ts.clk, Metrics: metrics.New("keeper")})

	for i := 0; i < keeperPageSize+5; i++ {
		ts.mintAuction("0.1")
	}
	last := ts.mintAuction("0.1")
	_, err := ts.im.Bid(ts.ctx, bob, last.ToId(), domain.MustParseEther("0.5"))
	ts.Require().NoError(err)

	ts.clk.Add(time.Hour)
	ids, err := k.due(ts.ctx)
	ts.Require().NoError(err)
	ts.Equal([]listing.Id{last.ToId()}, ids)
}
