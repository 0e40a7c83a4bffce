package usecase

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/ledger"
	"github.com/x-xyz/marketplace/domain/listing"
	"github.com/x-xyz/marketplace/domain/settlement"
	"github.com/x-xyz/marketplace/domain/token"
)

// Split divides amount into royalty, platform fee and seller proceeds.
// royalty and feeRate are Wad fractions whose sum must not exceed Wad.
func Split(amount, royalty, feeRate *big.Int) (settlement.Payout, error) {
	if amount.Sign() < 0 || royalty.Sign() < 0 || feeRate.Sign() < 0 {
		return settlement.Payout{}, domain.ErrInvalidRoyalty
	}
	if new(big.Int).Add(royalty, feeRate).Cmp(domain.Wad) > 0 {
		return settlement.Payout{}, domain.ErrInvalidRoyalty
	}
	r := new(big.Int).Mul(amount, royalty)
	r.Quo(r, domain.Wad)
	f := new(big.Int).Mul(amount, feeRate)
	f.Quo(f, domain.Wad)
	s := new(big.Int).Sub(amount, r)
	s.Sub(s, f)
	return settlement.Payout{
		Amount:  domain.NewAmount(amount),
		Royalty: domain.NewAmount(r),
		Fee:     domain.NewAmount(f),
		Seller:  domain.NewAmount(s),
	}, nil
}

func (im *impl) payoutTransfers(l *listing.Listing, p settlement.Payout) []ledger.Transfer {
	ts := []ledger.Transfer{}
	add := func(to domain.Address, a domain.Amount) {
		if v := a.BigInt(); v.Sign() > 0 {
			ts = append(ts, ledger.Transfer{From: im.cfg.Escrow, To: to, Amount: v})
		}
	}
	add(l.Seller, p.Seller)
	add(l.RoyaltyBeneficiary, p.Royalty)
	add(im.cfg.FeeRecipient, p.Fee)
	return ts
}

// finalize settles a successful listing whose winning funds already sit in
// escrow. The finalized record is written before any value or token leaves
// escrow. Every step is undone when a later one fails.
func (im *impl) finalize(ctx ctx.Ctx, t token.Erc721, prev, l *listing.Listing, now time.Time) error {
	royalty := l.Royalty.BigInt()
	if l.RoyaltyBeneficiary.IsEmpty() {
		royalty = new(big.Int)
	}
	payout, err := Split(l.LastBid.BigInt(), royalty, im.cfg.PlatformFee)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"listing": l.ToId(),
		}).Error("Split failed")
		return err
	}

	l.Finalized = true
	l.FinalizedAt = &now
	if err := im.listingRepo.Upsert(ctx, l); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"listing": l.ToId(),
		}).Error("listingRepo.Upsert failed")
		return err
	}
	restore := func() {
		if err := im.listingRepo.Upsert(ctx, prev); err != nil {
			ctx.WithFields(log.Fields{
				"err":     err,
				"listing": prev.ToId(),
			}).Error("failed to restore listing")
		}
	}

	record := &settlement.Record{
		Id:                 uuid.NewString(),
		Collection:         l.Collection,
		TokenId:            l.TokenId,
		ListingSeq:         l.Seq,
		Kind:               string(l.Kind),
		Seller:             l.Seller,
		Buyer:              l.LastBidder,
		RoyaltyBeneficiary: l.RoyaltyBeneficiary,
		FeeRecipient:       im.cfg.FeeRecipient,
		Payout:             payout,
		SettledAt:          now,
	}
	if err := im.settlementRepo.Insert(ctx, record); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"listing": l.ToId(),
		}).Error("settlementRepo.Insert failed")
		restore()
		return err
	}
	removeRecord := func() {
		if err := im.settlementRepo.Remove(ctx, record.Id); err != nil {
			ctx.WithFields(log.Fields{
				"err": err,
				"id":  record.Id,
			}).Error("settlementRepo.Remove failed")
		}
	}

	transfers := im.payoutTransfers(l, payout)
	if err := im.ledger.TransferBatch(ctx, transfers); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"listing":   l.ToId(),
			"transfers": transfers,
		}).Error("ledger.TransferBatch failed")
		removeRecord()
		restore()
		return xerrors.Errorf("payout: %v: %w", err, domain.ErrTransferFailed)
	}

	if err := t.TransferFrom(ctx, im.cfg.Escrow, im.cfg.Escrow, l.LastBidder, l.TokenId); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"listing": l.ToId(),
			"to":      l.LastBidder,
		}).Error("token.TransferFrom failed")
		if rerr := im.ledger.TransferBatch(ctx, ledger.Reverse(transfers)); rerr != nil {
			ctx.WithFields(log.Fields{
				"err":       rerr,
				"listing":   l.ToId(),
				"transfers": transfers,
			}).Error("failed to compensate payout")
		}
		removeRecord()
		restore()
		return xerrors.Errorf("token: %v: %w", err, domain.ErrTransferFailed)
	}

	ctx.WithFields(log.Fields{
		"listing": l.ToId(),
		"buyer":   l.LastBidder,
		"amount":  payout.Amount,
		"royalty": payout.Royalty,
		"fee":     payout.Fee,
	}).Info("listing settled")
	return nil
}
