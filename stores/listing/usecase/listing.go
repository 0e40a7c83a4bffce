package usecase

import (
	"errors"
	"math/big"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/collection"
	"github.com/x-xyz/marketplace/domain/ledger"
	"github.com/x-xyz/marketplace/domain/listing"
	"github.com/x-xyz/marketplace/domain/registrar"
	"github.com/x-xyz/marketplace/domain/settlement"
	"github.com/x-xyz/marketplace/domain/token"
)

type ListingUseCaseCfg struct {
	Config         listing.Config
	ListingRepo    listing.Repo
	SettlementRepo settlement.Repo
	CollectionUC   collection.Usecase
	Registrar      registrar.Registrar
	Ledger         ledger.Ledger
	Clock          clock.Clock
	Metrics        metrics.Service
}

type impl struct {
	cfg            listing.Config
	listingRepo    listing.Repo
	settlementRepo settlement.Repo
	collectionUC   collection.Usecase
	registrar      registrar.Registrar
	ledger         ledger.Ledger
	clock          clock.Clock
	met            metrics.Service
	locks          *keyLock
}

func New(cfg *ListingUseCaseCfg) listing.Usecase {
	c := cfg.Config
	c.Escrow = c.Escrow.ToLower()
	c.FeeRecipient = c.FeeRecipient.ToLower()
	for _, v := range []**big.Int{&c.PlatformFee, &c.MinimalListingValue, &c.AuctionStep} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &impl{
		cfg:            c,
		listingRepo:    cfg.ListingRepo,
		settlementRepo: cfg.SettlementRepo,
		collectionUC:   cfg.CollectionUC,
		registrar:      cfg.Registrar,
		ledger:         cfg.Ledger,
		clock:          clk,
		met:            cfg.Metrics,
		locks:          newKeyLock(),
	}
}

// observe records the duration and failure of op
func (im *impl) observe(op string) func(*error) {
	timer := im.met.BumpTime(op + ".time")
	return func(err *error) {
		timer.End()
		if *err != nil {
			im.met.BumpSum(op+".err", 1)
		}
	}
}

func (im *impl) lock(id listing.Id) func() {
	return im.locks.Lock(id.String())
}

func (im *impl) validateWindow(w listing.Window, now time.Time) error {
	if w.Duration <= 0 || w.Duration < im.cfg.MinimumDuration {
		return domain.ErrInvalidWindow
	}
	if w.StartTime.IsZero() || !w.StartTime.Add(w.Duration).After(now) {
		return domain.ErrInvalidWindow
	}
	return nil
}

func (im *impl) validateValue(v domain.Amount) error {
	if !v.IsValid() {
		return domain.ErrInvalidNumberFormat
	}
	if v.BigInt().Cmp(im.cfg.MinimalListingValue) < 0 {
		return domain.ErrBelowMinimalValue
	}
	return nil
}

func (im *impl) validateRoyalty(royalty *big.Int) error {
	if royalty.Sign() < 0 || new(big.Int).Add(royalty, im.cfg.PlatformFee).Cmp(domain.Wad) > 0 {
		return domain.ErrInvalidRoyalty
	}
	return nil
}

func (im *impl) checkIdentity(ctx ctx.Ctx, node domain.Node, principal domain.Address) error {
	if node.IsEmpty() {
		return nil
	}
	active, err := im.registrar.Active(ctx, node, principal)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"node":      node,
			"principal": principal,
		}).Error("registrar.Active failed")
		return xerrors.Errorf("registrar: %v: %w", err, domain.ErrIdentityCheckFailed)
	}
	if !active {
		return domain.ErrIdentityCheckFailed
	}
	return nil
}

// checkVacant fails unless the token has no listing or only a finalized one
func (im *impl) checkVacant(ctx ctx.Ctx, id listing.Id) error {
	l, err := im.listingRepo.FindOne(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.FindOne failed")
		return err
	}
	if !l.Finalized {
		return domain.ErrListingAlreadyExists
	}
	return nil
}

func (im *impl) findListing(ctx ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	l, err := im.listingRepo.FindOne(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrListingNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.FindOne failed")
		return nil, err
	}
	return l, nil
}

type terms struct {
	kind       listing.Kind
	price      domain.Amount
	minimalBid domain.Amount
}

func (im *impl) StartAuction(ctx ctx.Ctx, seller domain.Address, p listing.AuctionParams) (l *listing.Listing, err error) {
	defer im.observe("startAuction")(&err)
	return im.startListing(ctx, seller, p.Id, p.IdentityNode, p.Window, terms{kind: listing.KindAuction, minimalBid: p.MinimalBid})
}

func (im *impl) StartFixedPrice(ctx ctx.Ctx, seller domain.Address, p listing.FixedPriceParams) (l *listing.Listing, err error) {
	defer im.observe("startFixedPrice")(&err)
	return im.startListing(ctx, seller, p.Id, p.IdentityNode, p.Window, terms{kind: listing.KindFixedPrice, price: p.Price})
}

func (t terms) value() domain.Amount {
	if t.kind == listing.KindAuction {
		return t.minimalBid
	}
	return t.price
}

// startListing lists a token the seller already holds or may dispose of. The
// token moves into escrow and the royalty recorded at mint applies.
func (im *impl) startListing(ctx ctx.Ctx, seller domain.Address, id listing.Id, node domain.Node, w listing.Window, tm terms) (*listing.Listing, error) {
	seller = seller.ToLower()
	id = id.ToLower()
	unlock := im.lock(id)
	defer unlock()
	now := im.clock.Now()

	if err := im.validateWindow(w, now); err != nil {
		return nil, err
	}
	if err := im.validateValue(tm.value()); err != nil {
		return nil, err
	}
	t, err := im.collectionUC.Resolve(ctx, id.Collection)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": id.Collection,
		}).Error("collectionUC.Resolve failed")
		return nil, err
	}
	if err := im.checkVacant(ctx, id); err != nil {
		return nil, err
	}

	if ok, err := token.IsOwnerOrApproved(ctx, t, seller, id.TokenId); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Warn("token.IsOwnerOrApproved failed")
		return nil, xerrors.Errorf("%v: %w", err, domain.ErrNotOwnerOrApproved)
	} else if !ok {
		return nil, domain.ErrNotOwnerOrApproved
	}
	if err := im.checkIdentity(ctx, node, seller); err != nil {
		return nil, err
	}

	beneficiary, royalty := domain.EmptyAddress, domain.Amount("0")
	if rr, ok := t.(token.RoyaltyReader); ok {
		beneficiary, royalty, err = rr.RoyaltyInfo(ctx, id.TokenId)
		if err != nil {
			ctx.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("RoyaltyInfo failed")
			return nil, err
		}
	}
	if err := im.validateRoyalty(royalty.BigInt()); err != nil {
		return nil, err
	}

	owner, err := t.OwnerOf(ctx, id.TokenId)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("OwnerOf failed")
		return nil, err
	}

	l, err := im.newListing(ctx, seller, owner, id, node, w, tm, royalty, beneficiary, now)
	if err != nil {
		return nil, err
	}

	if err := t.TransferFrom(ctx, im.cfg.Escrow, owner, im.cfg.Escrow, id.TokenId); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"id":    id,
			"owner": owner,
		}).Error("failed to escrow token")
		return nil, xerrors.Errorf("escrow: %v: %w", err, domain.ErrTransferFailed)
	}
	if err := im.listingRepo.Upsert(ctx, l); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.Upsert failed")
		im.returnToken(ctx, t, id, owner)
		return nil, err
	}

	ctx.WithFields(log.Fields{
		"id":     id,
		"seller": seller,
		"kind":   tm.kind,
		"seq":    l.Seq,
	}).Info("listing started")
	return l.Clone(), nil
}

func (im *impl) newListing(ctx ctx.Ctx, seller, owner domain.Address, id listing.Id, node domain.Node, w listing.Window, tm terms, royalty domain.Amount, beneficiary domain.Address, now time.Time) (*listing.Listing, error) {
	seq, err := im.listingRepo.NextSeq(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("listingRepo.NextSeq failed")
		return nil, err
	}
	l := &listing.Listing{
		Seq:          seq,
		Collection:   id.Collection,
		TokenId:      id.TokenId,
		Seller:       seller,
		Owner:        owner.ToLower(),
		Kind:         tm.kind,
		IdentityNode: node,
		StartTime:    w.StartTime,
		Duration:     w.Duration,
		Royalty:      domain.NewAmount(royalty.BigInt()),
		CreatedAt:    now,
	}
	if !beneficiary.IsEmpty() {
		l.RoyaltyBeneficiary = beneficiary.ToLower()
	}
	if tm.kind == listing.KindAuction {
		l.MinimalBid = domain.NewAmount(tm.minimalBid.BigInt())
	} else {
		l.Price = domain.NewAmount(tm.price.BigInt())
	}
	return l, nil
}

func (im *impl) returnToken(ctx ctx.Ctx, t token.Erc721, id listing.Id, to domain.Address) {
	if err := t.TransferFrom(ctx, im.cfg.Escrow, im.cfg.Escrow, to, id.TokenId); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
			"to":  to,
		}).Error("failed to return token")
	}
}

func (im *impl) CreateNFTWithAuction(ctx ctx.Ctx, seller domain.Address, p listing.MintAuctionParams) (l *listing.Listing, err error) {
	defer im.observe("createNFTWithAuction")(&err)
	return im.mintAndList(ctx, seller, p.MintParams, terms{kind: listing.KindAuction, minimalBid: p.MinimalBid})
}

func (im *impl) CreateNFTWithFixedPrice(ctx ctx.Ctx, seller domain.Address, p listing.MintFixedPriceParams) (l *listing.Listing, err error) {
	defer im.observe("createNFTWithFixedPrice")(&err)
	return im.mintAndList(ctx, seller, p.MintParams, terms{kind: listing.KindFixedPrice, price: p.Price})
}

// mintAndList mints a new token of a first party project straight into
// escrow and lists it. The seller becomes the royalty beneficiary.
func (im *impl) mintAndList(ctx ctx.Ctx, seller domain.Address, p listing.MintParams, tm terms) (*listing.Listing, error) {
	seller = seller.ToLower()
	now := im.clock.Now()

	if err := im.validateWindow(p.Window, now); err != nil {
		return nil, err
	}
	if err := im.validateValue(tm.value()); err != nil {
		return nil, err
	}
	if !p.Royalty.IsValid() {
		return nil, domain.ErrInvalidRoyalty
	}
	if err := im.validateRoyalty(p.Royalty.BigInt()); err != nil {
		return nil, err
	}

	col, err := im.collectionUC.Get(ctx, p.Collection)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": p.Collection,
		}).Error("collectionUC.Get failed")
		return nil, err
	}
	if col.Kind != collection.KindProject {
		return nil, domain.ErrNotProject
	}
	t, err := im.collectionUC.Resolve(ctx, col.Address)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": col.Address,
		}).Error("collectionUC.Resolve failed")
		return nil, err
	}
	project, ok := t.(token.Mintable)
	if !ok {
		return nil, domain.ErrNotProject
	}
	if !project.Owner().Equals(seller) {
		return nil, domain.ErrNotOwnerOrApproved
	}
	if err := im.checkIdentity(ctx, p.IdentityNode, seller); err != nil {
		return nil, err
	}

	tokenId, err := project.Mint(ctx, im.cfg.Escrow, token.MintParams{
		Uri:                p.TokenURI,
		To:                 im.cfg.Escrow,
		RoyaltyBeneficiary: seller,
		Royalty:            p.Royalty,
		IdentityNode:       p.IdentityNode,
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": col.Address,
		}).Error("project.Mint failed")
		return nil, err
	}

	id := listing.Id{Collection: col.Address, TokenId: tokenId}.ToLower()
	unlock := im.lock(id)
	defer unlock()

	l, err := im.newListing(ctx, seller, seller, id, p.IdentityNode, p.Window, tm, p.Royalty, seller, now)
	if err != nil {
		im.returnToken(ctx, t, id, seller)
		return nil, err
	}
	if err := im.listingRepo.Upsert(ctx, l); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.Upsert failed")
		im.returnToken(ctx, t, id, seller)
		return nil, err
	}

	ctx.WithFields(log.Fields{
		"id":     id,
		"seller": seller,
		"kind":   tm.kind,
		"seq":    l.Seq,
	}).Info("token minted and listed")
	return l.Clone(), nil
}

func (im *impl) Bid(ctx ctx.Ctx, bidder domain.Address, id listing.Id, value domain.Amount) (res *listing.Listing, err error) {
	defer im.observe("bid")(&err)
	bidder = bidder.ToLower()
	id = id.ToLower()
	unlock := im.lock(id)
	defer unlock()
	now := im.clock.Now()

	l, err := im.findListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Kind != listing.KindAuction {
		return nil, domain.ErrWrongListingKind
	}
	if l.Finalized || l.StatusAt(now) != listing.StatusActive {
		return nil, domain.ErrNotActive
	}
	if !value.IsValid() {
		return nil, domain.ErrInvalidNumberFormat
	}
	v := value.BigInt()
	if l.HasBid() {
		last := l.LastBid.BigInt()
		if v.Cmp(last) <= 0 || v.Cmp(new(big.Int).Add(last, im.cfg.AuctionStep)) < 0 {
			return nil, domain.ErrBidTooLow
		}
	} else if v.Cmp(l.MinimalBid.BigInt()) < 0 {
		return nil, domain.ErrBidTooLow
	}

	if err := im.ledger.Transfer(ctx, bidder, im.cfg.Escrow, v); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"id":     id,
			"bidder": bidder,
		}).Warn("failed to escrow bid")
		return nil, xerrors.Errorf("escrow bid: %v: %w", err, domain.ErrTransferFailed)
	}
	refundBidder := func() {
		if err := im.ledger.Transfer(ctx, im.cfg.Escrow, bidder, v); err != nil {
			ctx.WithFields(log.Fields{
				"err":    err,
				"id":     id,
				"bidder": bidder,
			}).Error("failed to refund bidder")
		}
	}

	prev := l.Clone()
	l.LastBidder = bidder
	l.LastBid = domain.NewAmount(v)
	if err := im.listingRepo.Upsert(ctx, l); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.Upsert failed")
		refundBidder()
		return nil, err
	}

	if prev.HasBid() {
		if err := im.ledger.Transfer(ctx, im.cfg.Escrow, prev.LastBidder, prev.LastBid.BigInt()); err != nil {
			ctx.WithFields(log.Fields{
				"err":    err,
				"id":     id,
				"bidder": prev.LastBidder,
			}).Warn("failed to refund outbid bidder")
			if err := im.listingRepo.Upsert(ctx, prev); err != nil {
				ctx.WithFields(log.Fields{
					"err": err,
					"id":  id,
				}).Error("failed to restore listing")
			}
			refundBidder()
			return nil, xerrors.Errorf("refund: %v: %w", err, domain.ErrTransferFailed)
		}
	}

	ctx.WithFields(log.Fields{
		"id":     id,
		"bidder": bidder,
		"value":  l.LastBid,
	}).Info("bid accepted")
	return l.Clone(), nil
}

func (im *impl) Purchase(ctx ctx.Ctx, buyer domain.Address, id listing.Id, value domain.Amount) (res *listing.Listing, err error) {
	defer im.observe("purchase")(&err)
	buyer = buyer.ToLower()
	id = id.ToLower()
	unlock := im.lock(id)
	defer unlock()
	now := im.clock.Now()

	l, err := im.findListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Finalized {
		return nil, domain.ErrAlreadyFinalized
	}
	if l.Kind != listing.KindFixedPrice {
		return nil, domain.ErrWrongListingKind
	}
	if l.StatusAt(now) != listing.StatusActive {
		return nil, domain.ErrNotActive
	}
	if !value.IsValid() || value.Cmp(l.Price) != 0 {
		return nil, domain.ErrIncorrectPaymentAmount
	}
	t, err := im.collectionUC.Resolve(ctx, id.Collection)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": id.Collection,
		}).Error("collectionUC.Resolve failed")
		return nil, err
	}

	price := l.Price.BigInt()
	if err := im.ledger.Transfer(ctx, buyer, im.cfg.Escrow, price); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"id":    id,
			"buyer": buyer,
		}).Warn("failed to escrow payment")
		return nil, xerrors.Errorf("escrow payment: %v: %w", err, domain.ErrTransferFailed)
	}

	prev := l.Clone()
	l.LastBidder = buyer
	l.LastBid = domain.NewAmount(price)
	if err := im.finalize(ctx, t, prev, l, now); err != nil {
		if rerr := im.ledger.Transfer(ctx, im.cfg.Escrow, buyer, price); rerr != nil {
			ctx.WithFields(log.Fields{
				"err":   rerr,
				"id":    id,
				"buyer": buyer,
			}).Error("failed to refund buyer")
		}
		return nil, err
	}
	return l.Clone(), nil
}

func (im *impl) ClaimNFT(ctx ctx.Ctx, claimant domain.Address, id listing.Id) (res *listing.Listing, err error) {
	defer im.observe("claimNFT")(&err)
	id = id.ToLower()
	unlock := im.lock(id)
	defer unlock()
	now := im.clock.Now()

	l, err := im.findListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Finalized {
		return nil, domain.ErrAlreadyFinalized
	}
	if l.StatusAt(now) != listing.StatusSuccessful {
		return nil, domain.ErrNotSuccessful
	}
	t, err := im.collectionUC.Resolve(ctx, id.Collection)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": id.Collection,
		}).Error("collectionUC.Resolve failed")
		return nil, err
	}

	if err := im.finalize(ctx, t, l.Clone(), l, now); err != nil {
		return nil, err
	}
	ctx.WithFields(log.Fields{
		"id":       id,
		"claimant": claimant,
		"winner":   l.LastBidder,
	}).Info("listing claimed")
	return l.Clone(), nil
}

// CancelListing withdraws a listing nobody has bid on yet
func (im *impl) CancelListing(ctx ctx.Ctx, seller domain.Address, id listing.Id) (res *listing.Listing, err error) {
	defer im.observe("cancelListing")(&err)
	return im.withdraw(ctx, seller, id, func(l *listing.Listing, now time.Time) error {
		if l.HasBid() {
			return domain.ErrHasBids
		}
		return nil
	})
}

// ReclaimNFT returns the token of a listing that ended rejected
func (im *impl) ReclaimNFT(ctx ctx.Ctx, seller domain.Address, id listing.Id) (res *listing.Listing, err error) {
	defer im.observe("reclaimNFT")(&err)
	return im.withdraw(ctx, seller, id, func(l *listing.Listing, now time.Time) error {
		if l.StatusAt(now) != listing.StatusRejected {
			return domain.ErrNotRejected
		}
		return nil
	})
}

func (im *impl) withdraw(ctx ctx.Ctx, seller domain.Address, id listing.Id, check func(*listing.Listing, time.Time) error) (*listing.Listing, error) {
	seller = seller.ToLower()
	id = id.ToLower()
	unlock := im.lock(id)
	defer unlock()
	now := im.clock.Now()

	l, err := im.findListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Finalized {
		return nil, domain.ErrAlreadyFinalized
	}
	if !l.Seller.Equals(seller) {
		return nil, domain.ErrNotSeller
	}
	if err := check(l, now); err != nil {
		return nil, err
	}
	t, err := im.collectionUC.Resolve(ctx, id.Collection)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": id.Collection,
		}).Error("collectionUC.Resolve failed")
		return nil, err
	}

	prev := l.Clone()
	l.Rejected = true
	l.Finalized = true
	l.FinalizedAt = &now
	if err := im.listingRepo.Upsert(ctx, l); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.Upsert failed")
		return nil, err
	}
	to := l.Owner
	if to.IsEmpty() {
		to = l.Seller
	}
	if err := t.TransferFrom(ctx, im.cfg.Escrow, im.cfg.Escrow, to, id.TokenId); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
			"to":  to,
		}).Error("failed to return token")
		if err := im.listingRepo.Upsert(ctx, prev); err != nil {
			ctx.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("failed to restore listing")
		}
		return nil, xerrors.Errorf("token: %v: %w", err, domain.ErrTransferFailed)
	}

	ctx.WithFields(log.Fields{
		"id":     id,
		"seller": seller,
		"to":     to,
	}).Info("listing withdrawn")
	return l.Clone(), nil
}

func (im *impl) Get(ctx ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	return im.findListing(ctx, id.ToLower())
}

func (im *impl) GetStatus(ctx ctx.Ctx, id listing.Id) (listing.Status, error) {
	l, err := im.findListing(ctx, id.ToLower())
	if err != nil {
		return 0, err
	}
	return l.StatusAt(im.clock.Now()), nil
}

func (im *impl) FindAll(ctx ctx.Ctx, opts ...listing.FindAllOptionsFunc) ([]listing.Listing, error) {
	res, err := im.listingRepo.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("listingRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(ctx ctx.Ctx, opts ...listing.FindAllOptionsFunc) (int, error) {
	res, err := im.listingRepo.Count(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("listingRepo.Count failed")
		return 0, err
	}
	return res, nil
}

func (im *impl) Settlements(ctx ctx.Ctx, opts ...settlement.FindAllOptionsFunc) ([]settlement.Record, error) {
	res, err := im.settlementRepo.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("settlementRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}
