package listing

import (
	"math/big"
	"time"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/settlement"
)

// Config is set once at deployment
type Config struct {
	// Escrow holds listed tokens and the leading bid of every auction
	Escrow       domain.Address
	FeeRecipient domain.Address
	// PlatformFee is a Wad fraction of every sale
	PlatformFee         *big.Int
	MinimumDuration     time.Duration
	MinimalListingValue *big.Int
	AuctionStep         *big.Int
}

type Window struct {
	StartTime time.Time     `json:"startTime" validate:"required"`
	Duration  time.Duration `json:"duration" validate:"required"`
}

type AuctionParams struct {
	Id
	IdentityNode domain.Node
	Window
	MinimalBid domain.Amount
}

type FixedPriceParams struct {
	Id
	IdentityNode domain.Node
	Window
	Price domain.Amount
}

// MintParams describes a new token minted into a first party project
type MintParams struct {
	Collection   domain.Address
	TokenURI     string
	IdentityNode domain.Node
	Window
	// Royalty is a Wad fraction recorded in the token, paid to the minter on
	// every sale
	Royalty domain.Amount
}

type MintAuctionParams struct {
	MintParams
	MinimalBid domain.Amount
}

type MintFixedPriceParams struct {
	MintParams
	Price domain.Amount
}

type FindAllOptions struct {
	Collection *domain.Address `bson:"collection"`
	Seller     *domain.Address `bson:"seller"`
	Kind       *Kind           `bson:"kind"`
	Finalized  *bool           `bson:"finalized"`
	Offset     *int            `bson:"-"`
	Limit      *int            `bson:"-"`
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithCollection(collection domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		collection = collection.ToLower()
		options.Collection = &collection
		return nil
	}
}

func WithSeller(seller domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		seller = seller.ToLower()
		options.Seller = &seller
		return nil
	}
}

func WithKind(kind Kind) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if !kind.IsValid() {
			return domain.ErrBadParamInput
		}
		options.Kind = &kind
		return nil
	}
}

func WithFinalized(finalized bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Finalized = &finalized
		return nil
	}
}

func WithPagination(offset, limit int) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

type Repo interface {
	// FindOne returns domain.ErrNotFound when the token was never listed
	FindOne(c ctx.Ctx, id Id) (*Listing, error)
	// Upsert stores l as the current listing of its token
	Upsert(c ctx.Ctx, l *Listing) error
	NextSeq(c ctx.Ctx) (uint64, error)
	// FindAll sorts by seq ascending
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]Listing, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
}

type Usecase interface {
	StartAuction(c ctx.Ctx, seller domain.Address, p AuctionParams) (*Listing, error)
	StartFixedPrice(c ctx.Ctx, seller domain.Address, p FixedPriceParams) (*Listing, error)
	CreateNFTWithAuction(c ctx.Ctx, seller domain.Address, p MintAuctionParams) (*Listing, error)
	CreateNFTWithFixedPrice(c ctx.Ctx, seller domain.Address, p MintFixedPriceParams) (*Listing, error)

	Bid(c ctx.Ctx, bidder domain.Address, id Id, value domain.Amount) (*Listing, error)
	Purchase(c ctx.Ctx, buyer domain.Address, id Id, value domain.Amount) (*Listing, error)
	ClaimNFT(c ctx.Ctx, caller domain.Address, id Id) (*Listing, error)
	CancelListing(c ctx.Ctx, seller domain.Address, id Id) (*Listing, error)
	ReclaimNFT(c ctx.Ctx, seller domain.Address, id Id) (*Listing, error)

	Get(c ctx.Ctx, id Id) (*Listing, error)
	GetStatus(c ctx.Ctx, id Id) (Status, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]Listing, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Settlements(c ctx.Ctx, opts ...settlement.FindAllOptionsFunc) ([]settlement.Record, error)
}
