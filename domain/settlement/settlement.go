package settlement

import (
	"time"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
)

// Payout is the split of a sale amount
type Payout struct {
	Amount  domain.Amount `json:"amount" bson:"amount"`
	Royalty domain.Amount `json:"royalty" bson:"royalty"`
	Fee     domain.Amount `json:"fee" bson:"fee"`
	Seller  domain.Amount `json:"seller" bson:"seller"`
}

// Record is the history entry written for every finalized sale
type Record struct {
	Id                 string         `json:"id" bson:"_id"`
	Collection         domain.Address `json:"collection" bson:"collection"`
	TokenId            domain.TokenId `json:"tokenId" bson:"tokenId"`
	ListingSeq         uint64         `json:"listingSeq" bson:"listingSeq"`
	Kind               string         `json:"kind" bson:"kind"`
	Seller             domain.Address `json:"seller" bson:"seller"`
	Buyer              domain.Address `json:"buyer" bson:"buyer"`
	RoyaltyBeneficiary domain.Address `json:"royaltyBeneficiary" bson:"royaltyBeneficiary"`
	FeeRecipient       domain.Address `json:"feeRecipient" bson:"feeRecipient"`
	Payout             Payout         `json:"payout" bson:"payout"`
	SettledAt          time.Time      `json:"settledAt" bson:"settledAt"`
}

type FindAllOptions struct {
	Collection *domain.Address `bson:"collection"`
	TokenId    *domain.TokenId `bson:"tokenId"`
	Seller     *domain.Address `bson:"seller"`
	Buyer      *domain.Address `bson:"buyer"`
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

func WithToken(collection domain.Address, tokenId domain.TokenId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		collection = collection.ToLower()
		options.Collection = &collection
		options.TokenId = &tokenId
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

func WithBuyer(buyer domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		buyer = buyer.ToLower()
		options.Buyer = &buyer
		return nil
	}
}

type Repo interface {
	Insert(c ctx.Ctx, r *Record) error
	Remove(c ctx.Ctx, id string) error
	// FindAll sorts by settledAt ascending
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]Record, error)
}
