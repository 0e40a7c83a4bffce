package listing

import (
	"fmt"
	"time"

	"github.com/x-xyz/marketplace/domain"
)

type Kind string

const (
	KindAuction    Kind = "auction"
	KindFixedPrice Kind = "fixedPrice"
)

func (k Kind) IsValid() bool {
	return k == KindAuction || k == KindFixedPrice
}

// Status is derived from the stored record and the current time. The order
// matches the contract enum.
type Status uint8

const (
	StatusPending Status = iota
	StatusActive
	StatusSuccessful
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusSuccessful:
		return "successful"
	case StatusRejected:
		return "rejected"
	}
	return fmt.Sprintf("status(%d)", s)
}

// Id is the listing key, one listing per token at a time
type Id struct {
	Collection domain.Address `json:"collection" bson:"collection" param:"contract"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId" param:"tokenId"`
}

func (id Id) ToLower() Id {
	return Id{Collection: id.Collection.ToLower(), TokenId: id.TokenId}
}

func (id Id) String() string {
	return fmt.Sprintf("%s/%s", id.Collection.ToLowerStr(), id.TokenId)
}

type Listing struct {
	// global creation sequence, used for enumeration
	Seq          uint64         `json:"seq" bson:"seq"`
	Collection   domain.Address `json:"collection" bson:"collection"`
	TokenId      domain.TokenId `json:"tokenId" bson:"tokenId"`
	Seller       domain.Address `json:"seller" bson:"seller"`
	// Owner held the token when it entered escrow, a withdrawn token goes
	// back there even when an approved operator listed it
	Owner        domain.Address `json:"owner" bson:"owner"`
	Kind         Kind           `json:"kind" bson:"kind"`
	IdentityNode domain.Node    `json:"identityNode,omitempty" bson:"identityNode,omitempty"`
	StartTime    time.Time      `json:"startTime" bson:"startTime"`
	Duration     time.Duration  `json:"duration" bson:"duration"`

	// fixed price terms
	Price domain.Amount `json:"price,omitempty" bson:"price,omitempty"`
	// auction terms
	MinimalBid domain.Amount `json:"minimalBid,omitempty" bson:"minimalBid,omitempty"`

	// leading bid for auctions, the buyer and price once a fixed price
	// listing is purchased
	LastBidder domain.Address `json:"lastBidder,omitempty" bson:"lastBidder,omitempty"`
	LastBid    domain.Amount  `json:"lastBid,omitempty" bson:"lastBid,omitempty"`

	// Wad fraction fixed at creation
	Royalty            domain.Amount  `json:"royalty" bson:"royalty"`
	RoyaltyBeneficiary domain.Address `json:"royaltyBeneficiary,omitempty" bson:"royaltyBeneficiary,omitempty"`

	// explicit rejection before natural expiry
	Rejected bool `json:"rejected" bson:"rejected"`
	// token and funds have left escrow, the record is read only
	Finalized   bool       `json:"finalized" bson:"finalized"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty" bson:"finalizedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
}

func (l *Listing) ToId() Id {
	return Id{Collection: l.Collection, TokenId: l.TokenId}
}

func (l *Listing) EndTime() time.Time {
	return l.StartTime.Add(l.Duration)
}

func (l *Listing) HasBid() bool {
	return !l.LastBidder.IsEmpty()
}

// StatusAt derives the listing status at now. It only reads the record.
func (l *Listing) StatusAt(now time.Time) Status {
	if l.Rejected {
		return StatusRejected
	}
	// a purchase finalizes a fixed price listing immediately
	if l.Kind == KindFixedPrice && l.HasBid() {
		return StatusSuccessful
	}
	if now.Before(l.StartTime) {
		return StatusPending
	}
	if now.Before(l.EndTime()) {
		return StatusActive
	}
	if l.HasBid() {
		return StatusSuccessful
	}
	return StatusRejected
}

// Clone returns a copy safe to mutate
func (l *Listing) Clone() *Listing {
	res := *l
	if l.FinalizedAt != nil {
		t := *l.FinalizedAt
		res.FinalizedAt = &t
	}
	return &res
}
