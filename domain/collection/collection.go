package collection

import (
	"time"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/token"
)

type Kind string

const (
	// KindProject is a first party collection deployed by the project factory
	KindProject Kind = "project"
	// KindExternal is a pre-existing contract imported for trading
	KindExternal Kind = "external"
)

// Collection is a registry entry. Existence of the entry means the address
// is recognized as tradable.
type Collection struct {
	Address domain.Address `json:"address" bson:"address"`
	Kind    Kind           `json:"kind" bson:"kind"`
	// position inside the enumeration of its kind, starts at 0
	Index       int            `json:"index" bson:"index"`
	Owner       domain.Address `json:"owner,omitempty" bson:"owner,omitempty"`
	Name        string         `json:"name,omitempty" bson:"name,omitempty"`
	Symbol      string         `json:"symbol,omitempty" bson:"symbol,omitempty"`
	MetadataURI string         `json:"metadataUri,omitempty" bson:"metadataUri,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
}

// Token is one token of a recognized collection as the registry sees it
type Token struct {
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	Owner      domain.Address `json:"owner"`
	Approved   domain.Address `json:"approved,omitempty"`
	TokenURI   string         `json:"tokenUri,omitempty"`
}

type FindAllOptions struct {
	Kind   *Kind `bson:"kind"`
	Offset *int  `bson:"-"`
	Limit  *int  `bson:"-"`
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

func WithKind(kind Kind) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Kind = &kind
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
	// FindOne returns domain.ErrNotFound for unknown addresses
	FindOne(c ctx.Ctx, address domain.Address) (*Collection, error)
	// Insert returns domain.ErrConflict if the address is already registered
	Insert(c ctx.Ctx, col *Collection) error
	// FindAll sorts by index ascending
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]Collection, error)
	Count(c ctx.Ctx, kind Kind) (int, error)
}

type CreateProjectParams struct {
	MetadataURI string `json:"metadataUri" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Symbol      string `json:"symbol" validate:"required"`
}

type Usecase interface {
	CreateProject(c ctx.Ctx, owner domain.Address, p CreateProjectParams) (*Collection, error)
	ImportCollection(c ctx.Ctx, address domain.Address) (*Collection, error)

	AllProjectsLength(c ctx.Ctx) (int, error)
	GetProject(c ctx.Ctx, index int) (*Collection, error)
	AllExternalCollectionsLength(c ctx.Ctx) (int, error)
	GetExternalCollection(c ctx.Ctx, index int) (*Collection, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]Collection, error)

	// Get returns domain.ErrCollectionNotRecognized for unknown addresses
	Get(c ctx.Ctx, address domain.Address) (*Collection, error)
	// Resolve returns the token capability of a recognized collection
	Resolve(c ctx.Ctx, address domain.Address) (token.Erc721, error)

	Token(c ctx.Ctx, address domain.Address, id domain.TokenId) (*Token, error)
	// Approve and SetApprovalForAll act as caller on the token contract
	Approve(c ctx.Ctx, caller, address, to domain.Address, id domain.TokenId) error
	SetApprovalForAll(c ctx.Ctx, caller, address, operator domain.Address, approved bool) error
}
