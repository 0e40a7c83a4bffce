package usecase

import (
	"errors"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/collection"
	"github.com/x-xyz/marketplace/domain/token"
	"github.com/x-xyz/marketplace/service/cache"
)

type CollectionUseCaseCfg struct {
	CollectionRepo collection.Repo
	Factory        token.Factory
	Directory      token.Directory
	// Tracker backs imported addresses, nil means only contracts already in
	// Directory can be imported
	Tracker token.Tracker
	// every checker must accept an address before it can be imported
	InterfaceCheckers []token.InterfaceChecker
	// Cache holds recognized entries, they never change once written
	Cache cache.Service
	Clock clock.Clock
}

type impl struct {
	collection collection.Repo
	factory    token.Factory
	directory  token.Directory
	tracker    token.Tracker
	checkers   []token.InterfaceChecker
	cache      cache.Service
	clock      clock.Clock

	// serializes index assignment
	mu sync.Mutex
}

func NewCollection(cfg *CollectionUseCaseCfg) collection.Usecase {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &impl{
		collection: cfg.CollectionRepo,
		factory:    cfg.Factory,
		directory:  cfg.Directory,
		tracker:    cfg.Tracker,
		checkers:   cfg.InterfaceCheckers,
		cache:      cfg.Cache,
		clock:      clk,
	}
}

func (im *impl) register(ctx ctx.Ctx, col *collection.Collection) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	n, err := im.collection.Count(ctx, col.Kind)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"kind": col.Kind,
		}).Error("collection.Count failed")
		return err
	}
	col.Index = n
	col.CreatedAt = im.clock.Now()
	if err := im.collection.Insert(ctx, col); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": col.Address,
		}).Error("collection.Insert failed")
		return err
	}
	return nil
}

func (im *impl) CreateProject(ctx ctx.Ctx, owner domain.Address, p collection.CreateProjectParams) (*collection.Collection, error) {
	if owner.IsEmpty() || p.Name == "" || p.Symbol == "" {
		return nil, domain.ErrBadParamInput
	}
	addr, err := im.factory.CreateCollection(ctx, p.MetadataURI, p.Name, p.Symbol, owner)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"owner": owner,
		}).Error("factory.CreateCollection failed")
		return nil, err
	}

	col := &collection.Collection{
		Address:     addr.ToLower(),
		Kind:        collection.KindProject,
		Owner:       owner.ToLower(),
		Name:        p.Name,
		Symbol:      p.Symbol,
		MetadataURI: p.MetadataURI,
	}
	if err := im.register(ctx, col); err != nil {
		return nil, err
	}
	ctx.WithFields(log.Fields{
		"address": col.Address,
		"index":   col.Index,
		"owner":   owner,
	}).Info("project created")
	return col, nil
}

// ImportCollection rejects addresses that are already recognized
func (im *impl) ImportCollection(ctx ctx.Ctx, address domain.Address) (*collection.Collection, error) {
	if !common.IsHexAddress(string(address)) || address.IsEmpty() {
		return nil, domain.ErrInvalidAddress
	}
	address = address.ToLower()

	if _, err := im.collection.FindOne(ctx, address); err == nil {
		return nil, domain.ErrDuplicateImport
	} else if !errors.Is(err, domain.ErrNotFound) {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": address,
		}).Error("collection.FindOne failed")
		return nil, err
	}

	for _, checker := range im.checkers {
		ok, err := checker.Supports721Interface(ctx, address)
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":     err,
				"address": address,
			}).Error("Supports721Interface failed")
			return nil, err
		}
		if !ok {
			return nil, domain.ErrErc721InterfaceUnsupported
		}
	}

	if _, err := im.track(ctx, address); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": address,
		}).Warn("cannot back imported collection")
		return nil, err
	}

	col := &collection.Collection{
		Address: address,
		Kind:    collection.KindExternal,
	}
	if err := im.register(ctx, col); errors.Is(err, domain.ErrConflict) {
		return nil, domain.ErrDuplicateImport
	} else if err != nil {
		return nil, err
	}
	ctx.WithFields(log.Fields{
		"address": col.Address,
		"index":   col.Index,
	}).Info("collection imported")
	return col, nil
}

func (im *impl) AllProjectsLength(ctx ctx.Ctx) (int, error) {
	return im.collection.Count(ctx, collection.KindProject)
}

func (im *impl) GetProject(ctx ctx.Ctx, index int) (*collection.Collection, error) {
	return im.at(ctx, collection.KindProject, index)
}

func (im *impl) AllExternalCollectionsLength(ctx ctx.Ctx) (int, error) {
	return im.collection.Count(ctx, collection.KindExternal)
}

func (im *impl) GetExternalCollection(ctx ctx.Ctx, index int) (*collection.Collection, error) {
	return im.at(ctx, collection.KindExternal, index)
}

func (im *impl) at(ctx ctx.Ctx, kind collection.Kind, index int) (*collection.Collection, error) {
	if index < 0 {
		return nil, domain.ErrBadParamInput
	}
	res, err := im.collection.FindAll(ctx, collection.WithKind(kind), collection.WithPagination(index, 1))
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"kind":  kind,
			"index": index,
		}).Error("collection.FindAll failed")
		return nil, err
	}
	if len(res) == 0 {
		return nil, domain.ErrNotFound
	}
	return &res[0], nil
}

func (im *impl) FindAll(ctx ctx.Ctx, opts ...collection.FindAllOptionsFunc) ([]collection.Collection, error) {
	res, err := im.collection.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("collection.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Get(ctx ctx.Ctx, address domain.Address) (*collection.Collection, error) {
	address = address.ToLower()
	load := func() (interface{}, error) {
		col, err := im.collection.FindOne(ctx, address)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCollectionNotRecognized
		} else if err != nil {
			ctx.WithFields(log.Fields{
				"err":     err,
				"address": address,
			}).Error("collection.FindOne failed")
			return nil, err
		}
		return col, nil
	}

	res := &collection.Collection{}
	if im.cache == nil {
		col, err := load()
		if err != nil {
			return nil, err
		}
		return col.(*collection.Collection), nil
	}
	if err := im.cache.GetOrLoad(ctx, string(address), res, load); err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) Resolve(ctx ctx.Ctx, address domain.Address) (token.Erc721, error) {
	col, err := im.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	t, err := im.directory.Contract(ctx, col.Address)
	if errors.Is(err, token.ErrUnknownCollection) && col.Kind == collection.KindExternal {
		// mirrors do not survive a restart
		t, err = im.track(ctx, col.Address)
	}
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": col.Address,
		}).Error("directory.Contract failed")
		return nil, err
	}
	return t, nil
}

func (im *impl) track(ctx ctx.Ctx, address domain.Address) (token.Erc721, error) {
	if im.tracker == nil {
		return im.directory.Contract(ctx, address)
	}
	return im.tracker.Track(ctx, address)
}

func (im *impl) Token(ctx ctx.Ctx, address domain.Address, id domain.TokenId) (*collection.Token, error) {
	t, err := im.Resolve(ctx, address)
	if err != nil {
		return nil, err
	}
	owner, err := t.OwnerOf(ctx, id)
	if err != nil {
		return nil, err
	}
	approved, err := t.GetApproved(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &collection.Token{
		Collection: t.Address(),
		TokenId:    id,
		Owner:      owner,
	}
	if !approved.IsEmpty() {
		res.Approved = approved
	}
	if r, ok := t.(token.URIReader); ok {
		uri, err := r.TokenURI(ctx, id)
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":     err,
				"address": address,
				"tokenId": id,
			}).Warn("TokenURI failed")
		}
		res.TokenURI = uri
	}
	return res, nil
}

func (im *impl) approver(ctx ctx.Ctx, address domain.Address) (token.Approver, error) {
	t, err := im.Resolve(ctx, address)
	if err != nil {
		return nil, err
	}
	a, ok := t.(token.Approver)
	if !ok {
		return nil, token.ErrApprovalOnChain
	}
	return a, nil
}

func (im *impl) Approve(ctx ctx.Ctx, caller, address, to domain.Address, id domain.TokenId) error {
	if !common.IsHexAddress(string(to)) {
		return domain.ErrInvalidAddress
	}
	a, err := im.approver(ctx, address)
	if err != nil {
		return err
	}
	if err := a.Approve(ctx, caller, to, id); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": address,
			"tokenId": id,
		}).Warn("Approve failed")
		return err
	}
	ctx.WithFields(log.Fields{
		"address": address,
		"tokenId": id,
		"owner":   caller,
		"to":      to,
	}).Info("token approved")
	return nil
}

func (im *impl) SetApprovalForAll(ctx ctx.Ctx, caller, address, operator domain.Address, approved bool) error {
	if !common.IsHexAddress(string(operator)) || operator.IsEmpty() {
		return domain.ErrInvalidAddress
	}
	a, err := im.approver(ctx, address)
	if err != nil {
		return err
	}
	if err := a.SetApprovalForAll(ctx, caller, operator, approved); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": address,
		}).Warn("SetApprovalForAll failed")
		return err
	}
	ctx.WithFields(log.Fields{
		"address":  address,
		"owner":    caller,
		"operator": operator,
		"approved": approved,
	}).Info("operator approval set")
	return nil
}
