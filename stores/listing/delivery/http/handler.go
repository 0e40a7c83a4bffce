package http

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/delivery"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/listing"
	"github.com/x-xyz/marketplace/domain/settlement"
	"github.com/x-xyz/marketplace/middleware"
	"github.com/x-xyz/marketplace/service/registrar"
	authMiddleware "github.com/x-xyz/marketplace/stores/auth/delivery/http/middleware"
)

type handler struct {
	listing listing.Usecase
	clock   clock.Clock
}

// listingView adds the derived fields to a stored listing
type listingView struct {
	listing.Listing
	Status  string    `json:"status"`
	EndTime time.Time `json:"endTime"`
}

type listResult struct {
	Items []listingView `json:"items"`
	Count int           `json:"count"`
}

// windowParams carries unix seconds as the chain does
type windowParams struct {
	Identity  string `json:"identity"`
	StartTime int64  `json:"startTime" validate:"min=0"`
	Duration  int64  `json:"duration" validate:"gt=0"`
}

func (p windowParams) window() listing.Window {
	return listing.Window{
		StartTime: time.Unix(p.StartTime, 0),
		Duration:  time.Duration(p.Duration) * time.Second,
	}
}

func (p windowParams) node() (domain.Node, error) {
	if p.Identity == "" {
		return "", nil
	}
	return registrar.Node(p.Identity)
}

type valueParams struct {
	Value string `json:"value" validate:"required,ether"`
}

func New(
	e *echo.Echo,
	l listing.Usecase,
	authMiddleware *authMiddleware.AuthMiddleware,
	clk clock.Clock,
) {
	h := &handler{l, clk}

	g := e.Group("/listings")
	g.GET("", h.list)
	g.POST("/auction", h.startAuction, authMiddleware.Auth())
	g.POST("/fixed-price", h.startFixedPrice, authMiddleware.Auth())
	g.POST("/mint/auction", h.mintAuction, authMiddleware.Auth())
	g.POST("/mint/fixed-price", h.mintFixedPrice, authMiddleware.Auth())

	gt := e.Group("/listings/:contract/:tokenId", middleware.IsValidAddress("contract"))
	gt.GET("", h.get)
	gt.GET("/status", h.getStatus)
	gt.GET("/settlements", h.getSettlements)
	gt.POST("/bid", h.bid, authMiddleware.Auth())
	gt.POST("/purchase", h.purchase, authMiddleware.Auth())
	gt.POST("/claim", h.act(l.ClaimNFT, "listing.ClaimNFT failed"), authMiddleware.Auth())
	gt.POST("/cancel", h.act(l.CancelListing, "listing.CancelListing failed"), authMiddleware.Auth())
	gt.POST("/reclaim", h.act(l.ReclaimNFT, "listing.ReclaimNFT failed"), authMiddleware.Auth())
}

func (h *handler) view(l *listing.Listing) listingView {
	return listingView{
		Listing: *l,
		Status:  l.StatusAt(h.clock.Now()).String(),
		EndTime: l.EndTime(),
	}
}

func (h *handler) respond(c echo.Context, status int, l *listing.Listing, err error, msg string) error {
	if err != nil {
		c.Get("ctx").(ctx.Ctx).WithField("err", err).Warn(msg)
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, status, h.view(l))
}

func bindAndValidate(c echo.Context, p interface{}) error {
	if err := c.Bind(p); err != nil {
		return err
	}
	return c.Validate(p)
}

func paramId(c echo.Context) listing.Id {
	return listing.Id{
		Collection: domain.Address(c.Param("contract")),
		TokenId:    domain.TokenId(c.Param("tokenId")),
	}
}

// startAuction
//
//	@Summary		List a held token for auction
//	@Tags			listing
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.startAuction.params	true	"params"
//	@Success		201		{object}	object{data=http.listingView}
//	@Security		ApiKeyAuth
//	@Router			/listings/auction [post]
func (h *handler) startAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := c.Get("address").(domain.Address)

	type params struct {
		Collection domain.Address `json:"collection" validate:"required,address"`
		TokenId    domain.TokenId `json:"tokenId" validate:"required"`
		windowParams
		MinimalBid string `json:"minimalBid" validate:"required,ether"`
	}

	p := params{}
	if err := bindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	node, err := p.node()
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	l, err := h.listing.StartAuction(ctx, seller, listing.AuctionParams{
		Id:           listing.Id{Collection: p.Collection, TokenId: p.TokenId},
		IdentityNode: node,
		Window:       p.window(),
		MinimalBid:   domain.MustParseEther(p.MinimalBid),
	})
	return h.respond(c, http.StatusCreated, l, err, "listing.StartAuction failed")
}

// startFixedPrice
//
//	@Summary		List a held token at a fixed price
//	@Tags			listing
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.startFixedPrice.params	true	"params"
//	@Success		201		{object}	object{data=http.listingView}
//	@Security		ApiKeyAuth
//	@Router			/listings/fixed-price [post]
func (h *handler) startFixedPrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := c.Get("address").(domain.Address)

	type params struct {
		Collection domain.Address `json:"collection" validate:"required,address"`
		TokenId    domain.TokenId `json:"tokenId" validate:"required"`
		windowParams
		Price string `json:"price" validate:"required,ether"`
	}

	p := params{}
	if err := bindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	node, err := p.node()
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	l, err := h.listing.StartFixedPrice(ctx, seller, listing.FixedPriceParams{
		Id:           listing.Id{Collection: p.Collection, TokenId: p.TokenId},
		IdentityNode: node,
		Window:       p.window(),
		Price:        domain.MustParseEther(p.Price),
	})
	return h.respond(c, http.StatusCreated, l, err, "listing.StartFixedPrice failed")
}

// mintParams royalty is a fraction such as "0.05" for 5%
type mintParams struct {
	Collection domain.Address `json:"collection" validate:"required,address"`
	TokenURI   string         `json:"tokenUri" validate:"required"`
	Royalty    string         `json:"royalty" validate:"required,ether"`
	windowParams
}

func (p mintParams) toDomain() (listing.MintParams, error) {
	node, err := p.node()
	if err != nil {
		return listing.MintParams{}, err
	}
	return listing.MintParams{
		Collection:   p.Collection,
		TokenURI:     p.TokenURI,
		IdentityNode: node,
		Window:       p.window(),
		Royalty:      domain.MustParseEther(p.Royalty),
	}, nil
}

// mintAuction
//
//	@Summary		Mint into a project and auction it
//	@Tags			listing
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.mintAuction.params	true	"params"
//	@Success		201		{object}	object{data=http.listingView}
//	@Security		ApiKeyAuth
//	@Router			/listings/mint/auction [post]
func (h *handler) mintAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := c.Get("address").(domain.Address)

	type params struct {
		mintParams
		MinimalBid string `json:"minimalBid" validate:"required,ether"`
	}

	p := params{}
	if err := bindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	mp, err := p.toDomain()
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	l, err := h.listing.CreateNFTWithAuction(ctx, seller, listing.MintAuctionParams{
		MintParams: mp,
		MinimalBid: domain.MustParseEther(p.MinimalBid),
	})
	return h.respond(c, http.StatusCreated, l, err, "listing.CreateNFTWithAuction failed")
}

// mintFixedPrice
//
//	@Summary		Mint into a project and sell it at a fixed price
//	@Tags			listing
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.mintFixedPrice.params	true	"params"
//	@Success		201		{object}	object{data=http.listingView}
//	@Security		ApiKeyAuth
//	@Router			/listings/mint/fixed-price [post]
func (h *handler) mintFixedPrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := c.Get("address").(domain.Address)

	type params struct {
		mintParams
		Price string `json:"price" validate:"required,ether"`
	}

	p := params{}
	if err := bindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	mp, err := p.toDomain()
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	l, err := h.listing.CreateNFTWithFixedPrice(ctx, seller, listing.MintFixedPriceParams{
		MintParams: mp,
		Price:      domain.MustParseEther(p.Price),
	})
	return h.respond(c, http.StatusCreated, l, err, "listing.CreateNFTWithFixedPrice failed")
}

// list
//
//	@Summary		Enumerate listings in creation order
//	@Tags			listing
//	@Produce		json
//	@Param			collection	query		string	false	"collection address"
//	@Param			seller		query		string	false	"seller address"
//	@Param			kind		query		string	false	"auction or fixedPrice"
//	@Param			offset		query		int		false	"offset"
//	@Param			limit		query		int		false	"limit"
//	@Success		200			{object}	object{data=http.listResult}
//	@Router			/listings [get]
func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Collection domain.Address `query:"collection" validate:"omitempty,address"`
		Seller     domain.Address `query:"seller" validate:"omitempty,address"`
		Kind       listing.Kind   `query:"kind" validate:"omitempty,oneof=auction fixedPrice"`
		Offset     int            `query:"offset" validate:"min=0"`
		Limit      int            `query:"limit" validate:"min=0,max=100"`
	}

	p := params{}
	if err := bindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	if p.Limit == 0 {
		p.Limit = 20
	}

	opts := []listing.FindAllOptionsFunc{}
	if p.Collection != "" {
		opts = append(opts, listing.WithCollection(p.Collection))
	}
	if p.Seller != "" {
		opts = append(opts, listing.WithSeller(p.Seller))
	}
	if p.Kind != "" {
		opts = append(opts, listing.WithKind(p.Kind))
	}

	count, err := h.listing.Count(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("listing.Count failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	items, err := h.listing.FindAll(ctx, append(opts, listing.WithPagination(p.Offset, p.Limit))...)
	if err != nil {
		ctx.WithField("err", err).Error("listing.FindAll failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := listResult{Items: make([]listingView, 0, len(items)), Count: count}
	for i := range items {
		res.Items = append(res.Items, h.view(&items[i]))
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	l, err := h.listing.Get(ctx, paramId(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, h.view(l))
}

func (h *handler) getStatus(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	status, err := h.listing.GetStatus(ctx, paramId(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := struct {
		Status string `json:"status"`
	}{status.String()}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getSettlements(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	id := paramId(c)
	res, err := h.listing.Settlements(ctx, settlement.WithToken(id.Collection, id.TokenId))
	if err != nil {
		ctx.WithField("err", err).Error("listing.Settlements failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// bid
//
//	@Summary		Bid on an auction
//	@Description	The value in ether is escrowed from the caller, the previous bid is refunded
//	@Tags			listing
//	@Accept			json
//	@Produce		json
//	@Param			contract	path		string				true	"collection address"
//	@Param			tokenId		path		string				true	"token id"
//	@Param			params		body		http.valueParams	true	"params"
//	@Success		200			{object}	object{data=http.listingView}
//	@Security		ApiKeyAuth
//	@Router			/listings/{contract}/{tokenId}/bid [post]
func (h *handler) bid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	bidder := c.Get("address").(domain.Address)

	p := valueParams{}
	if err := bindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	l, err := h.listing.Bid(ctx, bidder, paramId(c), domain.MustParseEther(p.Value))
	return h.respond(c, http.StatusOK, l, err, "listing.Bid failed")
}

// purchase
//
//	@Summary		Buy a fixed price listing
//	@Tags			listing
//	@Accept			json
//	@Produce		json
//	@Param			contract	path		string				true	"collection address"
//	@Param			tokenId		path		string				true	"token id"
//	@Param			params		body		http.valueParams	true	"params"
//	@Success		200			{object}	object{data=http.listingView}
//	@Security		ApiKeyAuth
//	@Router			/listings/{contract}/{tokenId}/purchase [post]
func (h *handler) purchase(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	buyer := c.Get("address").(domain.Address)

	p := valueParams{}
	if err := bindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	l, err := h.listing.Purchase(ctx, buyer, paramId(c), domain.MustParseEther(p.Value))
	return h.respond(c, http.StatusOK, l, err, "listing.Purchase failed")
}

// act serves the body-less transitions: claim, cancel and reclaim
func (h *handler) act(op func(ctx.Ctx, domain.Address, listing.Id) (*listing.Listing, error), msg string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cont := c.Get("ctx").(ctx.Ctx)
		caller := c.Get("address").(domain.Address)
		id := paramId(c)

		cont = ctx.WithFields(cont, log.Fields{"listing": id.String(), "account": caller})
		l, err := op(cont, caller, id)
		return h.respond(c, http.StatusOK, l, err, msg)
	}
}
