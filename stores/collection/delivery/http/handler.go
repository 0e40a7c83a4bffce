package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/delivery"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/collection"
	"github.com/x-xyz/marketplace/middleware"
	"github.com/x-xyz/marketplace/service/cache"
	authMiddleware "github.com/x-xyz/marketplace/stores/auth/delivery/http/middleware"
)

type handler struct {
	collection collection.Usecase
}

type listParams struct {
	Offset int `query:"offset" validate:"min=0"`
	Limit  int `query:"limit" validate:"min=0,max=100"`
}

type listResult struct {
	Items []collection.Collection `json:"items"`
	Count int                     `json:"count"`
}

// New registers the registry routes. Entries never change once written, so
// single entry reads go through httpCache.
func New(
	e *echo.Echo,
	col collection.Usecase,
	authMiddleware *authMiddleware.AuthMiddleware,
	httpCache cache.Service,
) {
	h := &handler{col}

	gp := e.Group("/projects")
	gp.POST("", h.createProject, authMiddleware.Auth())
	gp.GET("", h.listOf(collection.KindProject))
	gp.GET("/:index", h.getProject, middleware.CacheHttp(httpCache))

	gc := e.Group("/collections")
	gc.POST("/import", h.importCollection, authMiddleware.Auth())
	gc.GET("/external", h.listOf(collection.KindExternal))
	gc.GET("/external/:index", h.getExternal, middleware.CacheHttp(httpCache))
	gc.GET("/:contract", h.get, middleware.IsValidAddress("contract"), middleware.CacheHttp(httpCache))
	gc.POST("/:contract/approval", h.setApprovalForAll, middleware.IsValidAddress("contract"), authMiddleware.Auth())

	gt := e.Group("/collections/:contract/tokens/:tokenId", middleware.IsValidAddress("contract"))
	gt.GET("", h.getToken)
	gt.POST("/approve", h.approve, authMiddleware.Auth())
}

// createProject
//
//	@Summary		Create project
//	@Description	Deploy a first party collection owned by the caller
//	@Tags			collection
//	@Accept			json
//	@Produce		json
//	@Param			params	body		collection.CreateProjectParams	true	"params"
//	@Success		201		{object}	object{data=collection.Collection}
//	@Security		ApiKeyAuth
//	@Router			/projects [post]
func (h *handler) createProject(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	owner := c.Get("address").(domain.Address)

	p := collection.CreateProjectParams{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	col, err := h.collection.CreateProject(ctx, owner, p)
	if err != nil {
		ctx.WithField("err", err).Error("collection.CreateProject failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, col)
}

// importCollection
//
//	@Summary		Import collection
//	@Description	Register an existing erc721 contract for trading
//	@Tags			collection
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.importCollection.params	true	"params"
//	@Success		201		{object}	object{data=collection.Collection}
//	@Security		ApiKeyAuth
//	@Router			/collections/import [post]
func (h *handler) importCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address domain.Address `json:"address" validate:"required,address"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	col, err := h.collection.ImportCollection(ctx, p.Address)
	if err != nil {
		ctx.WithField("err", err).Error("collection.ImportCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, col)
}

func (h *handler) listOf(kind collection.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Get("ctx").(ctx.Ctx)

		p := listParams{}
		if err := c.Bind(&p); err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
		}
		if err := c.Validate(&p); err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
		}
		if p.Limit == 0 {
			p.Limit = 20
		}

		var (
			count int
			err   error
		)
		if kind == collection.KindProject {
			count, err = h.collection.AllProjectsLength(ctx)
		} else {
			count, err = h.collection.AllExternalCollectionsLength(ctx)
		}
		if err != nil {
			ctx.WithField("err", err).Error("collection length failed")
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}

		items, err := h.collection.FindAll(ctx, collection.WithKind(kind), collection.WithPagination(p.Offset, p.Limit))
		if err != nil {
			ctx.WithField("err", err).Error("collection.FindAll failed")
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
		return delivery.MakeJsonResp(c, http.StatusOK, listResult{Items: items, Count: count})
	}
}

func (h *handler) getProject(c echo.Context) error {
	return h.getByIndex(c, h.collection.GetProject)
}

func (h *handler) getExternal(c echo.Context) error {
	return h.getByIndex(c, h.collection.GetExternalCollection)
}

func (h *handler) getByIndex(c echo.Context, get func(ctx.Ctx, int) (*collection.Collection, error)) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid index")
	}

	col, err := get(ctx, index)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, col)
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	col, err := h.collection.Get(ctx, domain.Address(c.Param("contract")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, col)
}

// getToken
//
//	@Summary		Token owner and approval
//	@Tags			collection
//	@Produce		json
//	@Param			contract	path		string	true	"collection address"
//	@Param			tokenId		path		string	true	"token id"
//	@Success		200			{object}	object{data=collection.Token}
//	@Router			/collections/{contract}/tokens/{tokenId} [get]
func (h *handler) getToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	t, err := h.collection.Token(ctx, domain.Address(c.Param("contract")), domain.TokenId(c.Param("tokenId")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, t)
}

// approve
//
//	@Summary		Approve an address to move one token
//	@Description	Sellers approve the marketplace escrow before listing a token they hold
//	@Tags			collection
//	@Accept			json
//	@Produce		json
//	@Param			contract	path		string					true	"collection address"
//	@Param			tokenId		path		string					true	"token id"
//	@Param			params		body		http.approve.params	true	"params"
//	@Success		200			{object}	object{data=collection.Token}
//	@Security		ApiKeyAuth
//	@Router			/collections/{contract}/tokens/{tokenId}/approve [post]
func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		To domain.Address `json:"to" validate:"required,address"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	address := domain.Address(c.Param("contract"))
	id := domain.TokenId(c.Param("tokenId"))
	if err := h.collection.Approve(ctx, caller, address, p.To, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	t, err := h.collection.Token(ctx, address, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, t)
}

// setApprovalForAll
//
//	@Summary		Grant or revoke an operator for all tokens of the caller
//	@Tags			collection
//	@Accept			json
//	@Produce		json
//	@Param			contract	path	string						true	"collection address"
//	@Param			params		body	http.setApprovalForAll.params	true	"params"
//	@Success		200
//	@Security		ApiKeyAuth
//	@Router			/collections/{contract}/approval [post]
func (h *handler) setApprovalForAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Operator domain.Address `json:"operator" validate:"required,address"`
		Approved bool           `json:"approved"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.collection.SetApprovalForAll(ctx, caller, domain.Address(c.Param("contract")), p.Operator, p.Approved); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, p)
}
