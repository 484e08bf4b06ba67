package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/market"
)

var errItemNotFoundInCtx = errors.New("item object not found in echo.Context")

type marketApi struct {
	deps *ServerDeps
	svc  *market.Service
}

func registerMarketAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := marketApi{deps: deps, svc: deps.MarketSvc}

	mg := g.Group("/market/items", jwt)
	mg.POST("", api.create)
	mg.GET("", api.query)
	mg.GET("/favorites", api.queryFavorites)

	dg := mg.Group("/:id", itemMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, ownItemOnly())
	dg.DELETE("", api.destroy, ownItemOnly())
	dg.GET("/reviews", api.queryReviews)
	dg.POST("/reviews", api.review)
	dg.PUT("/favorite", api.toggleFavorite)
}

// Handlers

func (api *marketApi) create(ctx echo.Context) error {
	var data market.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	item, err := api.svc.CreateItem(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *marketApi) query(ctx echo.Context) error {
	var query ItemQueryRequest
	if err := ctx.Bind(&query); err != nil {
		return ctx.JSON(http.StatusOK, []market.Item{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	filter := market.QueryFilter{
		Search:   query.Search,
		Category: market.Category(query.Category),
		Status:   market.Status(query.Status),
		SellerID: query.SellerID,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
	}
	items, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying items")
	}
	if items == nil {
		items = []market.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *marketApi) retrieve(ctx echo.Context) error {
	item, ok := ctx.Get("object").(market.Item)
	if !ok {
		return errors.Wrap(errItemNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *marketApi) update(ctx echo.Context) error {
	item, ok := ctx.Get("object").(market.Item)
	if !ok {
		return errors.Wrap(errItemNotFoundInCtx, "retrieving object from context")
	}

	var data market.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	item, err := api.svc.UpdateItem(ctx.Request().Context(), item, data)
	if err != nil {
		return errors.Wrap(err, "updating item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *marketApi) destroy(ctx echo.Context) error {
	item, ok := ctx.Get("object").(market.Item)
	if !ok {
		return errors.Wrap(errItemNotFoundInCtx, "retrieving object from context")
	}

	// listings are soft-removed; reviews and favorites stay attached
	if _, err := api.svc.RemoveItem(ctx.Request().Context(), item); err != nil {
		return errors.Wrap(err, "removing item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *marketApi) review(ctx echo.Context) error {
	item, ok := ctx.Get("object").(market.Item)
	if !ok {
		return errors.Wrap(errItemNotFoundInCtx, "retrieving object from context")
	}

	var data market.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rev, err := api.svc.Review(ctx.Request().Context(), ctxUsr.ID, item.ID, data)
	if err != nil {
		if errors.Cause(err) == market.ErrAlreadyRated {
			return errHttpConflict
		}
		return errors.Wrap(err, "reviewing item")
	}
	return ctx.JSON(http.StatusCreated, rev)
}

func (api *marketApi) queryReviews(ctx echo.Context) error {
	item, ok := ctx.Get("object").(market.Item)
	if !ok {
		return errors.Wrap(errItemNotFoundInCtx, "retrieving object from context")
	}

	reviews, err := api.svc.ItemReviews(ctx.Request().Context(), item.ID)
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	if reviews == nil {
		reviews = []market.Review{}
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *marketApi) toggleFavorite(ctx echo.Context) error {
	item, ok := ctx.Get("object").(market.Item)
	if !ok {
		return errors.Wrap(errItemNotFoundInCtx, "retrieving object from context")
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	favorited, err := api.svc.ToggleFavorite(ctx.Request().Context(), ctxUsr.ID, item.ID)
	if err != nil {
		return errors.Wrap(err, "toggling favorite")
	}
	return ctx.JSON(http.StatusOK, FavoriteResponse{Favorited: favorited})
}

func (api *marketApi) queryFavorites(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	items, err := api.svc.Favorites(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying favorites")
	}
	if items == nil {
		items = []market.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

// itemMiddleware loads the item into the context; visibility is public to
// authed users.
func itemMiddleware(svc *market.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			item, err := svc.GetItemByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == market.ErrItemNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding item by ID")
			}
			ctx.Set("object", item)
			return next(ctx)
		}
	}
}

// ownItemOnly restricts mutation to the seller (or an admin).
func ownItemOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			item, ok := ctx.Get("object").(market.Item)
			if !ok {
				return errors.Wrap(errItemNotFoundInCtx, "retrieving object from context")
			}
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if item.SellerID == claims.Subject || claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

type (
	ItemQueryRequest struct {
		Search   string `query:"search"`
		Category string `query:"category"`
		Status   string `query:"status"`
		SellerID string `query:"seller_id"`
		MinPrice *int   `query:"min_price"`
		MaxPrice *int   `query:"max_price"`
	}

	FavoriteResponse struct {
		Favorited bool `json:"favorited"`
	}
)
