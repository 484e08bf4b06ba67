package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/moderation"
)

type moderationApi struct {
	deps *ServerDeps
	svc  *moderation.Service
}

func registerModerationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := moderationApi{deps: deps, svc: deps.ModerationSvc}

	rg := g.Group("/reports", jwt)
	rg.POST("", api.create)
	rg.GET("", api.query, moderatorMiddleware())
	rg.GET("/reincidents", api.queryReincidents, moderatorMiddleware())
	rg.GET("/:id", api.retrieve, moderatorMiddleware())
	rg.PUT("/:id/review", api.review, moderatorMiddleware())
}

// Handlers

func (api *moderationApi) create(ctx echo.Context) error {
	var data moderation.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rpt, err := api.svc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	return ctx.JSON(http.StatusCreated, rpt)
}

func (api *moderationApi) query(ctx echo.Context) error {
	filter := new(moderation.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []moderation.Report{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	reports, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if reports == nil {
		reports = []moderation.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *moderationApi) retrieve(ctx echo.Context) error {
	rpt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == moderation.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding report by ID")
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (api *moderationApi) review(ctx echo.Context) error {
	var data moderation.ReviewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewReport")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rpt, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), ctxUsr.ID, data)
	if err != nil {
		switch errors.Cause(err) {
		case moderation.ErrNotFound:
			return errHttpNotFound
		case moderation.ErrInvalidTransition:
			return errHttpConflict
		}
		return errors.Wrap(err, "reviewing report")
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (api *moderationApi) queryReincidents(ctx echo.Context) error {
	ids, err := api.svc.Reincidents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying reincidents")
	}
	if ids == nil {
		ids = []string{}
	}
	return ctx.JSON(http.StatusOK, ReincidentsResponse{UserIDs: ids})
}

type ReincidentsResponse struct {
	UserIDs []string `json:"user_ids"`
}
