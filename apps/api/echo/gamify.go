package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/gamify"
)

type gamifyApi struct {
	deps *ServerDeps
	svc  *gamify.Service
}

func registerGamifyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := gamifyApi{deps: deps, svc: deps.GamifySvc}

	gg := g.Group("/gamify", jwt)
	gg.GET("/stats", api.stats)
	gg.POST("/actions", api.recordAction)

	cg := g.Group("/challenges", jwt)
	cg.GET("", api.queryChallenges)
	cg.POST("/:id/progress", api.recordProgress)
}

// Handlers

func (api *gamifyApi) stats(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "getting stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *gamifyApi) recordAction(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	res, err := api.svc.RecordCompletion(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "recording completion")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *gamifyApi) queryChallenges(ctx echo.Context) error {
	challenges, err := api.svc.ActiveChallenges(ctx.Request().Context(), time.Now())
	if err != nil {
		return errors.Wrap(err, "querying challenges")
	}
	if challenges == nil {
		challenges = []gamify.Challenge{}
	}
	return ctx.JSON(http.StatusOK, challenges)
}

func (api *gamifyApi) recordProgress(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	progress, err := api.svc.RecordChallengeProgress(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"))
	if err != nil {
		switch errors.Cause(err) {
		case gamify.ErrChallengeNotFound:
			return errHttpNotFound
		case gamify.ErrChallengeClosed:
			return errHttpConflict
		}
		return errors.Wrap(err, "recording challenge progress")
	}
	return ctx.JSON(http.StatusOK, progress)
}
