package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/insights"
)

type insightsApi struct {
	deps *ServerDeps
	svc  *insights.Service
}

func registerInsightsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := insightsApi{deps: deps, svc: deps.InsightsSvc}

	ig := g.Group("/insights", jwt)
	ig.POST("/suggestions", api.suggest)
}

// Handlers

// suggest feeds the caller's recent logs and routines to the assistant.
func (api *insightsApi) suggest(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	now := time.Now().UTC()
	rctx := ctx.Request().Context()

	logs, err := api.deps.ActivitySvc.QueryLogs(rctx, ctxUsr.ID, activity.QueryFilter{Since: now.AddDate(0, 0, -7)})
	if err != nil {
		return errors.Wrap(err, "querying logs")
	}
	routines, err := api.deps.ActivitySvc.QueryRoutines(rctx, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying routines")
	}

	res, err := api.svc.Suggest(rctx, insights.SuggestionRequest{
		Logs:        logs,
		Routines:    routines,
		CurrentTime: now,
	})
	if err != nil {
		if errors.Cause(err) == insights.ErrBadCompletion {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return errors.Wrap(err, "generating suggestions")
	}
	return ctx.JSON(http.StatusOK, res)
}
