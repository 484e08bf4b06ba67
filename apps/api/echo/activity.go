package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/user"
)

var (
	errLogNotFoundInCtx     = errors.New("log object not found in echo.Context")
	errRoutineNotFoundInCtx = errors.New("routine object not found in echo.Context")
)

type activityApi struct {
	deps *ServerDeps
	svc  *activity.Service
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := activityApi{deps: deps, svc: deps.ActivitySvc}

	lg := g.Group("/logs", jwt)
	lg.POST("", api.createLog)
	lg.GET("", api.queryLogs)

	ldg := lg.Group("/:id", ownLogMiddleware(api.svc, deps.UserSvc))
	ldg.GET("", api.retrieveLog)
	ldg.DELETE("", api.destroyLog)

	rg := g.Group("/routines", jwt)
	rg.POST("", api.createRoutine)
	rg.GET("", api.queryRoutines)

	rdg := rg.Group("/:id", ownRoutineMiddleware(api.svc, deps.UserSvc))
	rdg.GET("", api.retrieveRoutine)
	rdg.PUT("", api.updateRoutine)
	rdg.DELETE("", api.destroyRoutine)
}

// Handlers

func (api *activityApi) createLog(ctx echo.Context) error {
	var data activity.NewLog
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLog")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	lg, err := api.svc.CreateLog(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating log")
	}
	return ctx.JSON(http.StatusCreated, lg)
}

func (api *activityApi) queryLogs(ctx echo.Context) error {
	var query LogQueryRequest
	if err := ctx.Bind(&query); err != nil {
		return ctx.JSON(http.StatusOK, []activity.Log{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := activity.QueryFilter{
		Category: activity.Category(query.Category),
		Since:    query.Since,
		Until:    query.Until,
	}
	logs, err := api.svc.QueryLogs(ctx.Request().Context(), ctxUsr.ID, filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying logs")
	}
	if logs == nil {
		logs = []activity.Log{}
	}
	return ctx.JSON(http.StatusOK, logs)
}

func (api *activityApi) retrieveLog(ctx echo.Context) error {
	lg, ok := ctx.Get("object").(activity.Log)
	if !ok {
		return errors.Wrap(errLogNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, lg)
}

func (api *activityApi) destroyLog(ctx echo.Context) error {
	lg, ok := ctx.Get("object").(activity.Log)
	if !ok {
		return errors.Wrap(errLogNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.DeleteLog(ctx.Request().Context(), lg.ID); err != nil {
		return errors.Wrap(err, "deleting log")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) createRoutine(ctx echo.Context) error {
	var data activity.NewRoutine
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoutine")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rtn, err := api.svc.CreateRoutine(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating routine")
	}
	return ctx.JSON(http.StatusCreated, rtn)
}

func (api *activityApi) queryRoutines(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	routines, err := api.svc.QueryRoutines(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying routines")
	}
	if routines == nil {
		routines = []activity.Routine{}
	}
	return ctx.JSON(http.StatusOK, routines)
}

func (api *activityApi) retrieveRoutine(ctx echo.Context) error {
	rtn, ok := ctx.Get("object").(activity.Routine)
	if !ok {
		return errors.Wrap(errRoutineNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, rtn)
}

func (api *activityApi) updateRoutine(ctx echo.Context) error {
	rtn, ok := ctx.Get("object").(activity.Routine)
	if !ok {
		return errors.Wrap(errRoutineNotFoundInCtx, "retrieving object from context")
	}

	var data activity.UpdateRoutine
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRoutine")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	rtn, err := api.svc.UpdateRoutine(ctx.Request().Context(), rtn, data)
	if err != nil {
		return errors.Wrap(err, "updating routine")
	}
	return ctx.JSON(http.StatusOK, rtn)
}

func (api *activityApi) destroyRoutine(ctx echo.Context) error {
	rtn, ok := ctx.Get("object").(activity.Routine)
	if !ok {
		return errors.Wrap(errRoutineNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.DeleteRoutine(ctx.Request().Context(), rtn.ID); err != nil {
		return errors.Wrap(err, "deleting routine")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func ownLogMiddleware(svc *activity.Service, usrSvc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, usrSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			lg, err := svc.GetLogByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == activity.ErrLogNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding log by ID")
			}
			if lg.OwnerID != ctxUsr.ID && !ctxUsr.IsAdmin() {
				return errHttpNotFound
			}
			ctx.Set("object", lg)
			return next(ctx)
		}
	}
}

func ownRoutineMiddleware(svc *activity.Service, usrSvc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, usrSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			rtn, err := svc.GetRoutineByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == activity.ErrRoutineNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding routine by ID")
			}
			if rtn.OwnerID != ctxUsr.ID && !ctxUsr.IsAdmin() {
				return errHttpNotFound
			}
			ctx.Set("object", rtn)
			return next(ctx)
		}
	}
}

type LogQueryRequest struct {
	Category string    `query:"category"`
	Since    time.Time `query:"since"`
	Until    time.Time `query:"until"`
}
