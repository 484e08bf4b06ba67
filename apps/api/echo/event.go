package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/event"
	"github.com/trezcool/malezi/core/user"
)

var errEvtNotFoundInCtx = errors.New("event object not found in echo.Context")

type eventApi struct {
	deps *ServerDeps
	svc  *event.Service
}

func registerEventAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := eventApi{deps: deps, svc: deps.EventSvc}

	eg := g.Group("/events", jwt)
	eg.POST("", api.create)
	eg.GET("", api.query)

	dg := eg.Group("/:id", ownEventMiddleware(api.svc, deps.UserSvc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.PUT("/complete", api.complete)
	dg.DELETE("", api.destroy)

	rg := g.Group("/reminders", jwt)
	rg.POST("/check", api.checkReminders)
	rg.GET("/daily", api.dailyAgenda)
}

// Handlers

func (api *eventApi) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	evt, err := api.svc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *eventApi) query(ctx echo.Context) error {
	filter := new(event.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []event.Event{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	events, err := api.svc.Query(ctx.Request().Context(), ctxUsr.ID, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(event.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) update(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(event.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}

	var data event.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(evt, api.deps.Validate); err != nil {
		return err
	}

	evt, err := api.svc.Update(ctx.Request().Context(), evt, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) complete(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(event.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}

	evt, err := api.svc.Complete(ctx.Request().Context(), evt.ID)
	if err != nil {
		return errors.Wrap(err, "completing event")
	}

	// completed events count towards the daily goal
	if api.deps.GamifySvc != nil {
		if _, err = api.deps.GamifySvc.RecordCompletion(ctx.Request().Context(), evt.OwnerID); err != nil {
			ctx.Logger().Errorf("%+v", errors.Wrap(err, "recording completion"))
		}
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(event.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), evt.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) checkReminders(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	firings, err := api.svc.CheckReminders(ctx.Request().Context(), ctxUsr.ID, time.Now())
	if err != nil {
		return errors.Wrap(err, "checking reminders")
	}
	if firings == nil {
		firings = []event.Firing{}
	}
	return ctx.JSON(http.StatusOK, firings)
}

func (api *eventApi) dailyAgenda(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	events, err := api.svc.DailyAgenda(ctx.Request().Context(), ctxUsr.ID, time.Now())
	if err != nil {
		return errors.Wrap(err, "getting daily agenda")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

// ownEventMiddleware loads the event and only lets its owner (or an admin) through.
func ownEventMiddleware(svc *event.Service, usrSvc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, usrSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			evt, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == event.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding event by ID")
			}
			if evt.OwnerID != ctxUsr.ID && !ctxUsr.IsAdmin() {
				return errHttpNotFound
			}
			ctx.Set("object", evt)
			return next(ctx)
		}
	}
}
