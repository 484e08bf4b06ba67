package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/malezi/apps/api/echo"
	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/event"
	"github.com/trezcool/malezi/core/gamify"
	"github.com/trezcool/malezi/core/insights"
	"github.com/trezcool/malezi/core/market"
	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/notification"
	"github.com/trezcool/malezi/core/user"
	aisvc "github.com/trezcool/malezi/services/ai"
	emailsvc "github.com/trezcool/malezi/services/email"
	logsvc "github.com/trezcool/malezi/services/logger"
	"github.com/trezcool/malezi/storage/database"
	sqlxrepos "github.com/trezcool/malezi/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	evtSvc := event.NewService(sqlxrepos.NewEventRepository(db), conf)
	gamifySvc := gamify.NewService(sqlxrepos.NewGamifyRepository(db), conf)
	activitySvc := activity.NewService(sqlxrepos.NewActivityRepository(db), gamifyRewarder{gamifySvc}, logger)
	moderationSvc := moderation.NewService(sqlxrepos.NewReportRepository(db))
	marketSvc := market.NewService(sqlxrepos.NewMarketRepository(db))
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), usrRepo, mailSvc, logger)

	aiProvider, err := aisvc.NewDeepseekProvider(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up deepseek: %v", err), err)
	}
	if aiProvider == nil {
		logger.Info("deepseek API key not set; AI suggestions disabled")
	}
	insightsSvc := insights.NewService(aiProvider, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	moderation.InitValidators(validate, translator)
	activity.InitValidators(validate)
	market.InitValidators(validate)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Reminder Poller

	poller := event.NewPoller(evtSvc, notifSvc, logger, conf.Reminder)
	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()

	go func() {
		if err := poller.Run(pollerCtx); err != nil {
			logger.Error(fmt.Sprintf("reminder poller exited: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			UserSvc:         usrSvc,
			EventSvc:        evtSvc,
			ActivitySvc:     activitySvc,
			ModerationSvc:   moderationSvc,
			GamifySvc:       gamifySvc,
			MarketSvc:       marketSvc,
			InsightsSvc:     insightsSvc,
			NotificationSvc: notifSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stopPoller()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// gamifyRewarder lets activity log creation count towards the daily goal
// without coupling the activity package to gamify.
type gamifyRewarder struct {
	svc *gamify.Service
}

func (r gamifyRewarder) RecordCompletion(ctx context.Context, userID string) error {
	_, err := r.svc.RecordCompletion(ctx, userID)
	return err
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.OpenSQLX(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
