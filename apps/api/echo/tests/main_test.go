package tests

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

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
	emailsvc "github.com/trezcool/malezi/services/email"
	inmemdb "github.com/trezcool/malezi/storage/database/inmem"
)

var (
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
)

func TestMain(m *testing.M) {
	_ = os.Setenv("ENV", "TEST")
	conf = core.NewConfig()
	conf.Debug = false // error bodies render as {"error": ...}

	validate = validator.New()
	translator = newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	moderation.InitValidators(validate, translator)
	activity.InitValidators(validate)
	market.InitValidators(validate)

	core.ParseEmailTemplates(conf, nopLogger{})

	os.Exit(m.Run())
}

// testApp wires a fresh in-memory stack; every test gets its own.
type testApp struct {
	app echoapi.Server

	usrRepo user.Repository
	gamifyRepo interface {
		AddChallenge(gamify.Challenge) gamify.Challenge
	}

	usrSvc    *user.Service
	evtSvc    *event.Service
	gamifySvc *gamify.Service
	notifSvc  *notification.Service
}

func newTestApp(t *testing.T, provider ...insights.Provider) *testApp {
	t.Helper()

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	gamifyRepo := inmemdb.NewGamifyRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	evtSvc := event.NewService(inmemdb.NewEventRepository(db), conf)
	gamifySvc := gamify.NewService(gamifyRepo, conf)
	activitySvc := activity.NewService(inmemdb.NewActivityRepository(db), rewarder{gamifySvc}, nopLogger{})
	moderationSvc := moderation.NewService(inmemdb.NewReportRepository(db))
	marketSvc := market.NewService(inmemdb.NewMarketRepository(db))
	notifSvc := notification.NewService(inmemdb.NewNotificationRepository(db), usrRepo, mailSvc, nopLogger{})

	var aiProvider insights.Provider
	if len(provider) > 0 {
		aiProvider = provider[0]
	}
	insightsSvc := insights.NewService(aiProvider, nopLogger{})

	app := echoapi.NewServer(
		&echoapi.ServerDeps{
			Conf:            conf,
			Logger:          nopLogger{},
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
			DisableReqLogs:  true,
		},
	)

	return &testApp{
		app:        app,
		usrRepo:    usrRepo,
		gamifyRepo: gamifyRepo,
		usrSvc:     usrSvc,
		evtSvc:     evtSvc,
		gamifySvc:  gamifySvc,
		notifSvc:   notifSvc,
	}
}

type rewarder struct {
	svc *gamify.Service
}

func (r rewarder) RecordCompletion(ctx context.Context, userID string) error {
	_, err := r.svc.RecordCompletion(ctx, userID)
	return err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(msg string, _ ...interface{}) {
	log.Fatal(msg)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
