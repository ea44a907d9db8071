package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/coachdesk/apps/api/echo"
	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/academy"
	"github.com/trezcool/coachdesk/core/admin"
	"github.com/trezcool/coachdesk/core/session"
	"github.com/trezcool/coachdesk/core/sms"
	emailsvc "github.com/trezcool/coachdesk/services/email"
	logsvc "github.com/trezcool/coachdesk/services/logger"
	"github.com/trezcool/coachdesk/services/metrics"
	"github.com/trezcool/coachdesk/services/smsgw"
	"github.com/trezcool/coachdesk/storage/mongodb"
	"github.com/trezcool/coachdesk/storage/postgres"
	"github.com/trezcool/coachdesk/storage/redisstore"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	serverParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		AdminSvc   admin.Service
		Codec      *session.Codec
		Revoker    session.Revoker
		AcademySvc *academy.Service
		SMSSvc     *sms.Service
		Dispatcher *sms.Dispatcher
		Metrics    *metrics.Metrics
	}

	dispatcherParams struct {
		dig.In
		Conf      *core.Config
		Logger    core.Logger
		Templates sms.TemplateRepository
		Academy   academy.Repository
		Gateway   sms.Gateway
		Logs      sms.LogRepository
	}
)

func newConfig() (*core.Config, error) {
	conf, err := core.NewConfig()
	if err != nil {
		return nil, err
	}
	if err = conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)
	return validate
}

func newMongo(conf *core.Config, loggerParam DBLoggerParam) *mongodb.DB {
	setUp := func() (*mongodb.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = db.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up mongodb: %v", err), err)
	}
	return db
}

// newPostgres returns nil when no Postgres delivery log is configured.
func newPostgres(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Postgres.URL == "" {
		return nil
	}
	setUp := func() (*sqlx.DB, error) {
		db, err := postgres.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = postgres.Migrate(context.Background(), db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up postgres: %v", err), err)
	}
	return db
}

// newRedis returns nil when no Redis is configured.
func newRedis(conf *core.Config, loggerParam DBLoggerParam) *redis.Client {
	if conf.Redis.Addr == "" {
		return nil
	}
	client, err := redisstore.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	return client
}

func newRevoker(client *redis.Client) session.Revoker {
	if client == nil {
		return session.NewMemoryRevoker()
	}
	return redisstore.NewRevoker(client)
}

func newLogRepository(mongoDB *mongodb.DB, pg *sqlx.DB, m *metrics.Metrics) sms.LogRepository {
	var repo sms.LogRepository
	if pg != nil {
		repo = postgres.NewLogRepository(pg)
	} else {
		repo = mongodb.NewLogRepository(mongoDB)
	}
	return m.InstrumentLogs(repo)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newDispatcher(p dispatcherParams) *sms.Dispatcher {
	deps := sms.NewDispatcherDeps(p.Conf)
	deps.Templates = p.Templates
	deps.Academy = p.Academy
	deps.Gateway = p.Gateway
	deps.Logs = p.Logs
	deps.Logger = p.Logger
	return sms.NewDispatcher(deps)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		AdminSvc:   p.AdminSvc,
		Codec:      p.Codec,
		Revoker:    p.Revoker,
		AcademySvc: p.AcademySvc,
		SMSSvc:     p.SMSSvc,
		Dispatcher: p.Dispatcher,
		Metrics:    p.Metrics,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(metrics.New))

	// storage
	must(c.Provide(newMongo))
	must(c.Provide(newPostgres))
	must(c.Provide(newRedis))
	must(c.Provide(mongodb.NewAdminRepository))
	must(c.Provide(mongodb.NewAcademyRepository))
	must(c.Provide(mongodb.NewTemplateRepository))
	must(c.Provide(newLogRepository))

	// services
	must(c.Provide(newEmailService))
	must(c.Provide(smsgw.NewGateway))
	must(c.Provide(session.NewCodec))
	must(c.Provide(newRevoker))
	must(c.Provide(admin.NewService))
	must(c.Provide(academy.NewService))
	must(c.Provide(sms.NewService))
	must(c.Provide(newDispatcher))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
