// Package app builds every dependency from configuration and runs the
// service until it receives a termination signal.
package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/assetly/internal/pkg/clock"
	"github.com/shandysiswandi/assetly/internal/pkg/config"
	"github.com/shandysiswandi/assetly/internal/pkg/goroutine"
	"github.com/shandysiswandi/assetly/internal/pkg/hash"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/locker"
	"github.com/shandysiswandi/assetly/internal/pkg/mail"
	"github.com/shandysiswandi/assetly/internal/pkg/messaging"
	"github.com/shandysiswandi/assetly/internal/pkg/otp"
	"github.com/shandysiswandi/assetly/internal/pkg/router"
	"github.com/shandysiswandi/assetly/internal/pkg/uid"
	"github.com/shandysiswandi/assetly/internal/pkg/validator"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

func withoutContext(fn func() error) func(context.Context) error {
	return func(context.Context) error { return fn() }
}

// App owns the process wide resources. Fields are filled by the init steps
// in New and released in reverse dependency order by Stop.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	otpHash      hash.Hash
	passwordHash hash.Hash
	uid          uid.NumberID
	uuid         uid.StringID
	generator    otp.Generator

	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	locker    locker.Locker
	mail      mail.Mail
	messaging messaging.Publisher

	router     *router.Router
	httpServer *http.Server
	scheduler  *cron.Cron

	closers []closer
}

// New runs every init step in order. A failing step logs and exits, so a
// returned App is always fully wired.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	steps := []func(){
		a.initConfig,
		a.initInstrument,
		a.initLibraries,
		a.initDatabase,
		a.initMigration,
		a.initCache,
		a.initMail,
		a.initMessaging,
		a.initScheduler,
		a.initHTTPServer,
		a.initModules,
		a.initClosers,
	}
	for _, step := range steps {
		step()
	}

	return a
}
